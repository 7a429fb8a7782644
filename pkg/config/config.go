package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AuthPolicy controls what happens when the authentication probe exhausts
// its attempts without a clear signal.
type AuthPolicy string

const (
	// AuthFailOpen proceeds with unverified authentication state. This
	// trades correctness for availability: if the assumption was wrong the
	// capture itself will fail later.
	AuthFailOpen AuthPolicy = "fail-open"
	// AuthFailClosed aborts the task instead of proceeding unverified.
	AuthFailClosed AuthPolicy = "fail-closed"
)

type Config struct {
	OpenAI  OpenAI
	Capture Capture
	Browser Browser
	Logger  Logger
}

type OpenAI struct {
	APIKey string
	Model  string
}

type Capture struct {
	OutputDir    string
	MaxSteps     int
	ProbeTimeout time.Duration
	AuthPolicy   AuthPolicy
	AuthAttempts int
}

type Browser struct {
	Headless   bool
	ProfileDir string
}

type Logger struct {
	Level   string
	LogsDir string
}

// Load reads configuration from a .env file (if present) and the
// environment. Only the auth policy is validated here; everything else has
// a usable default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		OpenAI: OpenAI{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  env("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Capture: Capture{
			OutputDir:    env("WFCAPTURE_OUTPUT_DIR", "dataset"),
			MaxSteps:     envInt("WFCAPTURE_MAX_STEPS", 30),
			ProbeTimeout: envDuration("WFCAPTURE_PROBE_TIMEOUT", 10*time.Second),
			AuthPolicy:   AuthPolicy(env("WFCAPTURE_AUTH_POLICY", string(AuthFailOpen))),
			AuthAttempts: envInt("WFCAPTURE_AUTH_ATTEMPTS", 3),
		},
		Browser: Browser{
			Headless:   envBool("WFCAPTURE_HEADLESS"),
			ProfileDir: env("WFCAPTURE_BROWSER_PROFILE", "./browser_profile"),
		},
		Logger: Logger{
			Level:   env("LOG_LEVEL", "info"),
			LogsDir: env("WFCAPTURE_LOGS_DIR", ".wfcapture/logs"),
		},
	}

	switch cfg.Capture.AuthPolicy {
	case AuthFailOpen, AuthFailClosed:
	default:
		return nil, fmt.Errorf("invalid WFCAPTURE_AUTH_POLICY %q: must be %q or %q",
			cfg.Capture.AuthPolicy, AuthFailOpen, AuthFailClosed)
	}

	return cfg, nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}
