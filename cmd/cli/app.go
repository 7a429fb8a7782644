package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arnavsurve/wfcapture/pkg/browseragent"
	"github.com/arnavsurve/wfcapture/pkg/capture"
	"github.com/arnavsurve/wfcapture/pkg/config"
	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/log/sinks"
	"github.com/arnavsurve/wfcapture/pkg/orchestrator"
	"github.com/arnavsurve/wfcapture/pkg/parser"
	"github.com/arnavsurve/wfcapture/pkg/security"
	"github.com/arnavsurve/wfcapture/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms/openai"
)

// app bundles everything a command needs: config, the log router with its
// sinks, and the fully wired orchestrator. Build it once per invocation
// and Close it on the way out.
type app struct {
	cfg     *config.Config
	logger  types.Logger
	router  *log.Router
	orch    *orchestrator.Orchestrator
	logPath string
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set; add it to the environment or a .env file")
	}

	runID := uuid.New().String()

	if err := os.MkdirAll(cfg.Logger.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating logs directory %q: %w", cfg.Logger.LogsDir, err)
	}
	logPath := filepath.Join(cfg.Logger.LogsDir, fmt.Sprintf("%s.json", runID))
	fileSink, err := sinks.NewFileSink(logPath)
	if err != nil {
		return nil, fmt.Errorf("creating file log sink: %w", err)
	}

	router := log.NewRouter(sinks.NewConsoleSink(), fileSink)
	router.Redactor = security.NewRedactor(cfg.OpenAI.APIKey)

	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	base := zerolog.New(router).Level(level).With().Timestamp().Logger()
	logger := log.NewZerologAdapter(base)

	logger.Info().Msgf("Starting capture run with ID: %s", runID)
	logger.Info().Msgf("Logs will be saved to %q", logPath)

	model, err := openai.New(
		openai.WithToken(cfg.OpenAI.APIKey),
		openai.WithModel(cfg.OpenAI.Model),
	)
	if err != nil {
		router.Close()
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}
	questionParser := parser.New(model, parser.WithCache(), parser.WithLogger(logger))

	runner, err := browseragent.NewSubprocessRunner(browseragent.Options{
		APIKey:     cfg.OpenAI.APIKey,
		Headless:   cfg.Browser.Headless,
		ProfileDir: cfg.Browser.ProfileDir,
	}, logger)
	if err != nil {
		router.Close()
		return nil, fmt.Errorf("initializing browser agent runner: %w", err)
	}

	capturer, err := capture.New(runner, cfg.Capture.OutputDir, logger)
	if err != nil {
		runner.Close()
		router.Close()
		return nil, fmt.Errorf("initializing capturer: %w", err)
	}

	prober := orchestrator.NewURLProber(cfg.Capture.ProbeTimeout, logger)
	auth := orchestrator.NewAuthChecker(runner, cfg.Capture.AuthAttempts, cfg.Capture.AuthPolicy, logger)
	orch := orchestrator.New(questionParser, prober, auth, capturer, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		router:  router,
		orch:    orch,
		logPath: logPath,
	}, nil
}

func (a *app) Close() {
	if err := a.orch.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Error shutting down capture pipeline")
	}
	a.logger.Info().Msgf("Logs can be found at %q", a.logPath)
	if err := a.router.Close(); err != nil {
		fmt.Printf("Error during log shutdown: %v\n", err)
	}
}
