package browseragent

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/arnavsurve/wfcapture/pkg/browseragent/assets"
	"github.com/arnavsurve/wfcapture/pkg/types"
	"github.com/google/uuid"
)

const (
	venvDirName          = "wfcapture_agent_venv"
	requirementsHashFile = ".requirements_hash"

	shutdownGracePeriod = 10 * time.Second
)

// Options configure the driver subprocess. The browser profile directory is
// persistent so logins survive across processes, and the browser itself is
// kept alive for the life of the driver so logins survive across runs.
type Options struct {
	APIKey     string
	Headless   bool
	ProfileDir string
}

// SubprocessRunner drives the external browser-use agent through a
// long-lived Python driver subprocess. Requests are written to the driver's
// stdin as JSON lines; each run's history is read back from a per-run
// output file once the driver reports completion.
type SubprocessRunner struct {
	logger         types.Logger
	opts           Options
	agentWorkDir   string
	venvPythonPath string
	scriptsDir     string

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	events  chan driverEvent
	waitErr chan error
}

type driverEvent struct {
	Event string `json:"event"`
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
	Line  string `json:"line,omitempty"`
}

type driverRequest struct {
	RunRequest
	ID  string `json:"id"`
	Out string `json:"out"`
}

// ensurePythonVenv sets up the Python virtual environment for the driver.
// It creates a venv if one doesn't exist or if the embedded requirements
// changed, and installs dependencies. Returns the venv python path.
func ensurePythonVenv(baseCacheDir string, logger types.Logger) (string, error) {
	venvPath := filepath.Join(baseCacheDir, venvDirName)
	pythonInterpreter := filepath.Join(venvPath, "bin", "python")
	pipExecutable := filepath.Join(venvPath, "bin", "pip")

	reqBytes, err := assets.GetDriverScriptContent(assets.RequirementsFile)
	if err != nil {
		return "", fmt.Errorf("failed to get embedded requirements.txt: %w", err)
	}
	currentReqHash := fmt.Sprintf("%x", sha256.Sum256(reqBytes))

	storedReqHashPath := filepath.Join(venvPath, requirementsHashFile)
	_, venvStatErr := os.Stat(pythonInterpreter)

	recreateVenv := false
	if os.IsNotExist(venvStatErr) {
		logger.Debug().Msg("Python venv not found, creating...")
		recreateVenv = true
	} else {
		storedReqHashBytes, err := os.ReadFile(storedReqHashPath)
		if err != nil || string(storedReqHashBytes) != currentReqHash {
			logger.Debug().Msg("Requirements changed or hash file missing, recreating venv...")
			recreateVenv = true
			if err := os.RemoveAll(venvPath); err != nil {
				logger.Warn().Err(err).Str("path", venvPath).Msg("Failed to remove old venv")
			}
		}
	}

	if recreateVenv {
		if err := os.MkdirAll(venvPath, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory for venv %s: %w", venvPath, err)
		}

		cmdVenv := exec.Command("python3", "-m", "venv", venvPath)
		var stderrVenv bytes.Buffer
		cmdVenv.Stderr = &stderrVenv
		logger.Debug().Str("command", cmdVenv.String()).Msg("Executing subprocess call")
		if err := cmdVenv.Run(); err != nil {
			return "", fmt.Errorf("failed to create python venv (python3 -m venv %s): %w. Stderr: %s", venvPath, err, stderrVenv.String())
		}
		logger.Info().Msg("Python venv created successfully")

		tempReqFile, err := os.CreateTemp(baseCacheDir, "requirements-*.txt")
		if err != nil {
			return "", fmt.Errorf("failed to create temporary requirements.txt: %w", err)
		}
		defer os.Remove(tempReqFile.Name())

		if _, err := tempReqFile.Write(reqBytes); err != nil {
			tempReqFile.Close()
			return "", fmt.Errorf("failed to write temporary requirements.txt: %w", err)
		}
		tempReqFile.Close()

		cmdPip := exec.Command(pipExecutable, "install", "-r", tempReqFile.Name())
		var stderrPip bytes.Buffer
		cmdPip.Stderr = &stderrPip
		logger.Debug().Str("command", cmdPip.String()).Msg("Executing subprocess call")
		if err := cmdPip.Run(); err != nil {
			return "", fmt.Errorf("failed to install requirements (pip install -r %s): %w. Stderr: %s", tempReqFile.Name(), err, stderrPip.String())
		}
		logger.Info().Msg("Python requirements installed successfully")

		if err := os.WriteFile(storedReqHashPath, []byte(currentReqHash), 0644); err != nil {
			logger.Warn().Err(err).Str("path", storedReqHashPath).Msg("Failed to write requirements hash")
		}
	} else {
		logger.Info().Msg("Existing Python venv found")
	}

	return pythonInterpreter, nil
}

// NewSubprocessRunner ensures the Python environment and extracts the
// driver scripts. The driver process itself starts lazily on the first Run.
func NewSubprocessRunner(opts Options, logger types.Logger) (*SubprocessRunner, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		logger.Warn().Err(err).Msg("Could not get user cache dir, using temp dir for agent")
		userCacheDir = os.TempDir()
	}
	appCacheDir := filepath.Join(userCacheDir, "wfcapture")
	if err := os.MkdirAll(appCacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create app cache directory %s: %w", appCacheDir, err)
	}

	venvPython, err := ensurePythonVenv(appCacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure python venv: %w", err)
	}

	scriptsDir, err := os.MkdirTemp(appCacheDir, "driver-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create driver scripts directory: %w", err)
	}
	for _, scriptName := range []string{assets.RunScriptFile, assets.DriverPyFile} {
		content, err := assets.GetDriverScriptContent(scriptName)
		if err != nil {
			return nil, fmt.Errorf("failed to get embedded script %s: %w", scriptName, err)
		}
		destPath := filepath.Join(scriptsDir, scriptName)
		if err := os.WriteFile(destPath, content, 0755); err != nil {
			return nil, fmt.Errorf("failed to write embedded script %s to %s: %w", scriptName, destPath, err)
		}
	}

	return &SubprocessRunner{
		logger:         logger,
		opts:           opts,
		agentWorkDir:   appCacheDir,
		venvPythonPath: venvPython,
		scriptsDir:     scriptsDir,
	}, nil
}

// start launches the driver process. Caller holds r.mu.
func (r *SubprocessRunner) start() error {
	runScript := filepath.Join(r.scriptsDir, assets.RunScriptFile)

	headless := "false"
	if r.opts.Headless {
		headless = "true"
	}

	cmd := exec.Command(runScript)
	cmd.Env = append(os.Environ(),
		"ANONYMIZED_TELEMETRY=false",
		"OPENAI_API_KEY="+r.opts.APIKey,
		"WFCAPTURE_VENV_PYTHON="+r.venvPythonPath,
		"WFCAPTURE_DRIVER_PY="+filepath.Join(r.scriptsDir, assets.DriverPyFile),
		"WFCAPTURE_HEADLESS="+headless,
		"WFCAPTURE_BROWSER_PROFILE="+r.opts.ProfileDir,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("error creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("error creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("error creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start agent driver %s: %w", runScript, err)
	}

	events := make(chan driverEvent, 16)
	waitErr := make(chan error, 1)

	go r.readEvents(stdout, events)
	go streamOutput(stderr, "STDERR", r.logger)
	go func() {
		waitErr <- cmd.Wait()
	}()

	r.cmd = cmd
	r.stdin = stdin
	r.events = events
	r.waitErr = waitErr
	return nil
}

// readEvents decodes the driver's stdout protocol. Anything that is not a
// JSON event is forwarded to the logger verbatim.
func (r *SubprocessRunner) readEvents(stdout io.Reader, events chan<- driverEvent) {
	defer close(events)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		var evt driverEvent
		if err := json.Unmarshal(line, &evt); err != nil || evt.Event == "" {
			r.logger.Info().Str("source", "STDOUT").Str("agent_line", scanner.Text()).Msg("Agent output")
			continue
		}
		switch evt.Event {
		case "log":
			r.logger.Info().Str("source", "STDOUT").Str("agent_line", evt.Line).Msg("Agent output")
		case "done":
			events <- evt
		}
	}
}

func streamOutput(rd io.Reader, source string, logger types.Logger) {
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		logger.Info().
			Str("source", source).
			Str("agent_line", scanner.Text()).
			Msg("Agent output")
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return
		}
		logger.Error().Err(err).Str("source", source).Msg("Unexpected error streaming agent output")
	}
}

// Run submits one agent run and blocks until the driver reports completion.
// Any error the agent raises is returned unchanged; there is no retry at
// this layer.
func (r *SubprocessRunner) Run(ctx context.Context, req RunRequest) (*History, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		if err := r.start(); err != nil {
			return nil, err
		}
	}

	outFile, err := os.CreateTemp(r.agentWorkDir, "history-*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create history output file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	dreq := driverRequest{
		RunRequest: req,
		ID:         uuid.New().String(),
		Out:        outPath,
	}
	payload, err := json.Marshal(dreq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent request: %w", err)
	}
	if _, err := r.stdin.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("failed to write agent request: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			// The driver cannot abandon a run midway; tear it down so the
			// next Run starts from a clean process.
			r.teardownLocked()
			return nil, ctx.Err()
		case err := <-r.waitErr:
			r.cmd = nil
			return nil, fmt.Errorf("agent driver exited during run: %w", err)
		case evt, ok := <-r.events:
			if !ok {
				// Driver stdout closed; wait for the process exit error.
				r.events = nil
				continue
			}
			if evt.ID != dreq.ID {
				r.logger.Warn().Str("run_id", evt.ID).Msg("Discarding completion event for unknown run")
				continue
			}
			if !evt.OK {
				return nil, fmt.Errorf("agent run failed: %s", evt.Error)
			}
			return readHistory(outPath)
		}
	}
}

func readHistory(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent history %s: %w", path, err)
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse agent history: %w", err)
	}
	return &h, nil
}

// Close shuts down the driver (and with it the shared browser session).
func (r *SubprocessRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
	if err := os.RemoveAll(r.scriptsDir); err != nil {
		r.logger.Warn().Err(err).Str("directory", r.scriptsDir).Msg("Failed to remove driver scripts directory")
	}
	return nil
}

func (r *SubprocessRunner) teardownLocked() {
	if r.cmd == nil {
		return
	}
	// Closing stdin tells the driver to shut the browser down and exit.
	if r.stdin != nil {
		r.stdin.Close()
	}
	select {
	case <-r.waitErr:
	case <-time.After(shutdownGracePeriod):
		r.logger.Warn().Msg("Agent driver did not exit in time, killing")
		if err := r.cmd.Process.Kill(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to kill agent driver")
		}
		<-r.waitErr
	}
	r.cmd = nil
	r.stdin = nil
}
