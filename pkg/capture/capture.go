package capture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arnavsurve/wfcapture/pkg/browseragent"
	"github.com/arnavsurve/wfcapture/pkg/fileutil"
	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/types"
)

const (
	workflowFileName  = "workflow.json"
	maxActionsPerStep = 2
)

// Request describes one task capture.
type Request struct {
	AppURL   string
	Task     string
	TaskName string
	AppName  string
	MaxSteps int
	// OptimizedDescription, when set, is the instruction handed to the
	// agent; Task is still recorded in the metadata.
	OptimizedDescription string
}

// Capturer runs tasks through the external browser agent and records the
// resulting UI states: per-step screenshots plus one workflow.json per
// task under <output_base>/<app_name>/<task_name>.
type Capturer struct {
	runner        browseragent.Runner
	outputBaseDir string
	logger        types.Logger
}

func New(runner browseragent.Runner, outputBaseDir string, logger types.Logger) (*Capturer, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if err := os.MkdirAll(outputBaseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output base directory %q: %w", outputBaseDir, err)
	}
	return &Capturer{
		runner:        runner,
		outputBaseDir: outputBaseDir,
		logger:        logger,
	}, nil
}

// CaptureTask is the main entry point for capturing a workflow. Any error
// the agent run raises is propagated unchanged; failures to persist an
// individual screenshot or the metadata file are logged and degrade
// gracefully instead of aborting the capture.
func (c *Capturer) CaptureTask(ctx context.Context, req Request) (*types.Workflow, error) {
	logger := c.logger.With().
		Str("app", fileutil.SafeName(req.AppName)).
		Str("task", fileutil.SafeName(req.TaskName)).
		Logger()

	logger.Info().Str("url", req.AppURL).Msg("Starting workflow capture")
	if req.OptimizedDescription != "" {
		logger.Info().
			Str("original", req.Task).
			Str("optimized", req.OptimizedDescription).
			Msg("Using optimized task description")
	}

	outputDir := fileutil.TaskOutputDir(c.outputBaseDir, req.AppName, req.TaskName)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating task output directory %q: %w", outputDir, err)
	}

	instruction := req.Task
	if req.OptimizedDescription != "" {
		instruction = req.OptimizedDescription
	}

	startTime := time.Now()

	history, err := c.runner.Run(ctx, browseragent.RunRequest{
		Task:                agentTask(req.AppURL, instruction),
		MaxSteps:            req.MaxSteps,
		MaxActionsPerStep:   maxActionsPerStep,
		ExtendSystemMessage: captureSystemPrompt,
		JudgePrompt:         judgePrompt(req.Task, req.AppName),
		UseVision:           true,
		VisionDetailLevel:   "high",
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error during workflow execution")
		return nil, err
	}

	duration := time.Since(startTime).Seconds()

	workflow := c.buildWorkflow(history, req, outputDir, duration, logger)

	c.saveWorkflowMetadata(workflow, outputDir, logger)
	c.logSummary(workflow, outputDir, logger)

	return workflow, nil
}

// Close tears down the agent runner and its browser session.
func (c *Capturer) Close() error {
	return c.runner.Close()
}

func (c *Capturer) buildWorkflow(
	history *browseragent.History,
	req Request,
	outputDir string,
	duration float64,
	logger types.Logger,
) *types.Workflow {
	workflow := &types.Workflow{
		Metadata: types.WorkflowMetadata{
			AppName:              req.AppName,
			TaskName:             req.TaskName,
			TaskDescription:      req.Task,
			StartURL:             req.AppURL,
			CaptureTimestamp:     time.Now().Format(time.RFC3339),
			TotalDurationSeconds: duration,
			TotalSteps:           len(history.Steps),
			Success:              history.IsSuccessful,
			Judgement:            history.Judgement,
		},
		Steps: make([]types.StepRecord, 0, len(history.Steps)),
	}

	for i, step := range history.Steps {
		workflow.Steps = append(workflow.Steps, c.processStep(step, i, outputDir, logger))
	}

	return workflow
}

// processStep flattens a single history entry into a StepRecord, saving
// its screenshot when one is present.
func (c *Capturer) processStep(
	step browseragent.HistoryStep,
	stepNumber int,
	outputDir string,
	logger types.Logger,
) types.StepRecord {
	record := types.StepRecord{
		StepNumber:   stepNumber,
		URL:          step.URL,
		Title:        step.Title,
		Description:  step.Memory,
		ActionsTaken: make([]types.ActionTaken, 0, len(step.Actions)),
		Errors:       []string{},
	}

	for _, action := range step.Actions {
		record.ActionsTaken = append(record.ActionsTaken, types.ActionTaken{
			ActionName: action.Name,
			Params:     action.Params,
		})
	}

	var resultDescriptions []string
	for _, result := range step.Results {
		if result.ExtractedContent != "" {
			resultDescriptions = append(resultDescriptions, result.ExtractedContent)
		}
		if result.Error != "" {
			record.Errors = append(record.Errors, result.Error)
		}
		if result.Success != nil {
			record.Success = result.Success
		}
		if result.IsDone {
			record.IsDone = true
			if result.Judgement != nil {
				record.Judgement = result.Judgement
			}
		}
	}
	if len(resultDescriptions) > 0 {
		record.StepTask = joinDescriptions(resultDescriptions)
	}

	// Errors without an explicit success flag mean the step failed.
	if len(record.Errors) > 0 && record.Success == nil {
		failed := false
		record.Success = &failed
	}

	if step.ScreenshotB64 != "" {
		filename := fmt.Sprintf("step_%03d.png", stepNumber)
		path := filepath.Join(outputDir, filename)
		if err := writeScreenshot(path, step.ScreenshotB64); err != nil {
			logger.Warn().Err(err).Int("step", stepNumber).Msg("Failed to save screenshot")
		} else {
			record.ScreenshotPath = path
			logger.Debug().Str("screenshot", filename).Msg("Saved screenshot")
		}
	}

	return record
}

func writeScreenshot(path, b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("decoding screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}
	return nil
}

func joinDescriptions(descriptions []string) string {
	out := descriptions[0]
	for _, d := range descriptions[1:] {
		out += " | " + d
	}
	return out
}

// saveWorkflowMetadata persists workflow.json. A write failure is logged
// but not escalated.
func (c *Capturer) saveWorkflowMetadata(workflow *types.Workflow, outputDir string, logger types.Logger) {
	metadataPath := filepath.Join(outputDir, workflowFileName)

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal workflow metadata")
		return
	}
	if err := os.WriteFile(metadataPath, data, 0644); err != nil {
		logger.Error().Err(err).Str("path", metadataPath).Msg("Failed to save workflow metadata")
		return
	}
	logger.Info().Str("path", metadataPath).Msg("Saved workflow metadata")
}

func (c *Capturer) logSummary(workflow *types.Workflow, outputDir string, logger types.Logger) {
	meta := workflow.Metadata

	logger.Info().
		Bool("success", meta.Success).
		Float64("duration_seconds", meta.TotalDurationSeconds).
		Int("total_steps", meta.TotalSteps).
		Int("screenshots", workflow.ScreenshotCount()).
		Str("output_dir", outputDir).
		Msg("Workflow capture summary")

	if meta.Judgement != nil {
		evt := logger.Info().
			Bool("verdict", meta.Judgement.Verdict).
			Str("reasoning", truncate(meta.Judgement.Reasoning, 150))
		if meta.Judgement.FailureReason != "" {
			evt = evt.Str("failure_reason", meta.Judgement.FailureReason)
		}
		if meta.Judgement.ImpossibleTask {
			evt = evt.Bool("impossible_task", true)
		}
		if meta.Judgement.ReachedCaptcha {
			evt = evt.Bool("reached_captcha", true)
		}
		evt.Msg("Judgement")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
