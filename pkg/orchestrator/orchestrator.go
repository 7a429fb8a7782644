package orchestrator

import (
	"context"
	"fmt"

	"github.com/arnavsurve/wfcapture/pkg/capture"
	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/parser"
	"github.com/arnavsurve/wfcapture/pkg/types"
)

// QuestionParser turns a natural-language question into a structured task.
type QuestionParser interface {
	Parse(ctx context.Context, question string) (*types.ParsedQuestion, error)
}

// Prober checks that an application URL is reachable.
type Prober interface {
	Probe(ctx context.Context, appURL string) error
}

// AuthProbe verifies the browser session is logged in to an application.
type AuthProbe interface {
	Check(ctx context.Context, appURL, appName string) (bool, error)
}

// TaskCapturer runs one task through the browser agent and records it.
type TaskCapturer interface {
	CaptureTask(ctx context.Context, req capture.Request) (*types.Workflow, error)
	Close() error
}

// Orchestrator sequences a question into a workflow capture: parse, probe
// reachability, optionally verify authentication, then capture. Each step
// is a hard gate; a failure aborts the remaining steps. It owns the shared
// state the pipeline needs (the parser's cache, the capturer and with it
// the browser session): open it once, Ask any number of times, Close it
// when done.
type Orchestrator struct {
	parser   QuestionParser
	prober   Prober
	auth     AuthProbe
	capturer TaskCapturer
	logger   types.Logger
}

func New(
	questionParser QuestionParser,
	prober Prober,
	auth AuthProbe,
	capturer TaskCapturer,
	logger types.Logger,
) *Orchestrator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Orchestrator{
		parser:   questionParser,
		prober:   prober,
		auth:     auth,
		capturer: capturer,
		logger:   logger,
	}
}

// Ask parses the question and, if it describes a reachable web-app task,
// captures the workflow. maxSteps bounds the agent run.
func (o *Orchestrator) Ask(ctx context.Context, question string, maxSteps int) (*types.Workflow, error) {
	o.logger.Info().Str("question", question).Msg("Processing question")

	o.logger.Info().Msg("Step 1: Parsing question")
	parsed, err := o.parser.Parse(ctx, question)
	if err != nil {
		return nil, err
	}
	if !parsed.IsValid() {
		return nil, &parser.ValidationError{
			Reason: "could not determine which app to use or its URL; " +
				"provide a clear question mentioning the web application",
		}
	}

	o.logger.Info().
		Str("app", parsed.AppName).
		Str("url", parsed.AppURL).
		Str("task_name", parsed.TaskName).
		Bool("auth_required", parsed.AuthRequired).
		Float64("confidence", parsed.Confidence).
		Msg("Question parsed")

	o.logger.Info().Msg("Step 2: Validating application URL")
	if err := o.prober.Probe(ctx, parsed.AppURL); err != nil {
		return nil, fmt.Errorf("cannot access %s at %s: %w", parsed.AppName, parsed.AppURL, err)
	}

	if parsed.AuthRequired {
		o.logger.Info().Msg("Step 3: Checking authentication status (required for this task)")
		authenticated, err := o.auth.Check(ctx, parsed.AppURL, parsed.AppName)
		if err != nil {
			return nil, fmt.Errorf("authentication check for %s: %w", parsed.AppName, err)
		}
		if !authenticated {
			return nil, fmt.Errorf("authentication to %s failed; ensure you can log in successfully and try again", parsed.AppName)
		}
	} else {
		o.logger.Info().Msg("Step 3: Skipping authentication check (task does not require authentication)")
	}

	o.logger.Info().Msg("Step 4: Capturing workflow")
	workflow, err := o.capturer.CaptureTask(ctx, capture.Request{
		AppURL:               parsed.AppURL,
		Task:                 parsed.Task,
		TaskName:             parsed.TaskName,
		AppName:              parsed.AppName,
		MaxSteps:             maxSteps,
		OptimizedDescription: parsed.OptimizedDescription,
	})
	if err != nil {
		return nil, err
	}

	o.logResultSummary(workflow)
	return workflow, nil
}

// Close releases the shared resources: the capturer and the browser
// session it holds.
func (o *Orchestrator) Close() error {
	o.logger.Info().Msg("Closing orchestrator")
	return o.capturer.Close()
}

func (o *Orchestrator) logResultSummary(workflow *types.Workflow) {
	meta := workflow.Metadata

	o.logger.Info().
		Bool("success", meta.Success).
		Float64("duration_seconds", meta.TotalDurationSeconds).
		Int("total_steps", meta.TotalSteps).
		Int("screenshots", workflow.ScreenshotCount()).
		Msg("Result summary")

	if meta.Judgement != nil {
		o.logger.Info().
			Bool("verdict", meta.Judgement.Verdict).
			Str("reasoning", truncate(meta.Judgement.Reasoning, 100)).
			Msg("Judgement")
	}

	// First few captured states, for a quick read of what happened.
	for i, step := range workflow.Steps {
		if i >= 3 {
			o.logger.Info().Int("more_steps", len(workflow.Steps)-3).Msg("...")
			break
		}
		o.logger.Info().
			Int("step", step.StepNumber).
			Str("description", truncate(step.Description, 60)).
			Msg("Captured state")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
