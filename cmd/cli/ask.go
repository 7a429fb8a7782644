package cli

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
)

type AskCmd struct {
	Question []string `arg:"" help:"Natural-language question describing the task to capture."`
	MaxSteps int      `help:"Maximum number of browser agent steps per capture." default:"0"`
}

func (a *AskCmd) Run() error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	maxSteps := a.MaxSteps
	if maxSteps <= 0 {
		maxSteps = app.cfg.Capture.MaxSteps
	}

	question := strings.Join(a.Question, " ")
	workflow, err := app.orch.Ask(ctx, question, maxSteps)
	if err != nil {
		return err
	}

	app.logger.Info().
		Str("app", workflow.Metadata.AppName).
		Int("total_steps", workflow.Metadata.TotalSteps).
		Bool("success", workflow.Metadata.Success).
		Msg("Capture complete")
	return nil
}
