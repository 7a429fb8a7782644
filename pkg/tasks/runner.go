package tasks

import (
	"context"

	"github.com/arnavsurve/wfcapture/pkg/types"
)

// Asker runs a single natural-language question end to end.
type Asker interface {
	Ask(ctx context.Context, question string, maxSteps int) (*types.Workflow, error)
}

// Result holds the outcome of one catalogue task.
type Result struct {
	Task     string
	Workflow *types.Workflow
	Err      error
}

// RunSelection runs the selected catalogue tasks in order. A failing
// task is recorded and the remaining tasks still run; the only way to
// stop early is context cancellation.
func RunSelection(ctx context.Context, asker Asker, cat Catalog, indices []int, maxSteps int, logger types.Logger) map[int]Result {
	results := make(map[int]Result, len(indices))

	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			results[idx] = Result{Task: cat.Tasks[idx], Err: err}
			continue
		}

		task := cat.Tasks[idx]
		logger.Info().
			Str("app", cat.App).
			Int("task_number", idx+1).
			Int("task_count", len(cat.Tasks)).
			Msg("Running catalogue task")

		workflow, err := asker.Ask(ctx, task, maxSteps)
		if err != nil {
			logger.Error().
				Str("app", cat.App).
				Int("task_number", idx+1).
				Err(err).
				Msg("Catalogue task failed")
		}
		results[idx] = Result{Task: task, Workflow: workflow, Err: err}
	}

	return results
}
