package tasks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/tasks"
	"github.com/arnavsurve/wfcapture/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	questions []string
	failOn    map[string]error
}

func (f *fakeAsker) Ask(ctx context.Context, question string, maxSteps int) (*types.Workflow, error) {
	f.questions = append(f.questions, question)
	if err, ok := f.failOn[question]; ok {
		return nil, err
	}
	return &types.Workflow{
		Metadata: types.WorkflowMetadata{TaskDescription: question, Success: true},
	}, nil
}

func TestRunSelection_RunsSelectedInOrder(t *testing.T) {
	cat := tasks.Catalog{App: "Linear", Tasks: []string{"one", "two", "three"}}
	asker := &fakeAsker{}

	results := tasks.RunSelection(context.Background(), asker, cat, []int{2, 0}, 10, log.Nop())

	assert.Equal(t, []string{"three", "one"}, asker.questions)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "three", results[2].Workflow.Metadata.TaskDescription)
}

// TestRunSelection_FailureIsolation verifies a failing task does not stop
// the rest of the selection.
func TestRunSelection_FailureIsolation(t *testing.T) {
	cat := tasks.Catalog{App: "Asana", Tasks: []string{"one", "two", "three"}}
	boom := errors.New("agent crashed")
	asker := &fakeAsker{failOn: map[string]error{"two": boom}}

	results := tasks.RunSelection(context.Background(), asker, cat, []int{0, 1, 2}, 10, log.Nop())

	assert.Equal(t, []string{"one", "two", "three"}, asker.questions)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Nil(t, results[1].Workflow)
	assert.NoError(t, results[2].Err)
}

func TestRunSelection_CancelledContext(t *testing.T) {
	cat := tasks.Catalog{App: "Linear", Tasks: []string{"one", "two"}}
	asker := &fakeAsker{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := tasks.RunSelection(ctx, asker, cat, []int{0, 1}, 10, log.Nop())

	assert.Empty(t, asker.questions)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.ErrorIs(t, results[1].Err, context.Canceled)
}
