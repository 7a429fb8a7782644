package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arnavsurve/wfcapture/pkg/capture"
	"github.com/arnavsurve/wfcapture/pkg/orchestrator"
	"github.com/arnavsurve/wfcapture/pkg/parser"
	"github.com/arnavsurve/wfcapture/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	result *types.ParsedQuestion
	err    error
	calls  int
}

func (f *fakeParser) Parse(ctx context.Context, question string) (*types.ParsedQuestion, error) {
	f.calls++
	return f.result, f.err
}

type fakeProber struct {
	err   error
	calls int
	urls  []string
}

func (f *fakeProber) Probe(ctx context.Context, appURL string) error {
	f.calls++
	f.urls = append(f.urls, appURL)
	return f.err
}

type fakeAuth struct {
	ok    bool
	err   error
	calls int
}

func (f *fakeAuth) Check(ctx context.Context, appURL, appName string) (bool, error) {
	f.calls++
	return f.ok, f.err
}

type fakeCapturer struct {
	workflow *types.Workflow
	err      error
	calls    int
	requests []capture.Request
	closed   bool
}

func (f *fakeCapturer) CaptureTask(ctx context.Context, req capture.Request) (*types.Workflow, error) {
	f.calls++
	f.requests = append(f.requests, req)
	return f.workflow, f.err
}

func (f *fakeCapturer) Close() error {
	f.closed = true
	return nil
}

func validParsed() *types.ParsedQuestion {
	return &types.ParsedQuestion{
		AppName:              "Linear",
		AppURL:               "https://linear.app",
		Task:                 "Create a project called Galactus",
		TaskName:             "create_project",
		OptimizedDescription: "Open projects, create one named Galactus",
		AuthRequired:         true,
		Confidence:           0.95,
	}
}

func capturedWorkflow() *types.Workflow {
	done := true
	return &types.Workflow{
		Metadata: types.WorkflowMetadata{
			AppName:    "Linear",
			TaskName:   "create_project",
			TotalSteps: 1,
			Success:    true,
		},
		Steps: []types.StepRecord{{
			StepNumber:     0,
			URL:            "https://linear.app/projects",
			Description:    "Opened the projects view",
			ScreenshotPath: "step_000.png",
			Success:        &done,
		}},
	}
}

func TestOrchestrator_Ask_HappyPath(t *testing.T) {
	p := &fakeParser{result: validParsed()}
	prober := &fakeProber{}
	auth := &fakeAuth{ok: true}
	capturer := &fakeCapturer{workflow: capturedWorkflow()}

	o := orchestrator.New(p, prober, auth, capturer, nil)
	workflow, err := o.Ask(context.Background(), "How do I create a project in Linear?", 25)
	require.NoError(t, err)
	require.NotNil(t, workflow)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, []string{"https://linear.app"}, prober.urls)
	assert.Equal(t, 1, auth.calls)
	require.Len(t, capturer.requests, 1)

	req := capturer.requests[0]
	assert.Equal(t, "https://linear.app", req.AppURL)
	assert.Equal(t, "Linear", req.AppName)
	assert.Equal(t, 25, req.MaxSteps)
	assert.Equal(t, "Open projects, create one named Galactus", req.OptimizedDescription)
}

// TestOrchestrator_Ask_ParseFailureStopsPipeline verifies a rejected
// question never reaches the network or the browser.
func TestOrchestrator_Ask_ParseFailureStopsPipeline(t *testing.T) {
	p := &fakeParser{err: &parser.ValidationError{Reason: "cannot extract web application information"}}
	prober := &fakeProber{}
	auth := &fakeAuth{ok: true}
	capturer := &fakeCapturer{}

	o := orchestrator.New(p, prober, auth, capturer, nil)
	_, err := o.Ask(context.Background(), "What's the weather like today?", 25)

	var verr *parser.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, prober.calls)
	assert.Zero(t, auth.calls)
	assert.Zero(t, capturer.calls)
}

func TestOrchestrator_Ask_ProbeFailureStopsPipeline(t *testing.T) {
	p := &fakeParser{result: validParsed()}
	probeErr := &orchestrator.ProbeError{
		URL:    "https://linear.app",
		Reason: orchestrator.ReasonTimeout,
		Hint:   "URL validation timed out",
	}
	prober := &fakeProber{err: probeErr}
	auth := &fakeAuth{ok: true}
	capturer := &fakeCapturer{}

	o := orchestrator.New(p, prober, auth, capturer, nil)
	_, err := o.Ask(context.Background(), "How do I create a project in Linear?", 25)

	require.Error(t, err)
	assert.ErrorContains(t, err, "cannot access Linear at https://linear.app")
	var perr *orchestrator.ProbeError
	assert.ErrorAs(t, err, &perr)
	assert.Zero(t, auth.calls)
	assert.Zero(t, capturer.calls)
}

func TestOrchestrator_Ask_AuthSkippedWhenNotRequired(t *testing.T) {
	parsed := validParsed()
	parsed.AuthRequired = false
	p := &fakeParser{result: parsed}
	prober := &fakeProber{}
	auth := &fakeAuth{}
	capturer := &fakeCapturer{workflow: capturedWorkflow()}

	o := orchestrator.New(p, prober, auth, capturer, nil)
	_, err := o.Ask(context.Background(), "How do I search on Wikipedia?", 25)
	require.NoError(t, err)

	assert.Zero(t, auth.calls)
	assert.Equal(t, 1, capturer.calls)
}

func TestOrchestrator_Ask_AuthFailureStopsPipeline(t *testing.T) {
	p := &fakeParser{result: validParsed()}
	prober := &fakeProber{}
	auth := &fakeAuth{err: errors.New("could not verify authentication after 3 attempts")}
	capturer := &fakeCapturer{}

	o := orchestrator.New(p, prober, auth, capturer, nil)
	_, err := o.Ask(context.Background(), "How do I create a project in Linear?", 25)

	assert.ErrorContains(t, err, "authentication check for Linear")
	assert.Zero(t, capturer.calls)
}

func TestOrchestrator_Ask_AuthDenied(t *testing.T) {
	p := &fakeParser{result: validParsed()}
	prober := &fakeProber{}
	auth := &fakeAuth{ok: false}
	capturer := &fakeCapturer{}

	o := orchestrator.New(p, prober, auth, capturer, nil)
	_, err := o.Ask(context.Background(), "How do I create a project in Linear?", 25)

	assert.ErrorContains(t, err, "authentication to Linear failed")
	assert.Zero(t, capturer.calls)
}

func TestOrchestrator_Ask_CaptureErrorPropagates(t *testing.T) {
	p := &fakeParser{result: validParsed()}
	prober := &fakeProber{}
	auth := &fakeAuth{ok: true}
	boom := errors.New("agent run failed")
	capturer := &fakeCapturer{err: boom}

	o := orchestrator.New(p, prober, auth, capturer, nil)
	_, err := o.Ask(context.Background(), "How do I create a project in Linear?", 25)
	assert.ErrorIs(t, err, boom)
}

func TestOrchestrator_Close(t *testing.T) {
	capturer := &fakeCapturer{}
	o := orchestrator.New(&fakeParser{}, &fakeProber{}, &fakeAuth{}, capturer, nil)

	require.NoError(t, o.Close())
	assert.True(t, capturer.closed)
}
