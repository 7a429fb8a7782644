package types

// ParsedQuestion is the structured result of parsing a natural-language
// question. It is produced once per question, passed in memory to the
// capture pipeline, and never persisted.
type ParsedQuestion struct {
	AppName              string  `json:"app_name"`
	AppURL               string  `json:"app_url"`
	Task                 string  `json:"task"`
	TaskName             string  `json:"task_name"`
	OptimizedDescription string  `json:"optimized_description"`
	AuthRequired         bool    `json:"auth_required"`
	Confidence           float64 `json:"confidence"`
	RawQuestion          string  `json:"raw_question"`
}

// IsValid reports whether every field required downstream is present.
func (p *ParsedQuestion) IsValid() bool {
	return p.AppName != "" && p.AppURL != "" && p.Task != ""
}

// Workflow is one captured task: run-level metadata plus the ordered step
// records derived from the agent's run history. It is written verbatim to
// workflow.json and never mutated afterward.
type Workflow struct {
	Metadata WorkflowMetadata `json:"metadata"`
	Steps    []StepRecord     `json:"steps"`
}

type WorkflowMetadata struct {
	AppName              string     `json:"app_name"`
	TaskName             string     `json:"task_name"`
	TaskDescription      string     `json:"task_description"`
	StartURL             string     `json:"start_url"`
	CaptureTimestamp     string     `json:"capture_timestamp"`
	TotalDurationSeconds float64    `json:"total_duration_seconds"`
	TotalSteps           int        `json:"total_steps"`
	Success              bool       `json:"success"`
	Judgement            *Judgement `json:"judgement"`
}

// StepRecord is the flattened form of a single agent history entry.
// StepNumber is a contiguous zero-based sequence matching execution order.
// Success is tri-state: nil means the agent reported nothing either way.
type StepRecord struct {
	StepNumber     int           `json:"step_number"`
	URL            string        `json:"url"`
	Title          string        `json:"title"`
	ScreenshotPath string        `json:"screenshot_path"`
	Description    string        `json:"description"`
	StepTask       string        `json:"step_task"`
	ActionsTaken   []ActionTaken `json:"actions_taken"`
	Errors         []string      `json:"errors"`
	Success        *bool         `json:"success"`
	IsDone         bool          `json:"is_done"`
	Judgement      *Judgement    `json:"judgement,omitempty"`
}

// ActionTaken is one action the agent executed within a step.
type ActionTaken struct {
	ActionName string         `json:"action_name"`
	Params     map[string]any `json:"params"`
}

// Judgement is the external evaluator's post-hoc verdict over a run.
type Judgement struct {
	Verdict        bool   `json:"verdict"`
	Reasoning      string `json:"reasoning"`
	FailureReason  string `json:"failure_reason"`
	ImpossibleTask bool   `json:"impossible_task"`
	ReachedCaptcha bool   `json:"reached_captcha"`
}

// ScreenshotCount returns how many steps have a screenshot on disk.
func (w *Workflow) ScreenshotCount() int {
	n := 0
	for _, s := range w.Steps {
		if s.ScreenshotPath != "" {
			n++
		}
	}
	return n
}
