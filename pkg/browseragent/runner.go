package browseragent

import (
	"context"
)

// RunRequest configures a single run of the external browser-automation
// agent. The agent owns page understanding, action planning and retries;
// this process only passes instructions through and consumes the history.
type RunRequest struct {
	// Task is the instruction handed to the agent verbatim.
	Task string `json:"task"`
	// StartURL, when set, is navigated to before the agent starts.
	StartURL string `json:"start_url,omitempty"`
	// MaxSteps bounds the run. The agent enforces it internally; no
	// additional timeout is imposed on this side.
	MaxSteps int `json:"max_steps"`
	// MaxActionsPerStep caps actions per step for cleaner state coverage.
	MaxActionsPerStep int `json:"max_actions_per_step,omitempty"`
	// ExtendSystemMessage is appended to the agent's system prompt.
	ExtendSystemMessage string `json:"extend_system_message,omitempty"`
	// JudgePrompt, when set, asks the agent's evaluator for a post-hoc
	// verdict over the completed run.
	JudgePrompt string `json:"judge_prompt,omitempty"`
	// UseVision enables per-step screenshots.
	UseVision bool `json:"use_vision"`
	// VisionDetailLevel is passed through to the agent ("low"/"high").
	VisionDetailLevel string `json:"vision_detail_level,omitempty"`
}

// Runner drives the external browser-automation agent. Implementations hold
// one browser session for their whole lifetime, so a login established
// during one run is still present in the next. Run must not be called
// concurrently; the capture pipeline is strictly sequential.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*History, error)
	Close() error
}
