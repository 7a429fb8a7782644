package browseragent

import (
	"strings"

	"github.com/arnavsurve/wfcapture/pkg/types"
)

// History is the agent's full run history as emitted by the driver: one
// entry per executed step, in execution order, plus the run-level outcome.
type History struct {
	Steps        []HistoryStep    `json:"steps"`
	IsSuccessful bool             `json:"is_successful"`
	Judgement    *types.Judgement `json:"judgement,omitempty"`
}

// HistoryStep is the raw per-step state/action/result bundle.
type HistoryStep struct {
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	Memory        string          `json:"memory"`
	ScreenshotB64 string          `json:"screenshot_b64,omitempty"`
	Actions       []HistoryAction `json:"actions"`
	Results       []HistoryResult `json:"results"`
}

type HistoryAction struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

type HistoryResult struct {
	ExtractedContent string           `json:"extracted_content,omitempty"`
	Error            string           `json:"error,omitempty"`
	Success          *bool            `json:"success,omitempty"`
	IsDone           bool             `json:"is_done,omitempty"`
	Judgement        *types.Judgement `json:"judgement,omitempty"`
}

// ExtractedContent concatenates every piece of content the agent extracted
// during the run. Probe-style runs communicate through sentinel strings in
// this stream.
func (h *History) ExtractedContent() string {
	var parts []string
	for _, step := range h.Steps {
		for _, res := range step.Results {
			if res.ExtractedContent != "" {
				parts = append(parts, res.ExtractedContent)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// FinalURL returns the URL of the last step, or "" for an empty history.
func (h *History) FinalURL() string {
	if len(h.Steps) == 0 {
		return ""
	}
	return h.Steps[len(h.Steps)-1].URL
}

// FinalTitle returns the page title of the last step.
func (h *History) FinalTitle() string {
	if len(h.Steps) == 0 {
		return ""
	}
	return h.Steps[len(h.Steps)-1].Title
}
