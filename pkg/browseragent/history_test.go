package browseragent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_ExtractedContent(t *testing.T) {
	h := &History{
		Steps: []HistoryStep{
			{Results: []HistoryResult{
				{ExtractedContent: "first"},
				{Error: "ignored"},
			}},
			{Results: []HistoryResult{
				{ExtractedContent: "second"},
			}},
		},
	}
	assert.Equal(t, "first\nsecond", h.ExtractedContent())

	empty := &History{}
	assert.Equal(t, "", empty.ExtractedContent())
}

func TestHistory_FinalState(t *testing.T) {
	h := &History{
		Steps: []HistoryStep{
			{URL: "https://linear.app/login", Title: "Sign in"},
			{URL: "https://linear.app/workspace", Title: "Linear"},
		},
	}
	assert.Equal(t, "https://linear.app/workspace", h.FinalURL())
	assert.Equal(t, "Linear", h.FinalTitle())

	empty := &History{}
	assert.Equal(t, "", empty.FinalURL())
	assert.Equal(t, "", empty.FinalTitle())
}

// TestHistory_DecodeDriverPayload pins the wire format the Python driver
// emits for a run.
func TestHistory_DecodeDriverPayload(t *testing.T) {
	payload := `{
		"steps": [
			{
				"url": "https://asana.com/home",
				"title": "Home",
				"memory": "On the home view",
				"screenshot_b64": "aGVsbG8=",
				"actions": [{"name": "click_element", "params": {"index": 4}}],
				"results": [
					{"extracted_content": "Opened the project", "success": true, "is_done": true,
					 "judgement": {"verdict": true, "reasoning": "done"}}
				]
			}
		],
		"is_successful": true,
		"judgement": {"verdict": true, "reasoning": "task completed"}
	}`

	var h History
	require.NoError(t, json.Unmarshal([]byte(payload), &h))

	assert.True(t, h.IsSuccessful)
	require.NotNil(t, h.Judgement)
	assert.True(t, h.Judgement.Verdict)

	require.Len(t, h.Steps, 1)
	step := h.Steps[0]
	assert.Equal(t, "https://asana.com/home", step.URL)
	assert.Equal(t, "aGVsbG8=", step.ScreenshotB64)
	require.Len(t, step.Actions, 1)
	assert.Equal(t, "click_element", step.Actions[0].Name)

	require.Len(t, step.Results, 1)
	res := step.Results[0]
	require.NotNil(t, res.Success)
	assert.True(t, *res.Success)
	assert.True(t, res.IsDone)
	require.NotNil(t, res.Judgement)
}
