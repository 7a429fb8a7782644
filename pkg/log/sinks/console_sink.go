package sinks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/types"
	"github.com/fatih/color"
)

type ConsoleSink struct{}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

func (c *ConsoleSink) Write(event *log.LogEvent) error {
	app := getStringField(event.Fields, "app")
	task := getStringField(event.Fields, "task")
	source := getStringField(event.Fields, "source")
	agentLine := getStringField(event.Fields, "agent_line")
	errorMsg := getStringField(event.Fields, "error")
	msg := event.Message
	levelStr := strings.ToUpper(log.LevelToString(event.Level))
	timestampStr := event.Timestamp.Format(time.RFC3339)

	levelColorMap := map[types.Level]*color.Color{
		types.DebugLevel: color.New(color.FgCyan),
		types.InfoLevel:  color.New(color.FgGreen),
		types.WarnLevel:  color.New(color.FgYellow),
		types.ErrorLevel: color.New(color.FgRed),
		types.FatalLevel: color.New(color.FgRed, color.Bold),
	}

	levelFmt := color.New(color.FgWhite).SprintFunc()
	if lc, ok := levelColorMap[event.Level]; ok {
		levelFmt = lc.SprintFunc()
	}

	scopeLabel := "capture"
	switch {
	case app != "" && task != "":
		scopeLabel = app + "/" + task
	case app != "":
		scopeLabel = app
	}

	commonPrefix := fmt.Sprintf("[%s %s] %s: ",
		levelFmt(levelStr),
		color.New(color.FgWhite).SprintFunc()(timestampStr),
		color.CyanString(scopeLabel),
	)

	var output string
	switch {
	case agentLine != "" && source != "":
		output = fmt.Sprintf("%s[agent/%s]: %s", commonPrefix, color.BlueString(source), agentLine)
	case errorMsg != "" && msg != "":
		output = fmt.Sprintf("%s%s: %s", commonPrefix, msg, errorMsg)
	case errorMsg != "":
		output = fmt.Sprintf("%s%s", commonPrefix, errorMsg)
	case msg != "":
		output = fmt.Sprintf("%s%s", commonPrefix, msg)
	default:
		fieldsStr, _ := json.Marshal(event.Fields)
		output = fmt.Sprintf("%s%s", commonPrefix, string(fieldsStr))
	}
	fmt.Println(output)
	return nil
}

func (c *ConsoleSink) Close() error {
	return nil
}

func getStringField(fields map[string]any, key string) string {
	if val, ok := fields[key]; ok {
		if strVal, isStr := val.(string); isStr {
			return strVal
		}
	}
	return ""
}
