package main

import (
	"github.com/alecthomas/kong"
	"github.com/arnavsurve/wfcapture/cmd/cli"
)

var root struct {
	Menu cli.MenuCmd `cmd:"" default:"1" help:"Interactive menu of canned task catalogues."`
	Ask  cli.AskCmd  `cmd:"" help:"Capture the workflow for a single question."`
}

func main() {
	ctx := kong.Parse(&root,
		kong.Name("wfcapture"),
		kong.Description("Captures annotated browser workflow datasets from natural-language questions."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
