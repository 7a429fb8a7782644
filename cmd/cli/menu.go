package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/arnavsurve/wfcapture/pkg/tasks"
	"github.com/fatih/color"
)

type MenuCmd struct {
	Catalog  string `help:"Optional YAML file with extra task catalogues." type:"path"`
	MaxSteps int    `help:"Maximum number of browser agent steps per capture." default:"0"`
}

func (m *MenuCmd) Run() error {
	catalogs := tasks.DefaultCatalogs()
	if m.Catalog != "" {
		loaded, err := tasks.LoadCatalogsFile(m.Catalog)
		if err != nil {
			return err
		}
		catalogs = loaded
	}

	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	maxSteps := m.MaxSteps
	if maxSteps <= 0 {
		maxSteps = app.cfg.Capture.MaxSteps
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return nil
		}
		printMenu(catalogs)

		choice, err := readLine(reader, "Select an option: ")
		if err != nil {
			return nil
		}

		switch {
		case choice == "0":
			app.logger.Info().Msg("Exiting")
			return nil

		case choice == strconv.Itoa(len(catalogs)+1):
			question, err := readLine(reader, "Enter your question: ")
			if err != nil {
				return nil
			}
			if question == "" {
				fmt.Println("Empty question, try again.")
				continue
			}
			if _, err := app.orch.Ask(ctx, question, maxSteps); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				app.logger.Error().Err(err).Msg("Capture failed")
			}

		default:
			idx, convErr := strconv.Atoi(choice)
			if convErr != nil || idx < 1 || idx > len(catalogs) {
				fmt.Println("Invalid option, try again.")
				continue
			}
			if err := m.runCatalog(ctx, app, reader, catalogs[idx-1], maxSteps); err != nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
		}
	}
}

func (m *MenuCmd) runCatalog(ctx context.Context, a *app, reader *bufio.Reader, cat tasks.Catalog, maxSteps int) error {
	bold := color.New(color.Bold)
	bold.Printf("\n%s tasks:\n", cat.App)
	for i, task := range cat.Tasks {
		fmt.Printf("  %d. %s\n", i+1, summarize(task))
	}
	fmt.Println()

	input, err := readLine(reader, "Task numbers to run (comma separated, empty for all): ")
	if err != nil {
		return nil
	}

	selected, skipped, err := tasks.ParseSelection(input, len(cat.Tasks))
	if err != nil {
		fmt.Printf("%v\n", err)
		return nil
	}
	for _, n := range skipped {
		a.logger.Warn().Int("task_number", n).Msg("Task number out of range, skipping")
	}
	if len(selected) == 0 {
		fmt.Println("Nothing to run.")
		return nil
	}

	results := tasks.RunSelection(ctx, a.orch, cat, selected, maxSteps, a.logger)

	succeeded, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	a.logger.Info().
		Str("app", cat.App).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Msg("Catalogue run complete")
	return nil
}

func printMenu(catalogs []tasks.Catalog) {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\nWorkflow Capture")
	for i, cat := range catalogs {
		fmt.Printf("  %d. Run %s tasks\n", i+1, cat.App)
	}
	fmt.Printf("  %d. Ask a custom question\n", len(catalogs)+1)
	fmt.Println("  0. Exit")
	fmt.Println()
}

func readLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// summarize trims a long task description down to a single menu line.
func summarize(task string) string {
	const max = 100
	if len(task) <= max {
		return task
	}
	return task[:max-3] + "..."
}
