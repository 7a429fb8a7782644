package tasks

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is a named list of canned task descriptions for one application.
type Catalog struct {
	App   string   `yaml:"app"`
	Tasks []string `yaml:"tasks"`
}

// LinearCatalog holds the curated Linear workflows.
var LinearCatalog = Catalog{
	App: "Linear",
	Tasks: []string{
		"Create a new project in Linear with name 'Galactus', priority 'High', set start date to today, and target date to 2 weeks from now. Add summary 'Project management system for cosmic scale applications'",
		"Create a new issue in Linear with title 'Implement authentication system', add description 'Need to add OAuth2 support', set priority to 'Urgent', assign project as 'Galactus' and status as 'In Progress'",
		"Create a new issue in Linear with title 'Fix data synchronization bug', add description 'Investigate and resolve data sync issues between services', set priority to 'High', assign project as 'Galactus' and status as 'TODO'",
		"Navigate to Linear issues page and filter issues by status 'In Progress'",
	},
}

// AsanaCatalog holds the curated Asana workflows.
var AsanaCatalog = Catalog{
	App: "Asana",
	Tasks: []string{
		"Create a new project in Asana named 'Website Redesign' with layout 'List', add description 'Complete redesign of company website with modern UI/UX', and add 3 tasks: 'Design mockups', 'Frontend implementation', and 'QA testing'",
		"Create a new task in Asana with title 'Implement dark mode feature', add description 'Add dark mode toggle to user settings with persistent preference storage', and add it to the 'Website Redesign' project",
		"Find the task 'Frontend implementation' under project 'Website Redesign' in Asana and add 3 subtasks: 'Setup React components', 'Implement responsive layouts', and 'Add animations and transitions'",
		"In the 'Website Redesign' project in Asana, move the task 'Design mockups' from 'To Do' section to 'In Progress' section, then add a comment 'Started working on initial wireframes'",
	},
}

// DefaultCatalogs returns the compiled-in catalogues.
func DefaultCatalogs() []Catalog {
	return []Catalog{LinearCatalog, AsanaCatalog}
}

type catalogFile struct {
	Catalogs []Catalog `yaml:"catalogs"`
}

// LoadCatalogsFile overlays catalogues from a YAML file onto the
// compiled-in defaults. A file catalogue with the same app name (case
// insensitive) replaces the default one; new apps are appended.
func LoadCatalogsFile(path string) ([]Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %q: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	catalogs := DefaultCatalogs()
	for _, loaded := range file.Catalogs {
		if loaded.App == "" {
			return nil, fmt.Errorf("catalog file %q: every catalog needs an 'app' name", path)
		}
		if len(loaded.Tasks) == 0 {
			return nil, fmt.Errorf("catalog file %q: catalog %q has no tasks", path, loaded.App)
		}
		replaced := false
		for i, existing := range catalogs {
			if strings.EqualFold(existing.App, loaded.App) {
				catalogs[i] = loaded
				replaced = true
				break
			}
		}
		if !replaced {
			catalogs = append(catalogs, loaded)
		}
	}
	return catalogs, nil
}

// ParseSelection parses an operator's task selection against a catalogue
// of n tasks. Input is 1-based comma-separated indices; empty input or
// "all" selects everything. Returned indices are 0-based. Out-of-range
// entries land in skipped (the caller warns and continues); a non-numeric
// entry invalidates the whole input.
func ParseSelection(input string, n int) (selected []int, skipped []int, err error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "all") {
		selected = make([]int, n)
		for i := range selected {
			selected[i] = i
		}
		return selected, nil, nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, convErr := strconv.Atoi(part)
		if convErr != nil {
			return nil, nil, fmt.Errorf("invalid selection %q: %q is not a number", input, part)
		}
		zeroBased := idx - 1
		if zeroBased < 0 || zeroBased >= n {
			skipped = append(skipped, idx)
			continue
		}
		selected = append(selected, zeroBased)
	}

	if len(selected) == 0 && len(skipped) == 0 {
		return nil, nil, fmt.Errorf("invalid selection %q: no task numbers given", input)
	}
	return selected, skipped, nil
}
