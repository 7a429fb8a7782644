package tasks_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arnavsurve/wfcapture/pkg/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		n            int
		wantSelected []int
		wantSkipped  []int
		wantErr      bool
	}{
		{
			name:         "empty input selects all",
			input:        "",
			n:            3,
			wantSelected: []int{0, 1, 2},
		},
		{
			name:         "all keyword selects all",
			input:        "ALL",
			n:            2,
			wantSelected: []int{0, 1},
		},
		{
			name:         "single index",
			input:        "2",
			n:            4,
			wantSelected: []int{1},
		},
		{
			name:         "comma separated with spaces",
			input:        " 1, 3 ",
			n:            4,
			wantSelected: []int{0, 2},
		},
		{
			name:         "out of range indices are skipped",
			input:        "1,9,0",
			n:            4,
			wantSelected: []int{0},
			wantSkipped:  []int{9, 0},
		},
		{
			name:    "non-numeric entry invalidates the input",
			input:   "1,two",
			n:       4,
			wantErr: true,
		},
		{
			name:    "garbage input",
			input:   ",,,",
			n:       4,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, skipped, err := tasks.ParseSelection(tt.input, tt.n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSelected, selected)
			assert.Equal(t, tt.wantSkipped, skipped)
		})
	}
}

func TestDefaultCatalogs(t *testing.T) {
	catalogs := tasks.DefaultCatalogs()
	require.Len(t, catalogs, 2)
	assert.Equal(t, "Linear", catalogs[0].App)
	assert.Equal(t, "Asana", catalogs[1].App)
	for _, cat := range catalogs {
		assert.NotEmpty(t, cat.Tasks, "catalog %s has no tasks", cat.App)
	}
}

func TestLoadCatalogsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yml")
	content := `catalogs:
  - app: Notion
    tasks:
      - Create a new page titled 'Weekly notes'
  - app: linear
    tasks:
      - Only task left for Linear
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	catalogs, err := tasks.LoadCatalogsFile(path)
	require.NoError(t, err)
	require.Len(t, catalogs, 3)

	// Linear is replaced, case insensitively; Notion is appended.
	assert.Equal(t, []string{"Only task left for Linear"}, catalogs[0].Tasks)
	assert.Equal(t, "Asana", catalogs[1].App)
	assert.Equal(t, "Notion", catalogs[2].App)
}

func TestLoadCatalogsFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "nope.yml")
	_, err := tasks.LoadCatalogsFile(missing)
	assert.Error(t, err)

	noName := filepath.Join(dir, "noname.yml")
	require.NoError(t, os.WriteFile(noName, []byte("catalogs:\n  - tasks: [x]\n"), 0644))
	_, err = tasks.LoadCatalogsFile(noName)
	assert.ErrorContains(t, err, "app")

	empty := filepath.Join(dir, "empty.yml")
	require.NoError(t, os.WriteFile(empty, []byte("catalogs:\n  - app: Jira\n"), 0644))
	_, err = tasks.LoadCatalogsFile(empty)
	assert.ErrorContains(t, err, "no tasks")
}
