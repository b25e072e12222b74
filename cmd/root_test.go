package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tblx/pkg/settings"
)

const peopleJSON = `[
  {"name": "bravo", "age": 2, "team": "web"},
  {"name": "alpha", "age": 1, "team": "core"},
  {"name": "delta", "age": 4, "team": "web"},
  {"name": "charlie", "age": 3, "team": "infra"},
  {"name": "echo", "age": 5, "team": "core"}
]`

// execute runs the CLI with stdin and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if len(args) == 0 || (args[0] != "prefs" && args[0] != "version") {
		args = append([]string{"--no-color", "--width", "100"}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func headerLine(out string) string {
	line, _, _ := strings.Cut(out, "\n")
	return line
}

func TestRootPrintsSortedTable(t *testing.T) {
	out, _, err := execute(t, peopleJSON, "--sort", "name")
	require.NoError(t, err)

	assert.Contains(t, headerLine(out), "name ▲")
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "bravo"))
	assert.Less(t, strings.Index(out, "delta"), strings.Index(out, "echo"))
	assert.Contains(t, out, "Showing 5 rows")
}

func TestRootSortTwiceIsDescending(t *testing.T) {
	out, _, err := execute(t, peopleJSON, "--sort", "age", "--sort", "age")
	require.NoError(t, err)
	assert.Contains(t, headerLine(out), "age ▼")
	assert.Less(t, strings.Index(out, "echo"), strings.Index(out, "alpha"))
}

func TestRootReadsFileArgument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: zulu\n  age: 9\n- name: yankee\n  age: 8\n"), 0o600))

	out, _, err := execute(t, "", path, "--sort", "age")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "yankee"), strings.Index(out, "zulu"))
}

func TestRootHideAndShowGlobs(t *testing.T) {
	out, _, err := execute(t, peopleJSON, "--hide", "*e")
	require.NoError(t, err)
	header := headerLine(out)
	assert.NotContains(t, header, "name")
	assert.NotContains(t, header, "age")
	assert.Contains(t, header, "team")

	out, _, err = execute(t, peopleJSON, "--hide", "*e", "--show", "n?me")
	require.NoError(t, err)
	assert.Contains(t, headerLine(out), "name")
	assert.NotContains(t, headerLine(out), "age")
}

func TestRootMoveColumn(t *testing.T) {
	out, _, err := execute(t, peopleJSON, "--move", "team:age")
	require.NoError(t, err)
	header := headerLine(out)
	assert.Less(t, strings.Index(header, "team"), strings.Index(header, "age"))
	assert.Less(t, strings.Index(header, "age"), strings.Index(header, "name"))
}

func TestRootSearchAndWhere(t *testing.T) {
	out, _, err := execute(t, peopleJSON, "--search", "WEB")
	require.NoError(t, err)
	assert.Contains(t, out, "bravo")
	assert.Contains(t, out, "delta")
	assert.NotContains(t, out, "alpha")

	out, _, err = execute(t, peopleJSON, "--where", `_.age > 3`)
	require.NoError(t, err)
	assert.Contains(t, out, "delta")
	assert.Contains(t, out, "echo")
	assert.NotContains(t, out, "charlie")
	assert.Contains(t, out, "Showing 2 rows")
}

func TestRootPaging(t *testing.T) {
	out, _, err := execute(t, peopleJSON, "--sort", "name", "--page-size", "2", "--page", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "echo")
	assert.NotContains(t, out, "alpha")
	assert.Contains(t, out, "Showing 5-5 of 5 · page 3/3")

	out, _, err = execute(t, peopleJSON, "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "No rows on page 2 of 1")
}

func TestRootExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	out, errOut, err := execute(t, peopleJSON, "--sort", "name", "--toggle", "team", "--export", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "wrote 5 rows")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "age,name\n1,alpha\n2,bravo\n3,charlie\n4,delta\n5,echo\n", string(data))
}

func TestRootColumnsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- key: name
  label: Full Name
  sortable: true
- key: age
  label: Age
- key: team
  label: Team
  hideable: true
  defaultVisible: false
`), 0o600))

	out, _, err := execute(t, peopleJSON, "--columns", path)
	require.NoError(t, err)
	header := headerLine(out)
	assert.Contains(t, header, "Full Name")
	assert.Contains(t, header, "Age")
	assert.NotContains(t, header, "Team")

	for _, args := range [][]string{
		{"--sort", "age"},
		{"--toggle", "age"},
		{"--hide", "a*"},
		{"--move", "name:age"},
	} {
		_, _, err = execute(t, peopleJSON, append([]string{"--columns", path}, args...)...)
		require.Error(t, err, args)
		assert.Regexp(t, "not sortable|cannot be hidden|cannot be moved", err.Error())
	}

	out, _, err = execute(t, peopleJSON, "--columns", path, "--show", "team")
	require.NoError(t, err)
	assert.Contains(t, headerLine(out), "Team")
}

func TestRootErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown sort column", []string{"--sort", "missing"}, "unknown column"},
		{"unknown toggle column", []string{"--toggle", "missing"}, "unknown column"},
		{"glob matches nothing", []string{"--hide", "zz*"}, "unknown column"},
		{"bad move", []string{"--move", "name"}, "ACTIVE:OVER"},
		{"unknown move column", []string{"--move", "name:missing"}, "unknown column"},
		{"last visible column", []string{"--hide", "*"}, "at least one column"},
		{"negative page size", []string{"--page-size", "-1"}, "non-negative"},
		{"bad where", []string{"--where", "_.age +"}, "--where"},
		{"bad export format", []string{"--export", "out.txt"}, "unsupported export format"},
		{"bad store", []string{"--storage-key", "k", "--store", "s3://bucket"}, "unsupported store scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, peopleJSON, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRootUnknownColumnIsTyped(t *testing.T) {
	_, _, err := execute(t, peopleJSON, "--sort", "missing")
	assert.True(t, errors.Is(err, errUnknownColumn))
}

func TestRootEmptyInput(t *testing.T) {
	_, _, err := execute(t, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load stdin")
}

func TestRootPersistsPreferences(t *testing.T) {
	storeURI := "file://" + t.TempDir()

	_, _, err := execute(t, peopleJSON, "--storage-key", "people", "--store", storeURI, "--toggle", "age", "--move", "team:age")
	require.NoError(t, err)

	out, _, err := execute(t, peopleJSON, "--storage-key", "people", "--store", storeURI)
	require.NoError(t, err)
	header := headerLine(out)
	assert.NotContains(t, header, "age")
	assert.Less(t, strings.Index(header, "team"), strings.Index(header, "name"))

	out, _, err = execute(t, "", "prefs", "show", "--storage-key", "people", "--store", storeURI)
	require.NoError(t, err)
	assert.Contains(t, out, "storageKey: people")
	assert.Contains(t, out, "age: false")
	assert.Contains(t, out, "order:")
	assert.Less(t, strings.Index(out, "- team"), strings.Index(out, "- age"))
	assert.Less(t, strings.Index(out, "- age"), strings.Index(out, "- name"))

	out, _, err = execute(t, peopleJSON, "--storage-key", "people", "--store", storeURI, "--reset")
	require.NoError(t, err)
	assert.Contains(t, headerLine(out), "age")

	out, _, err = execute(t, "", "prefs", "show", "--storage-key", "people", "--store", storeURI)
	require.NoError(t, err)
	assert.Equal(t, "no preferences stored for \"people\"\n", out)
}

func TestPrefsReset(t *testing.T) {
	storeURI := "bolt://" + filepath.Join(t.TempDir(), "prefs.db")

	_, _, err := execute(t, peopleJSON, "--storage-key", "people", "--store", storeURI, "--toggle", "team")
	require.NoError(t, err)

	out, _, err := execute(t, "", "prefs", "reset", "--storage-key", "people", "--store", storeURI)
	require.NoError(t, err)
	assert.Contains(t, out, `removed preferences for "people"`)

	out, _, err = execute(t, peopleJSON, "--storage-key", "people", "--store", storeURI)
	require.NoError(t, err)
	assert.Contains(t, headerLine(out), "team")
}

func TestPrefsRequiresStorageKey(t *testing.T) {
	_, _, err := execute(t, "", "prefs", "show", "--store", "memory://")
	assert.ErrorIs(t, err, errNoStorageKey)

	_, _, err = execute(t, "", "prefs", "reset", "--store", "memory://")
	assert.ErrorIs(t, err, errNoStorageKey)
}

func TestConfigFilePrefixesStorageKey(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "prefs")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store: file://"+storeDir+"\nstorageKeyPrefix: team-\n"), 0o600))

	_, _, err := execute(t, peopleJSON, "--config-file", cfgPath, "--storage-key", "people", "--toggle", "age")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(storeDir, "team-people-visibility.json"))
	assert.NoError(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, peopleJSON, "--config-file", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, settings.CliBinaryName+" "+settings.VersionInformation.BuildVersion))
}
