// Package loader turns JSON, NDJSON, YAML, and TOML documents into table rows
// and column definitions.
package loader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tblx/pkg/table"
)

var (
	// ErrEmptyInput is returned when there is nothing to parse.
	ErrEmptyInput = errors.New("empty input")
	// ErrNotTabular is returned when a document has no row-shaped records.
	ErrNotTabular = errors.New("input is not a list of records")
)

var (
	// [server], [[items]], ["table name"], [database.credentials]
	// but not JSON arrays like [1, 2, 3].
	tomlSectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// name = "value", not the YAML name: value.
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// LoadRows parses input into rows, auto-detecting the format. Accepted shapes:
//   - a JSON or YAML array of objects
//   - newline-delimited JSON objects
//   - multi-document YAML, one object per document
//   - a single object whose only list-of-objects field holds the rows
//     (e.g. {"items": [...]} or TOML [[items]] tables)
//   - a single object, which becomes one row
func LoadRows(input string) ([]table.Row, error) {
	docs, err := loadDocuments(input)
	if err != nil {
		return nil, err
	}
	if len(docs) == 1 {
		return toRows(docs[0])
	}
	rows := make([]table.Row, 0, len(docs))
	for i, d := range docs {
		m, ok := d.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: document %d is %T", ErrNotTabular, i+1, d)
		}
		rows = append(rows, normalizeRow(m))
	}
	return rows, nil
}

// LoadRowsReader reads all of r and parses it with LoadRows.
func LoadRowsReader(r io.Reader) ([]table.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return LoadRows(string(data))
}

// LoadRowsFile reads a file and parses it with LoadRows. A path of "-" reads
// standard input.
func LoadRowsFile(path string) ([]table.Row, error) {
	if path == "-" {
		return LoadRowsReader(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadRows(string(data))
}

// InferColumns builds a column for every key seen in rows, sorted by key.
// Inferred columns are sortable, hideable, and draggable.
func InferColumns(rows []table.Row) []table.ColumnConfig {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	cols := make([]table.ColumnConfig, len(keys))
	for i, k := range keys {
		cols[i] = table.ColumnConfig{Key: k, Sortable: true, Hideable: true, Draggable: true}
	}
	return cols
}

func loadDocuments(input string) ([]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return loadMultiDocYAML(input)
	}

	// A whole JSON document wins over the line-based guesses: pretty-printed
	// arrays have a '{' on most lines.
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		var data any
		if err := json.Unmarshal([]byte(input), &data); err == nil {
			return []any{data}, nil
		}
	}

	if lines := strings.Split(input, "\n"); len(lines) > 1 && isLikelyNDJSON(lines) {
		return loadNDJSON(lines)
	}

	// TOML section headers look like JSON arrays, so check TOML before YAML.
	if isLikelyTOML(input) {
		return loadTOML(input)
	}

	// {invalid} is still a valid YAML flow mapping.
	return loadYAML(input)
}

func loadYAML(input string) ([]any, error) {
	var data any
	if err := yaml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return []any{data}, nil
}

func loadMultiDocYAML(input string) ([]any, error) {
	var results []any
	decoder := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		if doc != nil {
			results = append(results, doc)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no documents found in multi-document YAML")
	}
	return results, nil
}

func loadNDJSON(lines []string) ([]any, error) {
	results := make([]any, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", i+1, err)
		}
		results = append(results, obj)
	}
	if len(results) == 0 {
		return nil, ErrEmptyInput
	}
	return results, nil
}

func loadTOML(input string) ([]any, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{data}, nil
}

// isLikelyNDJSON reports whether a majority of non-empty lines start with
// '{' or '['. YAML lists with bare "- name" items stay YAML.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

// isLikelyTOML looks for section headers, or a majority of key = value lines.
func isLikelyTOML(input string) bool {
	sections, keyValues, nonEmpty := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSectionPattern.MatchString(line) {
			sections++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValues++
		}
	}
	return sections > 0 || (nonEmpty > 0 && keyValues > nonEmpty/2)
}

func toRows(doc any) ([]table.Row, error) {
	switch v := doc.(type) {
	case []any:
		return recordsToRows(v)
	case []map[string]any:
		rows := make([]table.Row, len(v))
		for i, m := range v {
			rows[i] = normalizeRow(m)
		}
		return rows, nil
	case map[string]any:
		if list, ok := singleRecordList(v); ok {
			return toRows(list)
		}
		return []table.Row{normalizeRow(v)}, nil
	case nil:
		return []table.Row{}, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotTabular, doc)
	}
}

func recordsToRows(items []any) ([]table.Row, error) {
	rows := make([]table.Row, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrNotTabular, i, item)
		}
		rows = append(rows, normalizeRow(m))
	}
	return rows, nil
}

// singleRecordList finds the one field holding a list of objects. Wrappers
// with zero or several such fields are treated as a single record.
func singleRecordList(m map[string]any) (any, bool) {
	var found any
	count := 0
	for _, v := range m {
		switch list := v.(type) {
		case []any:
			if len(list) > 0 && allRecords(list) {
				found = list
				count++
			}
		case []map[string]any:
			if len(list) > 0 {
				found = list
				count++
			}
		}
	}
	return found, count == 1
}

func allRecords(list []any) bool {
	for _, item := range list {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// normalizeRow turns integral JSON floats back into int64 so ids print and
// sort as integers.
func normalizeRow(m map[string]any) table.Row {
	row := make(table.Row, len(m))
	for k, v := range m {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			row[k] = int64(f)
			continue
		}
		row[k] = v
	}
	return row
}

type columnsFile struct {
	Columns []table.ColumnConfig `json:"columns" yaml:"columns" toml:"columns"`
}

// LoadColumns parses column definitions. The document is either a list of
// columns or an object with a "columns" list. TOML requires the object form.
func LoadColumns(data []byte, format string) ([]table.ColumnConfig, error) {
	var (
		cols []table.ColumnConfig
		err  error
	)
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		var f columnsFile
		err = toml.Unmarshal(data, &f)
		cols = f.Columns
	case "json":
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "[") {
			err = json.Unmarshal(data, &cols)
		} else {
			var f columnsFile
			err = json.Unmarshal(data, &f)
			cols = f.Columns
		}
	case "", "yaml", "yml":
		// YAML is a superset of JSON, so unknown extensions land here too.
		var node yaml.Node
		if err = yaml.Unmarshal(data, &node); err == nil && len(node.Content) > 0 {
			if node.Content[0].Kind == yaml.SequenceNode {
				err = node.Content[0].Decode(&cols)
			} else {
				var f columnsFile
				err = node.Content[0].Decode(&f)
				cols = f.Columns
			}
		}
	default:
		return nil, fmt.Errorf("unsupported column file format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid column definitions: %w", err)
	}
	if err := validateColumns(cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// LoadColumnsFile reads column definitions, choosing the format by extension.
func LoadColumnsFile(path string) ([]table.ColumnConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadColumns(data, filepath.Ext(path))
}

func validateColumns(cols []table.ColumnConfig) error {
	if len(cols) == 0 {
		return errors.New("no columns defined")
	}
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if c.Key == "" {
			return fmt.Errorf("column %d has no key", i)
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("duplicate column key %q", c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	return nil
}
