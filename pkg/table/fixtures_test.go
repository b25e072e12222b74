package table

import "errors"

var errBroken = errors.New("storage unavailable")

// memStorage is an in-test Storage that can be told to fail.
type memStorage struct {
	data      map[string]string
	failRead  bool
	failWrite bool
	writes    int
	removes   int
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string]string{}}
}

func (m *memStorage) Read(key string) (string, bool, error) {
	if m.failRead {
		return "", false, errBroken
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Write(key, value string) error {
	if m.failWrite {
		return errBroken
	}
	m.writes++
	m.data[key] = value
	return nil
}

func (m *memStorage) Remove(key string) error {
	m.removes++
	delete(m.data, key)
	return nil
}

func sampleColumns() []ColumnConfig {
	return []ColumnConfig{
		{Key: "id", Label: "ID", Sortable: true, Hideable: true, Draggable: true},
		{Key: "name", Label: "Name", Sortable: true, Hideable: true, Draggable: true},
		{Key: "secret", Label: "Secret", Hideable: true, DefaultVisible: Visible(false)},
	}
}

func sampleRows() []Row {
	return []Row{
		{"id": 3, "name": "Charlie", "secret": "c"},
		{"id": 1, "name": "alpha", "secret": "a"},
		{"id": 2, "name": "Bravo", "secret": nil},
	}
}

func keysOf(cols []ColumnConfig) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Key
	}
	return out
}
