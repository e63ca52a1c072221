package sheets

import (
	"context"
	"sync"
)

// Memory is an in-process RowStore used in tests and local runs without
// spreadsheet credentials. Row 1 is the header.
type Memory struct {
	mu   sync.Mutex
	rows [][]string
}

func NewMemory(header []string) *Memory {
	m := &Memory{}
	if header != nil {
		m.rows = append(m.rows, append([]string(nil), header...))
	}

	return m
}

func (m *Memory) Header(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rows) == 0 {
		return nil, nil
	}

	return append([]string(nil), m.rows[0]...), nil
}

func (m *Memory) FindRow(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, row := range m.rows {
		if len(row) > 0 && row[0] == key {
			return i + 1, nil
		}
	}

	return 0, nil
}

func (m *Memory) ReadRow(_ context.Context, row int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return nil, nil
	}

	return append([]string(nil), m.rows[row-1]...), nil
}

func (m *Memory) AppendRow(_ context.Context, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, append([]string(nil), values...))

	return nil
}

func (m *Memory) UpdateCell(_ context.Context, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for row > len(m.rows) {
		m.rows = append(m.rows, nil)
	}

	r := m.rows[row-1]
	for col > len(r) {
		r = append(r, "")
	}

	r[col-1] = value
	m.rows[row-1] = r

	return nil
}

// Rows returns a copy of the table contents, for assertions.
func (m *Memory) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]string, len(m.rows))
	for i, row := range m.rows {
		out[i] = append([]string(nil), row...)
	}

	return out
}
