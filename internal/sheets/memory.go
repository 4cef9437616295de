package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryValuesAPI is an in-memory ValuesAPI used by the test suites. Setting
// Err makes every call fail with it, for exercising the mirror's failure
// path.
type MemoryValuesAPI struct {
	mu   sync.Mutex
	rows [][]string

	Err error

	GetCalls    int
	AppendCalls int
	UpdateCalls int
	DeleteCalls int
}

// NewMemoryValuesAPI returns an empty in-memory sheet.
func NewMemoryValuesAPI() *MemoryValuesAPI {
	return &MemoryValuesAPI{}
}

func (m *MemoryValuesAPI) Get(_ context.Context, readRange string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.Err != nil {
		return nil, m.Err
	}

	// The mirror only reads the header range or the whole tab.
	if strings.HasSuffix(readRange, "A1:H1") {
		if len(m.rows) == 0 {
			return nil, nil
		}
		return [][]string{append([]string{}, m.rows[0]...)}, nil
	}
	return m.copyRows(), nil
}

func (m *MemoryValuesAPI) Append(_ context.Context, _ string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls++
	if m.Err != nil {
		return m.Err
	}
	m.rows = append(m.rows, append([]string{}, row...))
	return nil
}

func (m *MemoryValuesAPI) Update(_ context.Context, writeRange string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.Err != nil {
		return m.Err
	}

	var start, end int
	bang := strings.Index(writeRange, "!")
	if _, err := fmt.Sscanf(writeRange[bang+1:], "A%d:H%d", &start, &end); err != nil {
		return fmt.Errorf("unexpected range %q: %w", writeRange, err)
	}
	for len(m.rows) < start {
		m.rows = append(m.rows, nil)
	}
	m.rows[start-1] = append([]string{}, row...)
	return nil
}

func (m *MemoryValuesAPI) DeleteRows(_ context.Context, startIndex, endIndex int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.Err != nil {
		return m.Err
	}
	if startIndex < 0 || endIndex > int64(len(m.rows)) || startIndex >= endIndex {
		return fmt.Errorf("row range [%d,%d) out of bounds", startIndex, endIndex)
	}
	m.rows = append(m.rows[:startIndex], m.rows[endIndex:]...)
	return nil
}

// Rows returns a copy of the sheet contents, header included.
func (m *MemoryValuesAPI) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyRows()
}

func (m *MemoryValuesAPI) copyRows() [][]string {
	rows := make([][]string, len(m.rows))
	for i, row := range m.rows {
		rows[i] = append([]string{}, row...)
	}
	return rows
}
