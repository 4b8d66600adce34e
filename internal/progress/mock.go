package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockClient is an in-memory Client for tests.
type MockClient struct {
	mu      sync.Mutex
	records map[string]Record
	order   []string

	// CreateErr, when set, is returned by CreateProgress.
	CreateErr error

	// Created counts CreateProgress calls, including failed ones.
	Created int

	// Outputs holds CreateOutput payloads in call order.
	Outputs []OutputRecord

	// OutputErr, when set, is returned by CreateOutput.
	OutputErr error
}

var (
	_ Client        = (*MockClient)(nil)
	_ OutputCreator = (*MockClient)(nil)
)

func NewMockClient() *MockClient {
	return &MockClient{records: map[string]Record{}}
}

func (m *MockClient) CreateProgress(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created++
	if m.CreateErr != nil {
		return Record{}, m.CreateErr
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return rec, nil
}

func (m *MockClient) CreateOutput(_ context.Context, rec OutputRecord) (OutputRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OutputErr != nil {
		return OutputRecord{}, m.OutputErr
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	m.Outputs = append(m.Outputs, rec)
	return rec, nil
}

func (m *MockClient) GetProgress(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, fmt.Errorf("progress %s not found", id)
	}
	return rec, nil
}

func (m *MockClient) ListProgress(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.records[m.order[i]])
	}
	return out, nil
}

func (m *MockClient) UpdateProgress(_ context.Context, id string, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return Record{}, fmt.Errorf("progress %s not found", id)
	}
	rec.ID = id
	m.records[id] = rec
	return rec, nil
}

func (m *MockClient) DeleteProgress(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("progress %s not found", id)
	}
	delete(m.records, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
