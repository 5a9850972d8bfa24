package arbitrage

import (
	"context"
	"sync"
)

// MockStorage is an in-memory storage implementation for testing detection runs.
// This mock lives in the arbitrage package to avoid import cycles.
type MockStorage struct {
	Reports []*Report
	Err     error // Returned by StoreRun when set
	closed  bool
	mu      sync.Mutex
}

// NewMockStorage creates a new mock storage for arbitrage tests.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		Reports: make([]*Report, 0),
	}
}

// StoreRun stores a report in memory.
func (m *MockStorage) StoreRun(ctx context.Context, report *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Reports = append(m.Reports, report)
	return nil
}

// Close marks the mock as closed.
func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockStorage) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetReports returns all stored reports.
func (m *MockStorage) GetReports() []*Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Return a copy to avoid race conditions
	result := make([]*Report, len(m.Reports))
	copy(result, m.Reports)
	return result
}

// Clear clears all stored reports.
func (m *MockStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = make([]*Report, 0)
}
