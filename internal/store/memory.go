package store

import (
	"context"
	"sync"
)

// Memory is a process-local Store for tests and ephemeral runs.
type Memory struct {
	mu     sync.RWMutex
	checks []StatusCheck
	runs   []AgentRun
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateStatusCheck(_ context.Context, clientName string) (*StatusCheck, error) {
	sc := newStatusCheck(clientName)
	m.mu.Lock()
	m.checks = append(m.checks, *sc)
	m.mu.Unlock()
	return sc, nil
}

func (m *Memory) ListStatusChecks(_ context.Context, limit int) ([]StatusCheck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := min(listLimit(limit), len(m.checks))
	return append([]StatusCheck{}, m.checks[:n]...), nil
}

func (m *Memory) RecordRun(_ context.Context, run AgentRun) (*AgentRun, error) {
	r, err := prepareRun(run)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.runs = append(m.runs, *r)
	m.mu.Unlock()
	return r, nil
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]AgentRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := min(listLimit(limit), len(m.runs))
	out := make([]AgentRun, 0, n)
	for i := len(m.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
