package app

import "sync"

// ExecutionLocks serializes all transitions for a single execution.
// Workers for different executions run fully in parallel; two goroutines
// touching the same execution take turns. The orchestrator and scheduler
// share one instance.
type ExecutionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewExecutionLocks creates an empty lock table.
func NewExecutionLocks() *ExecutionLocks {
	return &ExecutionLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex for the given execution id and returns the
// release function.
func (l *ExecutionLocks) Acquire(executionID string) func() {
	l.mu.Lock()
	m, ok := l.locks[executionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[executionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
