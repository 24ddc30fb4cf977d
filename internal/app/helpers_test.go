package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/redress/internal/ports/secondary"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeStore is an in-memory RecordStore.
type fakeStore struct {
	mu        sync.Mutex
	items     map[string]*secondary.Item
	profiles  map[string]*secondary.SubjectProfile
	attempted map[string][]string

	itemErr    error
	profileErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:     make(map[string]*secondary.Item),
		profiles:  make(map[string]*secondary.SubjectProfile),
		attempted: make(map[string][]string),
	}
}

func (s *fakeStore) GetItem(_ context.Context, id string) (*secondary.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.itemErr != nil {
		return nil, s.itemErr
	}
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s not found", id)
	}
	return item, nil
}

func (s *fakeStore) GetSubjectProfile(_ context.Context, id string) (*secondary.SubjectProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	profile, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("subject %s not found", id)
	}
	return profile, nil
}

func (s *fakeStore) AttemptedStrategies(_ context.Context, itemID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.attempted[itemID]...), nil
}

func (s *fakeStore) RecordAttempt(_ context.Context, _, itemID, strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.attempted[itemID] {
		if id == strategyID {
			return nil
		}
	}
	s.attempted[itemID] = append(s.attempted[itemID], strategyID)
	return nil
}

// memExecRepo is an in-memory ExecutionRepository with compare-and-swap
// semantics matching the sqlite adapter.
type memExecRepo struct {
	mu      sync.Mutex
	records map[string]*secondary.ExecutionRecord
}

func newMemExecRepo() *memExecRepo {
	return &memExecRepo{records: make(map[string]*secondary.ExecutionRecord)}
}

func cloneExecution(r *secondary.ExecutionRecord) *secondary.ExecutionRecord {
	c := *r
	c.Steps = append([]secondary.StepRecord(nil), r.Steps...)
	return &c
}

func (m *memExecRepo) Create(_ context.Context, execution *secondary.ExecutionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[execution.ID]; exists {
		return fmt.Errorf("execution %s already exists", execution.ID)
	}
	execution.Version = 1
	m.records[execution.ID] = cloneExecution(execution)
	return nil
}

func (m *memExecRepo) GetByID(_ context.Context, id string) (*secondary.ExecutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("execution %s not found", id)
	}
	return cloneExecution(r), nil
}

func (m *memExecRepo) List(_ context.Context, filters secondary.ExecutionFilters) ([]*secondary.ExecutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.ExecutionRecord
	for _, r := range m.records {
		if filters.SubjectID != "" && r.SubjectID != filters.SubjectID {
			continue
		}
		if filters.ItemID != "" && r.ItemID != filters.ItemID {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		out = append(out, cloneExecution(r))
	}
	return out, nil
}

func (m *memExecRepo) Save(_ context.Context, execution *secondary.ExecutionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[execution.ID]
	if !ok {
		return fmt.Errorf("execution %s not found", execution.ID)
	}
	if stored.Version != execution.Version {
		return secondary.ErrStateConflict
	}
	execution.Version++
	m.records[execution.ID] = cloneExecution(execution)
	return nil
}

// memTriggerRepo is an in-memory TriggerRepository enforcing the
// single-enabled-trigger and exactly-once-fire invariants.
type memTriggerRepo struct {
	mu       sync.Mutex
	triggers map[string]*secondary.TriggerRecord
}

func newMemTriggerRepo() *memTriggerRepo {
	return &memTriggerRepo{triggers: make(map[string]*secondary.TriggerRecord)}
}

func (m *memTriggerRepo) Schedule(_ context.Context, trigger *secondary.TriggerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.triggers {
		if t.ExecutionID == trigger.ExecutionID && t.Enabled {
			t.Enabled = false
		}
	}
	c := *trigger
	c.Enabled = true
	m.triggers[trigger.ID] = &c
	return nil
}

func (m *memTriggerRepo) ListDue(_ context.Context, now time.Time) ([]*secondary.TriggerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.TriggerRecord
	for _, t := range m.triggers {
		if t.Enabled && !t.DueAt.After(now) {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memTriggerRepo) Fire(_ context.Context, id string, dueAt, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.triggers[id]
	if !ok || !t.Enabled || !t.DueAt.Equal(dueAt) {
		return false, nil
	}
	t.Enabled = false
	fired := now
	t.FiredAt = &fired
	return true, nil
}

func (m *memTriggerRepo) DisableForExecution(_ context.Context, executionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.triggers {
		if t.ExecutionID == executionID {
			t.Enabled = false
		}
	}
	return nil
}

func (m *memTriggerRepo) ListByExecution(_ context.Context, executionID string) ([]*secondary.TriggerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.TriggerRecord
	for _, t := range m.triggers {
		if t.ExecutionID == executionID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memTriggerRepo) enabledFor(executionID string) *secondary.TriggerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.triggers {
		if t.ExecutionID == executionID && t.Enabled {
			c := *t
			return &c
		}
	}
	return nil
}

// fakeSubmitter records submitted actions and can be told to fail.
type fakeSubmitter struct {
	mu      sync.Mutex
	actions []secondary.Action
	err     error
	clock   secondary.Clock
	seq     int
}

func newFakeSubmitter(clock secondary.Clock) *fakeSubmitter {
	return &fakeSubmitter{clock: clock}
}

func (f *fakeSubmitter) Submit(_ context.Context, action secondary.Action) (*secondary.SubmissionReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.actions = append(f.actions, action)
	f.seq++
	return &secondary.SubmissionReceipt{
		Ref:         fmt.Sprintf("receipt-%d", f.seq),
		SubmittedAt: f.clock.Now(),
	}, nil
}

func (f *fakeSubmitter) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSubmitter) submitted() []secondary.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]secondary.Action(nil), f.actions...)
}

// fakeNotifier collects notifications.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(_ context.Context, subjectID, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, subjectID+": "+message)
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

var (
	_ secondary.RecordStore         = (*fakeStore)(nil)
	_ secondary.ExecutionRepository = (*memExecRepo)(nil)
	_ secondary.TriggerRepository   = (*memTriggerRepo)(nil)
	_ secondary.ActionSubmitter     = (*fakeSubmitter)(nil)
	_ secondary.NotificationSink    = (*fakeNotifier)(nil)
	_ secondary.Clock               = (*fakeClock)(nil)
)
