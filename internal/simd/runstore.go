package simd

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/metrics"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/config"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/utils"
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrRunExists   = errors.New("run already exists")
)

// RunStatus is the lifecycle state of a scenario run
type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusBuilt   RunStatus = "built"
	RunStatusFailed  RunStatus = "failed"
)

// RunRecord is one submitted scenario and, once built, its result
type RunRecord struct {
	ID        string
	Status    RunStatus
	Error     string
	CreatedAt time.Time
	BuiltAt   time.Time
	Scenario  *config.Scenario
	Result    *Result
}

// snapshot copies the record so callers never share it with later writers.
// Scenario and Result are not modified once set.
func (r *RunRecord) snapshot() *RunRecord {
	c := *r
	return &c
}

// RunStore keeps scenario runs in memory. Records handed out are snapshots.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

// Create registers a pending run. An empty runID is replaced by a
// generated one.
func (s *RunStore) Create(runID string, scenario *config.Scenario) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	} else if err := utils.ValidateRunID(runID); err != nil {
		return nil, err
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	rec := &RunRecord{
		ID:        runID,
		Status:    RunStatusPending,
		CreatedAt: time.Now().UTC(),
		Scenario:  scenario,
	}
	s.runs[runID] = rec
	metrics.SetStoredRuns(len(s.runs))
	return rec.snapshot(), nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return rec.snapshot(), true
}

// List returns up to limit runs, oldest first
func (s *RunStore) List(limit int) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, rec.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SetResult marks a run built
func (s *RunStore) SetResult(runID string, result *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Status = RunStatusBuilt
	rec.Result = result
	rec.BuiltAt = time.Now().UTC()
	return nil
}

// SetFailed marks a run failed with the build error
func (s *RunStore) SetFailed(runID string, buildErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Status = RunStatusFailed
	rec.Error = buildErr.Error()
	return nil
}

// Delete removes a run
func (s *RunStore) Delete(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	delete(s.runs, runID)
	metrics.SetStoredRuns(len(s.runs))
	return nil
}

// Len returns the number of stored runs
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
