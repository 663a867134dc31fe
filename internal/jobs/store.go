// SPDX-License-Identifier: MIT

package jobs

import "sync"

// Store is the process-wide job-id → status mapping. All operations are
// atomic with respect to each other; a single job's entry has exactly one
// writer (its supervisor goroutine), so no per-entry locking is needed.
// Entries live in memory only, for the process lifetime.
type Store struct {
	mu   sync.Mutex
	jobs map[string]Snapshot
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]Snapshot)}
}

// Create registers a new job in the starting state.
func (s *Store) Create(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = Snapshot{Status: StatusStarting}
}

// Update records stage progress. Progress is clamped to [0,100] and kept
// monotone within a stage: a lower value under an unchanged status is
// discarded. A status transition resets progress to the reported value.
func (s *Store) Update(id string, status Status, progress float64) {
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[id]
	if !ok {
		return
	}
	if cur.Status == status && progress < cur.Progress {
		return
	}
	cur.Status = status
	cur.Progress = progress
	s.jobs[id] = cur
}

// Complete marks the job terminal-successful with the final artifact path.
func (s *Store) Complete(id, filepath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return
	}
	s.jobs[id] = Snapshot{Status: StatusCompleted, Progress: 100, Filepath: filepath}
}

// Fail marks the job terminal-failed with a human-readable cause.
func (s *Store) Fail(id, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return
	}
	s.jobs[id] = Snapshot{Status: StatusError, Details: details}
}

// Get returns a value snapshot of the job, or ErrNotFound when the ID is
// unknown or the record was already reaped.
func (s *Store) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.jobs[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// Remove deletes the job record. Called by pollers after observing a
// terminal state.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}
