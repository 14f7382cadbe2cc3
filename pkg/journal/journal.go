// Package journal provides append-only persistence for message
// processing results.
package journal

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound indicates no matching entry was found.
var ErrNotFound = errors.New("journal: not found")

// Entry records one processed message and its fingerprint.
type Entry struct {
	ID          string
	Message     string
	RoleID      string
	Activated   bool
	Fingerprint map[string]float64
	CreatedAt   time.Time
}

// Journal stores processing results in append order.
type Journal interface {
	Append(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// InMemory is a simple in-process journal backend.
type InMemory struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewInMemory creates an empty in-memory journal.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Append adds an entry to the journal.
func (j *InMemory) Append(_ context.Context, entry Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *InMemory) Recent(_ context.Context, limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if len(j.entries) == 0 {
		return nil, ErrNotFound
	}
	if limit <= 0 || limit > len(j.entries) {
		limit = len(j.entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.entries[i])
	}
	return out, nil
}
