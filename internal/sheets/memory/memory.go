// Package memory is an in-memory export target for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"dime/internal/core"
)

type row struct {
	transaction core.Transaction
	category    string
}

type Store struct {
	mu   sync.Mutex
	rows map[int64]row
}

func New() *Store {
	return &Store{rows: make(map[int64]row)}
}

// Append stores the transaction keyed by ID and returns a synthetic row
// reference. Re-appending the same ID overwrites, matching the sheet
// adapter's upsert behavior.
func (s *Store) Append(_ context.Context, t core.Transaction, categoryName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[t.ID] = row{transaction: t, category: categoryName}
	return fmt.Sprintf("mem:%d", t.ID), nil
}

// Delete removes the transaction. Unknown IDs are a no-op.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// Get returns the stored transaction and category, if present.
func (s *Store) Get(id int64) (core.Transaction, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	return r.transaction, r.category, ok
}

// Len returns the number of exported rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
