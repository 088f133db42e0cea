package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

// Store is an in-memory ledger mirror for local development and tests. It
// keeps mirrored entries in append order behind a synthetic row reference.
type Store struct {
	mu      sync.Mutex
	entries []core.LedgerEntry
}

func New() *Store {
	return &Store{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.LedgerEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

// Entries returns a copy of everything mirrored so far.
func (s *Store) Entries() []core.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.LedgerEntry(nil), s.entries...)
}
