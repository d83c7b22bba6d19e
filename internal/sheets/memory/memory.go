package memory

import (
	"context"
	"fmt"
	"sync"

	ports "floosafandy/internal/sheets"
)

// Store is an in-process journal used in tests and when no spreadsheet is
// configured.
type Store struct {
	mu      sync.Mutex
	entries []ports.Entry
}

var _ ports.JournalWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e ports.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

// Entries returns a copy of the journal.
func (s *Store) Entries() []ports.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Entry(nil), s.entries...)
}
