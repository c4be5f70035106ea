package rates

import (
	"sync"
	"sync/atomic"

	"github.com/iwvelando/finance-schedule/pkg/currency"
)

// Store holds the current rate table. Fetches are numbered when they start,
// and a result is applied only if no later-started fetch has been applied
// already, so a slow stale response never overwrites a fresher table.
type Store struct {
	next atomic.Uint64

	mu      sync.RWMutex
	table   currency.Table
	applied uint64
}

// NewStore creates an empty store. Until the first Apply, Table returns the
// empty table and conversions fall back to identity.
func NewStore() *Store {
	return &Store{}
}

// Begin reserves the sequence number for a fetch about to start.
func (s *Store) Begin() uint64 {
	return s.next.Add(1)
}

// Apply stores table if seq is newer than the applied table's sequence.
// It reports whether the table was stored.
func (s *Store) Apply(seq uint64, table currency.Table) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		return false
	}
	s.table = table.Clone()
	s.applied = seq
	return true
}

// Table returns a copy of the current table.
func (s *Store) Table() currency.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone()
}

// Sequence returns the sequence number of the applied table, 0 before the
// first Apply.
func (s *Store) Sequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}
