// Package memory is a map-backed pmig.Store. Dry runs and tests use it; it
// keeps nothing after the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vvka-141/pmig/pkg/pmig"
)

// Store is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	nextID map[pmig.Table]int64
	keys   map[pmig.Table]map[pmig.NaturalKey]int64
	rows   map[pmig.Table]map[int64]pmig.Entity

	finds   int
	inserts int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID: make(map[pmig.Table]int64),
		keys:   make(map[pmig.Table]map[pmig.NaturalKey]int64),
		rows:   make(map[pmig.Table]map[int64]pmig.Entity),
	}
}

func (s *Store) FindByNaturalKey(ctx context.Context, table pmig.Table, key pmig.NaturalKey) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++

	id, ok := s.keys[table][key]
	return id, ok, nil
}

// Insert assigns the next id of the table. It fails with
// pmig.ErrDuplicateKey when any natural key of the record is taken.
func (s *Store) Insert(ctx context.Context, table pmig.Table, entity pmig.Entity) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if entity.Record == nil || entity.Record.Table() != table {
		return 0, fmt.Errorf("insert into %s: record does not belong to the table", table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++

	keys := entity.Record.NaturalKeys()
	for _, k := range keys {
		if _, taken := s.keys[table][k]; taken {
			return 0, fmt.Errorf("insert into %s %s: %w", table, k, pmig.ErrDuplicateKey)
		}
	}

	if s.keys[table] == nil {
		s.keys[table] = make(map[pmig.NaturalKey]int64)
		s.rows[table] = make(map[int64]pmig.Entity)
	}
	s.nextID[table]++
	id := s.nextID[table]
	for _, k := range keys {
		s.keys[table][k] = id
	}
	s.rows[table][id] = entity
	return id, nil
}

func (s *Store) Close() error { return nil }

// Get returns the entity stored under id.
func (s *Store) Get(table pmig.Table, id int64) (pmig.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[table][id]
	return e, ok
}

// Count returns the number of rows in table.
func (s *Store) Count(table pmig.Table) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[table])
}

// Calls returns how many finds and inserts the store has served.
func (s *Store) Calls() (finds, inserts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds, s.inserts
}

var _ pmig.Store = (*Store)(nil)
