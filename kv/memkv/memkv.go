// Package memkv implements kv.Store entirely in memory, guarded by a single
// sync.RWMutex.
//
// It backs temporary and in-test graphs (webgraph.Builder.OpenMemory) and
// the partial webgraphs a map-reduce worker builds before shipping them back
// to the manager encoded - there is no point paying for Badger's LSM tree
// for a store that lives only as long as one RPC.
package memkv

import (
	"sort"
	"sync"

	"github.com/webgraph-io/webgraph/kv"
)

// Store is an in-memory kv.Store. The zero value is not usable; use New.
type Store struct {
	mu     sync.RWMutex
	values map[uint64][]byte
	byKey  map[string][]byte
	closed bool
}

var (
	_ kv.Store      = (*Store)(nil)
	_ kv.KeyedStore = (*Store)(nil)
)

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{
		values: make(map[uint64][]byte),
		byKey:  make(map[string][]byte),
	}
}

// Insert implements kv.Store. The value is copied so the caller's buffer can
// be reused.
func (s *Store) Insert(key uint64, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

// Get implements kv.Store.
func (s *Store) Get(key uint64) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, kv.ErrClosed
	}
	value, ok := s.values[key]
	return value, ok, nil
}

// Iter implements kv.Store. Go maps have no iteration order, so Iter sorts
// keys first - the ordering guarantee is part of the kv.Store contract, not
// an implementation detail callers can ignore.
func (s *Store) Iter(fn func(key uint64, value []byte) error) error {
	s.mu.RLock()
	keys := make([]uint64, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	values := make(map[uint64][]byte, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		return kv.ErrClosed
	}

	for _, k := range keys {
		if err := fn(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// InsertKey implements kv.KeyedStore.
func (s *Store) InsertKey(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.byKey[string(key)] = cp
	return nil
}

// GetKey implements kv.KeyedStore.
func (s *Store) GetKey(key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, kv.ErrClosed
	}
	value, ok := s.byKey[string(key)]
	return value, ok, nil
}

// IterKeys implements kv.KeyedStore, visiting keys in sorted byte order.
func (s *Store) IterKeys(fn func(key, value []byte) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.byKey))
	for k := range s.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make(map[string][]byte, len(s.byKey))
	for k, v := range s.byKey {
		values[k] = v
	}
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		return kv.ErrClosed
	}

	for _, k := range keys {
		if err := fn([]byte(k), values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op: every Insert is already visible to every Get.
func (s *Store) Flush() error {
	return nil
}

// Close discards the store's contents. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.values = nil
	s.byKey = nil
	return nil
}
