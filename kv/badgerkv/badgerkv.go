// Package badgerkv implements kv.Store on top of BadgerDB, an embedded
// ordered LSM-tree key-value store.
//
// Each Store owns exactly one *badger.DB rooted at its own directory - a
// graph store opens four of these (node2id, id2node, adjacency,
// reversed_adjacency), each a separate Badger instance rather than four
// prefixes inside one instance, so the four sub-stores can be frozen, moved
// or deleted independently.
package badgerkv

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/webgraph-io/webgraph/kv"
)

// Options configures a Store.
type Options struct {
	// Dir is the directory Badger stores its files in. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs Badger entirely in RAM. Data is lost on Close.
	// GraphStore.OpenMemory does not use it; it backs its stores with
	// kv/memkv instead.
	InMemory bool

	// SyncWrites forces an fsync after every write. Off by default: slower
	// but safer when on.
	SyncWrites bool
}

// Store is a kv.Store backed by a single Badger instance.
type Store struct {
	db       *badger.DB
	readOnly bool

	closeOnce sync.Once
	closeErr  error
}

var (
	_ kv.Store      = (*Store)(nil)
	_ kv.KeyedStore = (*Store)(nil)
)

// Open opens (creating if necessary) a Badger-backed Store at opts.Dir.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).
		WithLogger(nil).
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("badgerkv: open %s: %w", opts.Dir, err)
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing Badger directory without permitting writes
// at the Badger level.
func OpenReadOnly(dir string) (*Store, error) {
	badgerOpts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithReadOnly(true)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("badgerkv: open read-only %s: %w", dir, err)
	}

	return &Store{db: db, readOnly: true}, nil
}

// encodeKey renders a block id as its big-endian uint64 bytes, so Badger's
// own lexicographic key ordering matches numeric block-id ordering - Iter
// depends on this.
func encodeKey(key uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], key)
	return buf[:]
}

func decodeKey(raw []byte) uint64 {
	return binary.BigEndian.Uint64(raw)
}

// Insert implements kv.Store.
func (s *Store) Insert(key uint64, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(key), value)
	})
	if err != nil {
		return fmt.Errorf("badgerkv: insert %d: %w", key, err)
	}
	return nil
}

// Get implements kv.Store.
func (s *Store) Get(key uint64) ([]byte, bool, error) {
	var value []byte
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("badgerkv: get %d: %w", key, err)
	}
	return value, found, nil
}

// Iter implements kv.Store, visiting keys in ascending order.
func (s *Store) Iter(fn func(key uint64, value []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(decodeKey(item.Key()), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badgerkv: iter: %w", err)
	}
	return nil
}

// Flush makes all prior writes durable: a Sync followed by a best-effort
// value-log GC pass. GC failures (including badger.ErrNoRewrite, meaning
// there was nothing to reclaim) are not errors - GC is an optimization, not
// part of the durability contract. A read-only Store has no writes to make
// durable, so Flush on it does nothing.
func (s *Store) Flush() error {
	if s.readOnly {
		return nil
	}
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("badgerkv: sync: %w", err)
	}
	_ = s.db.RunValueLogGC(0.5)
	return nil
}

// InsertKey implements kv.KeyedStore.
func (s *Store) InsertKey(key, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("badgerkv: insert key %q: %w", key, err)
	}
	return nil
}

// GetKey implements kv.KeyedStore.
func (s *Store) GetKey(key []byte) ([]byte, bool, error) {
	var value []byte
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("badgerkv: get key %q: %w", key, err)
	}
	return value, found, nil
}

// IterKeys implements kv.KeyedStore, visiting keys in Badger's byte-wise
// lexicographic order.
func (s *Store) IterKeys(fn func(key, value []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			key := append([]byte(nil), item.Key()...)
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badgerkv: iter keys: %w", err)
	}
	return nil
}

// Close releases the Badger instance. Safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
