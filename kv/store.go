// Package kv defines the block key-value contract that backs adjacency
// storage: an ordered map from a 64-bit block id to an opaque value blob.
//
// Two implementations are provided: kv/badgerkv for durable on-disk graphs
// and kv/memkv for temporary, in-memory ones. Both satisfy Store.
package kv

import "errors"

// ErrClosed is returned by any operation on a Store that has already been
// closed.
var ErrClosed = errors.New("kv: store closed")

// Store is an ordered map from a block id to a value. Implementations need
// not offer transactions beyond the durability guarantee of Flush: a Flush
// that returns nil makes every prior Insert durable.
type Store interface {
	// Insert overwrites the value stored under key.
	Insert(key uint64, value []byte) error

	// Get returns the value stored under key. A missing key is reported by
	// ok == false with a nil error, never as an error.
	Get(key uint64) (value []byte, ok bool, err error)

	// Iter calls fn once per stored key in ascending key order. Iteration
	// stops and returns fn's error as soon as fn returns a non-nil error.
	Iter(fn func(key uint64, value []byte) error) error

	// Flush makes all prior Insert calls durable.
	Flush() error

	// Close releases the store's resources. Close is idempotent.
	Close() error
}

// KeyedStore is Store's counterpart for byte-string keys. graphstore uses it
// for the node-name-to-id side of its bimap, where the natural key is the
// node's name rather than a block id.
type KeyedStore interface {
	InsertKey(key, value []byte) error
	GetKey(key []byte) (value []byte, ok bool, err error)
	IterKeys(fn func(key, value []byte) error) error
	Flush() error
	Close() error
}
