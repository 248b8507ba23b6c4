// Package adjacency packs directed edges into fixed-size blocks of source
// NodeIDs and stores each block as a single value in a kv.Store.
//
// Every source id n is stored in block n/BlockSize alongside every other
// source whose id falls in the same block. Ingesting BlockSize consecutive
// source ids therefore touches one KV key instead of BlockSize of them,
// which collapses write amplification for the dense cores typical of a web
// graph crawl and makes block iteration cheap (one KV Get per block of
// edges instead of one per node).
package adjacency

import (
	"fmt"
	"sync"

	"github.com/webgraph-io/webgraph/kv"
)

// DefaultBlockSize is large enough to amortize KV overhead, small enough
// that a single block update stays a reasonable size.
const DefaultBlockSize = 1024

// Adjacency is a block-packed, KV-backed directed adjacency list. A graph
// store holds two of these per projection: one keyed by edge source
// (outgoing) and one keyed by edge destination (ingoing).
type Adjacency struct {
	store     kv.Store
	blockSize uint64

	mu             sync.Mutex
	bufferedID     uint64
	bufferedBlock  block
	bufferedLoaded bool
	bufferedDirty  bool
}

// New wraps store as a block adjacency with the given block size. blockSize
// must match across every Adjacency that will ever be Append-ed together.
func New(store kv.Store, blockSize uint64) *Adjacency {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return &Adjacency{store: store, blockSize: blockSize}
}

// BlockSize returns the block size this Adjacency was constructed with.
func (a *Adjacency) BlockSize() uint64 {
	return a.blockSize
}

func (a *Adjacency) blockID(source NodeID) uint64 {
	return uint64(source) / a.blockSize
}

// loadBuffered ensures the in-memory buffer holds block id, flushing out
// whatever was buffered before if it belongs to a different block.
func (a *Adjacency) loadBuffered(id uint64) error {
	if a.bufferedLoaded && a.bufferedID == id {
		return nil
	}
	if a.bufferedLoaded && a.bufferedDirty {
		if err := a.writeBuffered(); err != nil {
			return err
		}
	}

	raw, ok, err := a.store.Get(id)
	if err != nil {
		return fmt.Errorf("adjacency: load block %d: %w", id, err)
	}
	if !ok {
		a.bufferedBlock = make(block)
	} else {
		b, err := decodeBlock(raw)
		if err != nil {
			return err
		}
		a.bufferedBlock = b
	}
	a.bufferedID = id
	a.bufferedLoaded = true
	a.bufferedDirty = false
	return nil
}

func (a *Adjacency) writeBuffered() error {
	if !a.bufferedLoaded || !a.bufferedDirty {
		return nil
	}
	raw, err := encodeBlock(a.bufferedBlock)
	if err != nil {
		return err
	}
	if err := a.store.Insert(a.bufferedID, raw); err != nil {
		return fmt.Errorf("adjacency: write block %d: %w", a.bufferedID, err)
	}
	a.bufferedDirty = false
	return nil
}

// Insert appends edge to source's edge list.
func (a *Adjacency) Insert(source NodeID, edge StoredEdge) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.blockID(source)
	if err := a.loadBuffered(id); err != nil {
		return err
	}
	a.bufferedBlock[source] = append(a.bufferedBlock[source], edge)
	a.bufferedDirty = true
	return nil
}

// Edges returns source's edge list, or an empty (nil) slice if source has
// none. It is never an error for an unknown source.
func (a *Adjacency) Edges(source NodeID) ([]StoredEdge, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.blockID(source)
	if err := a.loadBuffered(id); err != nil {
		return nil, err
	}
	return a.bufferedBlock[source], nil
}

// Append unions other's edges into a, block by block. other must share a's
// block size.
func (a *Adjacency) Append(other *Adjacency) error {
	if other.blockSize != a.blockSize {
		return fmt.Errorf("adjacency: append: block size mismatch (%d != %d)", other.blockSize, a.blockSize)
	}

	blocks, err := other.Blocks()
	if err != nil {
		return err
	}

	for _, id := range blocks {
		raw, ok, err := other.store.Get(id)
		if err != nil {
			return fmt.Errorf("adjacency: append: read block %d: %w", id, err)
		}
		if !ok {
			continue
		}
		otherBlock, err := decodeBlock(raw)
		if err != nil {
			return err
		}
		for source, edges := range otherBlock {
			for _, e := range edges {
				if err := a.Insert(source, e); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Blocks returns the ids of every block currently present, in ascending
// order.
func (a *Adjacency) Blocks() ([]uint64, error) {
	a.mu.Lock()
	err := a.writeBuffered()
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var ids []uint64
	err = a.store.Iter(func(key uint64, _ []byte) error {
		ids = append(ids, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adjacency: blocks: %w", err)
	}
	return ids, nil
}

// Flush makes all buffered and prior writes durable.
func (a *Adjacency) Flush() error {
	a.mu.Lock()
	err := a.writeBuffered()
	a.mu.Unlock()
	if err != nil {
		return err
	}
	if err := a.store.Flush(); err != nil {
		return fmt.Errorf("adjacency: flush: %w", err)
	}
	return nil
}

// Close flushes any buffered block and closes the underlying kv.Store.
func (a *Adjacency) Close() error {
	if err := a.Flush(); err != nil {
		return err
	}
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("adjacency: close: %w", err)
	}
	return nil
}
