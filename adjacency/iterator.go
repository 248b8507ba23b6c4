package adjacency

import "fmt"

// EdgeIterator walks every edge in an Adjacency, one block at a time.
//
// Unlike a boxed/polymorphic cursor, EdgeIterator is a plain struct with an
// explicit block index and two explicit cursor positions (the source within
// the current block, and the edge within that source's list). Next reloads
// the next block from the underlying store only once the current one is
// exhausted.
type EdgeIterator struct {
	adjacency *Adjacency

	blockIDs []uint64
	blockIdx int

	sources   []NodeID
	current   block
	sourceIdx int
	edgeIdx   int

	err error
}

// NewEdgeIterator returns an iterator over every edge currently stored in a.
// Its lifetime is tied to a: do not use it after a's underlying kv.Store is
// closed.
func (a *Adjacency) NewEdgeIterator() (*EdgeIterator, error) {
	ids, err := a.Blocks()
	if err != nil {
		return nil, err
	}
	return &EdgeIterator{adjacency: a, blockIDs: ids}, nil
}

// loadNextBlock advances to and loads the next non-empty block, or leaves
// it.current nil once blockIDs is exhausted.
func (it *EdgeIterator) loadNextBlock() bool {
	for it.blockIdx < len(it.blockIDs) {
		id := it.blockIDs[it.blockIdx]
		it.blockIdx++

		raw, ok, err := it.adjacency.store.Get(id)
		if err != nil {
			it.err = fmt.Errorf("adjacency: iterator: load block %d: %w", id, err)
			return false
		}
		if !ok {
			continue
		}
		b, err := decodeBlock(raw)
		if err != nil {
			it.err = err
			return false
		}

		sources := make([]NodeID, 0, len(b))
		for s := range b {
			sources = append(sources, s)
		}
		it.current = b
		it.sources = sources
		it.sourceIdx = 0
		it.edgeIdx = 0
		if len(sources) > 0 {
			return true
		}
	}
	return false
}

// Next returns the NodeID the edge is stored under (the source for an
// outgoing Adjacency, the destination for an ingoing one) plus the
// StoredEdge itself, or ok=false once iteration is exhausted. Check Err
// after Next returns false.
func (it *EdgeIterator) Next() (id NodeID, edge StoredEdge, ok bool) {
	for {
		if it.current != nil && it.sourceIdx < len(it.sources) {
			source := it.sources[it.sourceIdx]
			edges := it.current[source]

			if it.edgeIdx < len(edges) {
				e := edges[it.edgeIdx]
				it.edgeIdx++
				return source, e, true
			}

			it.sourceIdx++
			it.edgeIdx = 0
			continue
		}

		if !it.loadNextBlock() {
			return 0, StoredEdge{}, false
		}
	}
}

// Err returns the first error encountered while loading blocks, if any.
func (it *EdgeIterator) Err() error {
	return it.err
}
