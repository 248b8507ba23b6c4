// Package graphstore composes the id-assignment bimap with a pair of
// outgoing/ingoing adjacency stores into a single directed, labeled graph
// keyed by arbitrary string node names.
package graphstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/webgraph-io/webgraph/adjacency"
	"github.com/webgraph-io/webgraph/kv"
	"github.com/webgraph-io/webgraph/kv/badgerkv"
	"github.com/webgraph-io/webgraph/kv/memkv"
)

const (
	node2idDir           = "node2id"
	id2nodeDir           = "id2node"
	adjacencyDir         = "adjacency"
	reversedAdjacencyDir = "reversed_adjacency"
)

// GraphStore is a directed, labeled graph over string-named nodes, backed by
// a node<->id bimap and two block-adjacency stores (outgoing and ingoing).
type GraphStore struct {
	mu sync.Mutex

	node2id  kv.KeyedStore
	id2node  kv.Store
	outgoing *adjacency.Adjacency
	ingoing  *adjacency.Adjacency

	nextID   uint64
	readOnly bool
}

func encodeID(id NodeID) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}

func decodeID(raw []byte) NodeID {
	return NodeID(binary.BigEndian.Uint64(raw))
}

// newGraphStore wires the four handles together and recovers nextID by
// counting the entries already present in id2node - ids are assigned
// contiguously with no gaps, so that count is exactly the next id to hand
// out.
func newGraphStore(node2id kv.KeyedStore, id2node kv.Store, outgoing, ingoing *adjacency.Adjacency, readOnly bool) (*GraphStore, error) {
	var count uint64
	err := id2node.Iter(func(uint64, []byte) error {
		count++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graphstore: recovering next id: %w", err)
	}

	return &GraphStore{
		node2id:  node2id,
		id2node:  id2node,
		outgoing: outgoing,
		ingoing:  ingoing,
		nextID:   count,
		readOnly: readOnly,
	}, nil
}

// Open opens (creating if necessary) a durable GraphStore rooted at path.
func Open(path string) (*GraphStore, error) {
	return open(path, false)
}

// OpenReadOnly opens an existing GraphStore at path without permitting
// Insert or Append.
func OpenReadOnly(path string) (*GraphStore, error) {
	return open(path, true)
}

func open(path string, readOnly bool) (*GraphStore, error) {
	node2idStore, err := openBadger(path, node2idDir, readOnly)
	if err != nil {
		return nil, err
	}
	id2nodeStore, err := openBadger(path, id2nodeDir, readOnly)
	if err != nil {
		return nil, err
	}
	adjacencyStore, err := openBadger(path, adjacencyDir, readOnly)
	if err != nil {
		return nil, err
	}
	reversedStore, err := openBadger(path, reversedAdjacencyDir, readOnly)
	if err != nil {
		return nil, err
	}

	outgoing := adjacency.New(adjacencyStore, adjacency.DefaultBlockSize)
	ingoing := adjacency.New(reversedStore, adjacency.DefaultBlockSize)

	return newGraphStore(node2idStore, id2nodeStore, outgoing, ingoing, readOnly)
}

func openBadger(path, sub string, readOnly bool) (*badgerkv.Store, error) {
	dir := path + "/" + sub
	if readOnly {
		return badgerkv.OpenReadOnly(dir)
	}
	return badgerkv.Open(badgerkv.Options{Dir: dir})
}

// OpenMemory returns a GraphStore backed entirely by in-memory stores, for
// temporary graphs, tests, and map-reduce workers.
func OpenMemory() *GraphStore {
	gs, err := newGraphStore(
		memkv.New(),
		memkv.New(),
		adjacency.New(memkv.New(), adjacency.DefaultBlockSize),
		adjacency.New(memkv.New(), adjacency.DefaultBlockSize),
		false,
	)
	if err != nil {
		// newGraphStore only fails if id2node.Iter fails, which a fresh
		// memkv.Store never does.
		panic(fmt.Sprintf("graphstore: OpenMemory: %v", err))
	}
	return gs
}

// idFor returns the id for n, assigning and persisting a new one (both
// directions of the bimap) if n has not been seen before.
func (g *GraphStore) idFor(n Node) (NodeID, error) {
	key := []byte(n.Name)
	if raw, ok, err := g.node2id.GetKey(key); err != nil {
		return 0, err
	} else if ok {
		return decodeID(raw), nil
	}

	id := NodeID(g.nextID)
	g.nextID++

	if err := g.node2id.InsertKey(key, encodeID(id)); err != nil {
		return 0, err
	}
	if err := g.id2node.Insert(uint64(id), []byte(n.Name)); err != nil {
		return 0, err
	}
	return id, nil
}

// Insert adds a labeled directed edge from -> to, assigning ids to either
// endpoint if this is the first time it has been seen.
func (g *GraphStore) Insert(from, to Node, label string) error {
	if g.readOnly {
		return ErrReadOnly
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fromID, err := g.idFor(from)
	if err != nil {
		return fmt.Errorf("graphstore: insert: resolving %q: %w", from.Name, err)
	}
	toID, err := g.idFor(to)
	if err != nil {
		return fmt.Errorf("graphstore: insert: resolving %q: %w", to.Name, err)
	}

	if err := g.outgoing.Insert(fromID, adjacency.StoredEdge{Peer: toID, Label: label}); err != nil {
		return fmt.Errorf("graphstore: insert: outgoing: %w", err)
	}
	if err := g.ingoing.Insert(toID, adjacency.StoredEdge{Peer: fromID, Label: label}); err != nil {
		return fmt.Errorf("graphstore: insert: ingoing: %w", err)
	}
	return nil
}

// OutgoingPeers returns the raw (peer id, label) pairs leaving id, without
// resolving peer ids to Nodes - used by shortest-paths and centrality
// algorithms that only need ids, not names.
func (g *GraphStore) OutgoingPeers(id NodeID) ([]adjacency.StoredEdge, error) {
	edges, err := g.outgoing.Edges(id)
	if err != nil {
		return nil, fmt.Errorf("graphstore: outgoing peers: %w", err)
	}
	return edges, nil
}

// IngoingPeers is OutgoingPeers' counterpart over the ingoing adjacency.
func (g *GraphStore) IngoingPeers(id NodeID) ([]adjacency.StoredEdge, error) {
	edges, err := g.ingoing.Edges(id)
	if err != nil {
		return nil, fmt.Errorf("graphstore: ingoing peers: %w", err)
	}
	return edges, nil
}

// OutgoingEdges returns every edge leaving id, resolved to full Nodes.
func (g *GraphStore) OutgoingEdges(id NodeID) ([]Edge, error) {
	return g.resolveEdges(g.outgoing, id, false)
}

// IngoingEdges returns every edge arriving at id, resolved to full Nodes.
func (g *GraphStore) IngoingEdges(id NodeID) ([]Edge, error) {
	return g.resolveEdges(g.ingoing, id, true)
}

func (g *GraphStore) resolveEdges(store *adjacency.Adjacency, id NodeID, reversed bool) ([]Edge, error) {
	stored, err := store.Edges(id)
	if err != nil {
		return nil, fmt.Errorf("graphstore: edges: %w", err)
	}
	if len(stored) == 0 {
		return nil, nil
	}

	self, ok, err := g.ID2Node(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	edges := make([]Edge, 0, len(stored))
	for _, e := range stored {
		peer, ok, err := g.ID2Node(e.Peer)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if reversed {
			edges = append(edges, Edge{From: peer, To: self, Label: e.Label})
		} else {
			edges = append(edges, Edge{From: self, To: peer, Label: e.Label})
		}
	}
	return edges, nil
}

// Node2ID looks up the id assigned to n, if any.
func (g *GraphStore) Node2ID(n Node) (NodeID, bool, error) {
	raw, ok, err := g.node2id.GetKey([]byte(n.Name))
	if err != nil {
		return 0, false, fmt.Errorf("graphstore: node2id: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	return decodeID(raw), true, nil
}

// ID2Node looks up the node name assigned to id, if any.
func (g *GraphStore) ID2Node(id NodeID) (Node, bool, error) {
	raw, ok, err := g.id2node.Get(uint64(id))
	if err != nil {
		return Node{}, false, fmt.Errorf("graphstore: id2node: %w", err)
	}
	if !ok {
		return Node{}, false, nil
	}
	return Node{Name: string(raw)}, true, nil
}

// Nodes returns every assigned NodeID in assignment order.
func (g *GraphStore) Nodes() ([]NodeID, error) {
	var ids []NodeID
	err := g.id2node.Iter(func(key uint64, _ []byte) error {
		ids = append(ids, NodeID(key))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graphstore: nodes: %w", err)
	}
	return ids, nil
}

// Append merges other into g, translating other's node ids through g's own
// id-space by name (ids are not portable across stores) and re-inserting
// every edge other holds.
func (g *GraphStore) Append(other *GraphStore) error {
	if g.readOnly {
		return ErrReadOnly
	}

	ids, err := other.Nodes()
	if err != nil {
		return fmt.Errorf("graphstore: append: listing nodes: %w", err)
	}

	for _, id := range ids {
		edges, err := other.OutgoingEdges(id)
		if err != nil {
			return fmt.Errorf("graphstore: append: outgoing edges: %w", err)
		}
		for _, e := range edges {
			if err := g.Insert(e.From, e.To, e.Label); err != nil {
				return fmt.Errorf("graphstore: append: insert: %w", err)
			}
		}
	}
	return nil
}

// Flush makes all prior inserts durable.
func (g *GraphStore) Flush() error {
	if err := g.outgoing.Flush(); err != nil {
		return fmt.Errorf("graphstore: flush outgoing: %w", err)
	}
	if err := g.ingoing.Flush(); err != nil {
		return fmt.Errorf("graphstore: flush ingoing: %w", err)
	}
	if err := g.node2id.Flush(); err != nil {
		return fmt.Errorf("graphstore: flush node2id: %w", err)
	}
	if err := g.id2node.Flush(); err != nil {
		return fmt.Errorf("graphstore: flush id2node: %w", err)
	}
	return nil
}

// Close releases all four underlying KV handles.
func (g *GraphStore) Close() error {
	var errs []error
	if err := g.node2id.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := g.id2node.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := g.outgoing.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := g.ingoing.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("graphstore: close: %v", errs)
	}
	return nil
}
