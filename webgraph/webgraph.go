// Package webgraph is the top-level facade over graphstore: it keeps the two
// projections (full URL graph and host graph) of a crawl in sync and exposes
// shortest-path and centrality queries over either one.
package webgraph

import (
	"fmt"

	"github.com/webgraph-io/webgraph/graphstore"
	"github.com/webgraph-io/webgraph/internal/urlutil"
)

// Webgraph holds up to two graphstore.GraphStore projections of the same
// crawl: a full graph keyed by URL, and a host graph keyed by registrable
// host. Either may be nil if that projection was not configured.
//
// Insert is not safe for concurrent use: callers that ingest from multiple
// goroutines must serialize calls themselves, mirroring the single-writer
// assumption of the underlying GraphStore.
type Webgraph struct {
	path     string
	full     *graphstore.GraphStore
	host     *graphstore.GraphStore
	readOnly bool
}

func openProjection(path string, readOnly bool) (*graphstore.GraphStore, error) {
	if readOnly {
		return graphstore.OpenReadOnly(path)
	}
	return graphstore.Open(path)
}

func openProjectionMemory() *graphstore.GraphStore {
	return graphstore.OpenMemory()
}

// Path returns the root directory this Webgraph was opened at. Empty for an
// in-memory graph.
func (w *Webgraph) Path() string {
	return w.path
}

// HasFullGraph reports whether the full projection is configured.
func (w *Webgraph) HasFullGraph() bool { return w.full != nil }

// HasHostGraph reports whether the host projection is configured.
func (w *Webgraph) HasHostGraph() bool { return w.host != nil }

// Insert adds an edge to every configured projection: the full graph
// verbatim, the host graph using each endpoint's host projection. Callers
// pass the raw names; Insert computes the host projection itself via
// urlutil.HostWithoutSpecificSubdomains.
func (w *Webgraph) Insert(from, to Node, label string) error {
	if w.readOnly {
		return graphstore.ErrReadOnly
	}
	if w.full != nil {
		if err := w.full.Insert(from, to, label); err != nil {
			return fmt.Errorf("webgraph: insert full: %w", err)
		}
	}
	if w.host != nil {
		fromHost := Node{Name: urlutil.HostWithoutSpecificSubdomains(from.Name)}
		toHost := Node{Name: urlutil.HostWithoutSpecificSubdomains(to.Name)}
		if err := w.host.Insert(fromHost, toHost, label); err != nil {
			return fmt.Errorf("webgraph: insert host: %w", err)
		}
	}
	return nil
}

// Merge folds other into w. For a projection present on both sides,
// Append is used (every edge of other is re-inserted; duplicate edges are
// kept, not collapsed). For a projection present only on
// other, ownership of other's store is moved into w: other's handle for
// that projection is nilled out, so other.Close becomes a no-op for it.
func (w *Webgraph) Merge(other *Webgraph) error {
	if w.readOnly {
		return graphstore.ErrReadOnly
	}

	switch {
	case w.full != nil && other.full != nil:
		if err := w.full.Append(other.full); err != nil {
			return fmt.Errorf("webgraph: merge full: %w", err)
		}
	case w.full == nil && other.full != nil:
		w.full = other.full
		other.full = nil
	}

	switch {
	case w.host != nil && other.host != nil:
		if err := w.host.Append(other.host); err != nil {
			return fmt.Errorf("webgraph: merge host: %w", err)
		}
	case w.host == nil && other.host != nil:
		w.host = other.host
		other.host = nil
	}

	return w.Flush()
}

// IngoingEdges returns every edge arriving at node in the full graph,
// resolved to Nodes. Empty, not an error, if the full graph isn't
// configured or node is unknown.
func (w *Webgraph) IngoingEdges(node Node) ([]FullEdge, error) {
	if w.full == nil {
		return nil, nil
	}
	id, ok, err := w.full.Node2ID(node)
	if err != nil {
		return nil, fmt.Errorf("webgraph: ingoing edges: %w", err)
	}
	if !ok {
		return nil, nil
	}
	edges, err := w.full.IngoingEdges(id)
	if err != nil {
		return nil, fmt.Errorf("webgraph: ingoing edges: %w", err)
	}
	return edges, nil
}

// OutgoingEdges returns every edge leaving node in the full graph, resolved
// to Nodes. Empty, not an error, if the full graph isn't configured or node
// is unknown.
func (w *Webgraph) OutgoingEdges(node Node) ([]FullEdge, error) {
	if w.full == nil {
		return nil, nil
	}
	id, ok, err := w.full.Node2ID(node)
	if err != nil {
		return nil, fmt.Errorf("webgraph: outgoing edges: %w", err)
	}
	if !ok {
		return nil, nil
	}
	edges, err := w.full.OutgoingEdges(id)
	if err != nil {
		return nil, fmt.Errorf("webgraph: outgoing edges: %w", err)
	}
	return edges, nil
}

// Nodes returns every node known to the full graph, in no particular
// order. Empty if the full graph isn't configured.
func (w *Webgraph) Nodes() ([]Node, error) {
	if w.full == nil {
		return nil, nil
	}
	ids, err := w.full.Nodes()
	if err != nil {
		return nil, fmt.Errorf("webgraph: nodes: %w", err)
	}
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		node, ok, err := w.full.ID2Node(id)
		if err != nil {
			return nil, fmt.Errorf("webgraph: nodes: %w", err)
		}
		if !ok {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Distances runs single-source shortest paths over the full graph.
func (w *Webgraph) Distances(source Node) (map[Node]int, error) {
	return distances(w.full, source, false)
}

// ReversedDistances runs single-source shortest paths over the full graph,
// traversing edges backwards.
func (w *Webgraph) ReversedDistances(source Node) (map[Node]int, error) {
	return distances(w.full, source, true)
}

// HostDistances is Distances over the host graph.
func (w *Webgraph) HostDistances(source Node) (map[Node]int, error) {
	return distances(w.host, source, false)
}

// HostReversedDistances is ReversedDistances over the host graph.
func (w *Webgraph) HostReversedDistances(source Node) (map[Node]int, error) {
	return distances(w.host, source, true)
}

// HarmonicCentrality computes harmonic centrality over the full graph.
func (w *Webgraph) HarmonicCentrality() (map[Node]float64, error) {
	return harmonicCentrality(w.full)
}

// HostHarmonicCentrality computes harmonic centrality over the host graph.
func (w *Webgraph) HostHarmonicCentrality() (map[Node]float64, error) {
	return harmonicCentrality(w.host)
}

// Flush makes every configured projection's prior inserts durable.
func (w *Webgraph) Flush() error {
	if w.full != nil {
		if err := w.full.Flush(); err != nil {
			return fmt.Errorf("webgraph: flush full: %w", err)
		}
	}
	if w.host != nil {
		if err := w.host.Flush(); err != nil {
			return fmt.Errorf("webgraph: flush host: %w", err)
		}
	}
	return nil
}

// Close releases every configured projection's resources.
func (w *Webgraph) Close() error {
	if w.full != nil {
		if err := w.full.Close(); err != nil {
			return fmt.Errorf("webgraph: close full: %w", err)
		}
	}
	if w.host != nil {
		if err := w.host.Close(); err != nil {
			return fmt.Errorf("webgraph: close host: %w", err)
		}
	}
	return nil
}
