package webgraph

import (
	"fmt"
	"math"
	"strconv"

	lvgraph "github.com/katalvlaran/lvlath/graph"

	"github.com/webgraph-io/webgraph/adjacency"
	"github.com/webgraph-io/webgraph/graphstore"
)

// vertexID renders a NodeID as the string key lvlath vertices are keyed by.
func vertexID(id graphstore.NodeID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseVertexID(s string) (graphstore.NodeID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("webgraph: bad vertex id %q: %w", s, err)
	}
	return graphstore.NodeID(n), nil
}

// traversalGraph materializes gs's block adjacency into an in-memory
// directed lvlath graph with unit edge weights, so shortest-path queries
// can be delegated to lvlath's Dijkstra. reversed builds the transposed
// graph: an edge v -> u for every stored u -> v, so a forward run over the
// result visits u at the distance of the original path u -> v.
//
// The adjacency is loaded once per build. Callers needing many
// single-source runs over the same graph (harmonic centrality) build once
// and share it: Dijkstra only reads the graph, so concurrent queries
// against one build are safe.
func traversalGraph(gs *graphstore.GraphStore, reversed bool) (*lvgraph.Graph, error) {
	g := lvgraph.NewGraph(true, true)

	ids, err := gs.Nodes()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		g.AddVertex(&lvgraph.Vertex{ID: vertexID(id)})
	}
	for _, id := range ids {
		var edges []adjacency.StoredEdge
		if reversed {
			edges, err = gs.IngoingPeers(id)
		} else {
			edges, err = gs.OutgoingPeers(id)
		}
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			g.AddEdge(vertexID(id), vertexID(e.Peer), 1)
		}
	}
	return g, nil
}

// shortestPathsFrom runs single-source Dijkstra over g from src, returning
// the distance (in edge count, every weight being 1) to each reachable
// NodeID, including src itself at distance 0. Unreachable vertices are
// omitted.
func shortestPathsFrom(g *lvgraph.Graph, src graphstore.NodeID) (map[graphstore.NodeID]int, error) {
	dist, _, err := g.Dijkstra(vertexID(src))
	if err != nil {
		return nil, fmt.Errorf("webgraph: dijkstra: %w", err)
	}

	out := make(map[graphstore.NodeID]int, len(dist))
	for key, d := range dist {
		if d == math.MaxInt64 {
			continue
		}
		id, err := parseVertexID(key)
		if err != nil {
			return nil, err
		}
		out[id] = int(d)
	}
	return out, nil
}

// distances resolves source against gs, materializes the traversal graph,
// and runs shortestPathsFrom, rehydrating NodeIDs back into Nodes. A nil gs
// or an unknown source yields an empty map and a nil error - lookups for
// unknown nodes are never an error.
func distances(gs *graphstore.GraphStore, source Node, reversed bool) (map[Node]int, error) {
	if gs == nil {
		return map[Node]int{}, nil
	}

	srcID, ok, err := gs.Node2ID(source)
	if err != nil {
		return nil, fmt.Errorf("webgraph: distances: %w", err)
	}
	if !ok {
		return map[Node]int{}, nil
	}

	g, err := traversalGraph(gs, reversed)
	if err != nil {
		return nil, fmt.Errorf("webgraph: distances: %w", err)
	}

	byID, err := shortestPathsFrom(g, srcID)
	if err != nil {
		return nil, fmt.Errorf("webgraph: distances: %w", err)
	}

	out := make(map[Node]int, len(byID))
	for id, d := range byID {
		node, ok, err := gs.ID2Node(id)
		if err != nil {
			return nil, fmt.Errorf("webgraph: distances: %w", err)
		}
		if !ok {
			// Every id in byID came from gs's own adjacency stores, so its
			// name must exist in id2node; a miss here means the store is
			// internally inconsistent.
			panic(fmt.Sprintf("webgraph: distances: id %d has no registered node", id))
		}
		out[node] = d
	}
	return out, nil
}
