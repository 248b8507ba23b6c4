package webgraph

import "github.com/webgraph-io/webgraph/graphstore"

// Node is a named vertex: a full URL in the full graph, a host in the host
// graph.
type Node = graphstore.Node

// FullEdge is a resolved, labeled edge, as returned by IngoingEdges.
type FullEdge = graphstore.Edge
