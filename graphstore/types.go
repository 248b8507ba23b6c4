package graphstore

import "github.com/webgraph-io/webgraph/adjacency"

// NodeID identifies a node within a single GraphStore's id-space. Ids are
// assigned contiguously starting at 0 and are never reused, so they are not
// portable across stores - Append always translates by node name.
type NodeID = adjacency.NodeID

// Node is the caller-facing identity of a vertex: its name, exactly as
// inserted (a URL or a host, depending on which projection a graphstore
// backs).
type Node struct {
	Name string
}

// Edge is a resolved, labeled edge between two Nodes.
type Edge struct {
	From  Node
	To    Node
	Label string
}
