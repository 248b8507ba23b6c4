package graphstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertAssignsIDsAndBothDirections(t *testing.T) {
	g := OpenMemory()
	t.Cleanup(func() { _ = g.Close() })

	a := Node{Name: "a.com"}
	b := Node{Name: "b.com"}
	require.NoError(t, g.Insert(a, b, "link"))

	aID, ok, err := g.Node2ID(a)
	require.NoError(t, err)
	require.True(t, ok)

	bID, ok, err := g.Node2ID(b)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, aID, bID)

	out, err := g.OutgoingEdges(aID)
	require.NoError(t, err)
	require.Equal(t, []Edge{{From: a, To: b, Label: "link"}}, out)

	in, err := g.IngoingEdges(bID)
	require.NoError(t, err)
	require.Equal(t, []Edge{{From: a, To: b, Label: "link"}}, in)
}

func TestInsertReusesExistingID(t *testing.T) {
	g := OpenMemory()
	t.Cleanup(func() { _ = g.Close() })

	a := Node{Name: "a.com"}
	b := Node{Name: "b.com"}
	c := Node{Name: "c.com"}
	require.NoError(t, g.Insert(a, b, ""))
	require.NoError(t, g.Insert(a, c, ""))

	aID1, _, _ := g.Node2ID(a)
	out, err := g.OutgoingEdges(aID1)
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestID2NodeRoundTrip(t *testing.T) {
	g := OpenMemory()
	t.Cleanup(func() { _ = g.Close() })

	a := Node{Name: "a.com"}
	require.NoError(t, g.Insert(a, Node{Name: "b.com"}, ""))

	id, ok, err := g.Node2ID(a)
	require.NoError(t, err)
	require.True(t, ok)

	node, ok, err := g.ID2Node(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, a, node)

	_, ok, err = g.ID2Node(NodeID(999))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNodesInAssignmentOrder(t *testing.T) {
	g := OpenMemory()
	t.Cleanup(func() { _ = g.Close() })

	require.NoError(t, g.Insert(Node{Name: "a"}, Node{Name: "b"}, ""))
	require.NoError(t, g.Insert(Node{Name: "b"}, Node{Name: "c"}, ""))

	ids, err := g.Nodes()
	require.NoError(t, err)
	require.Equal(t, []NodeID{0, 1, 2}, ids)
}

func TestAppendTranslatesByName(t *testing.T) {
	g := OpenMemory()
	t.Cleanup(func() { _ = g.Close() })
	require.NoError(t, g.Insert(Node{Name: "a"}, Node{Name: "b"}, "x"))

	other := OpenMemory()
	t.Cleanup(func() { _ = other.Close() })
	require.NoError(t, other.Insert(Node{Name: "b"}, Node{Name: "c"}, "y"))

	require.NoError(t, g.Append(other))

	bID, ok, err := g.Node2ID(Node{Name: "b"})
	require.NoError(t, err)
	require.True(t, ok)

	out, err := g.OutgoingEdges(bID)
	require.NoError(t, err)
	require.Equal(t, []Edge{{From: Node{Name: "b"}, To: Node{Name: "c"}, Label: "y"}}, out)
}

func TestReadOnlyRejectsMutation(t *testing.T) {
	dir := t.TempDir()
	g, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, g.Insert(Node{Name: "a"}, Node{Name: "b"}, ""))
	require.NoError(t, g.Close())

	ro, err := OpenReadOnly(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ro.Close() })

	require.ErrorIs(t, ro.Insert(Node{Name: "c"}, Node{Name: "d"}, ""), ErrReadOnly)
	require.ErrorIs(t, ro.Append(OpenMemory()), ErrReadOnly)

	id, ok, err := ro.Node2ID(Node{Name: "a"})
	require.NoError(t, err)
	require.True(t, ok)
	out, err := ro.OutgoingEdges(id)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestRecoversNextIDOnReopen(t *testing.T) {
	dir := t.TempDir()
	g, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, g.Insert(Node{Name: "a"}, Node{Name: "b"}, ""))
	require.NoError(t, g.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	require.NoError(t, reopened.Insert(Node{Name: "c"}, Node{Name: "d"}, ""))
	cID, ok, err := reopened.Node2ID(Node{Name: "c"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, NodeID(2), cID)
}
