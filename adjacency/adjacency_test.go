package adjacency

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webgraph-io/webgraph/kv/memkv"
)

func newAdjacency(blockSize uint64) *Adjacency {
	return New(memkv.New(), blockSize)
}

func TestInsertAndEdges(t *testing.T) {
	a := newAdjacency(4)

	require.NoError(t, a.Insert(1, StoredEdge{Peer: 2, Label: "a"}))
	require.NoError(t, a.Insert(1, StoredEdge{Peer: 3, Label: "b"}))
	require.NoError(t, a.Insert(5, StoredEdge{Peer: 6, Label: "c"}))

	edges, err := a.Edges(1)
	require.NoError(t, err)
	require.Equal(t, []StoredEdge{{Peer: 2, Label: "a"}, {Peer: 3, Label: "b"}}, edges)

	edges, err = a.Edges(5)
	require.NoError(t, err)
	require.Equal(t, []StoredEdge{{Peer: 6, Label: "c"}}, edges)

	edges, err = a.Edges(99)
	require.NoError(t, err)
	require.Empty(t, edges)
}

func TestInsertAcrossBlocksFlushesBuffer(t *testing.T) {
	a := newAdjacency(2)

	require.NoError(t, a.Insert(0, StoredEdge{Peer: 1, Label: ""}))
	require.NoError(t, a.Insert(2, StoredEdge{Peer: 3, Label: ""})) // different block, flushes block 0
	require.NoError(t, a.Insert(0, StoredEdge{Peer: 9, Label: ""})) // back to block 0, must reload it

	edges, err := a.Edges(0)
	require.NoError(t, err)
	require.Equal(t, []StoredEdge{{Peer: 1}, {Peer: 9}}, edges)
}

func TestFlushThenReadFromFreshAdjacency(t *testing.T) {
	store := memkv.New()
	a := New(store, 4)
	require.NoError(t, a.Insert(1, StoredEdge{Peer: 2, Label: "x"}))
	require.NoError(t, a.Flush())

	b := New(store, 4)
	edges, err := b.Edges(1)
	require.NoError(t, err)
	require.Equal(t, []StoredEdge{{Peer: 2, Label: "x"}}, edges)
}

func TestAppend(t *testing.T) {
	a := newAdjacency(4)
	require.NoError(t, a.Insert(1, StoredEdge{Peer: 2, Label: "a"}))

	other := newAdjacency(4)
	require.NoError(t, other.Insert(1, StoredEdge{Peer: 3, Label: "b"}))
	require.NoError(t, other.Insert(5, StoredEdge{Peer: 6, Label: "c"}))

	require.NoError(t, a.Append(other))

	edges, err := a.Edges(1)
	require.NoError(t, err)
	require.ElementsMatch(t, []StoredEdge{{Peer: 2, Label: "a"}, {Peer: 3, Label: "b"}}, edges)

	edges, err = a.Edges(5)
	require.NoError(t, err)
	require.Equal(t, []StoredEdge{{Peer: 6, Label: "c"}}, edges)
}

func TestAppendBlockSizeMismatch(t *testing.T) {
	a := newAdjacency(4)
	other := newAdjacency(8)
	require.Error(t, a.Append(other))
}

func TestEdgeIterator(t *testing.T) {
	a := newAdjacency(2)
	require.NoError(t, a.Insert(0, StoredEdge{Peer: 1, Label: "a"}))
	require.NoError(t, a.Insert(2, StoredEdge{Peer: 3, Label: "b"}))
	require.NoError(t, a.Insert(2, StoredEdge{Peer: 4, Label: "c"}))

	it, err := a.NewEdgeIterator()
	require.NoError(t, err)

	count := 0
	seen := map[NodeID]int{}
	for {
		id, _, ok := it.Next()
		if !ok {
			break
		}
		seen[id]++
		count++
	}
	require.NoError(t, it.Err())
	require.Equal(t, 3, count)
	require.Equal(t, 1, seen[NodeID(0)])
	require.Equal(t, 2, seen[NodeID(2)])
}
