package webgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func node(name string) Node { return Node{Name: name} }

func buildS1(t *testing.T) *Webgraph {
	t.Helper()
	w := NewBuilder("").WithFullGraph().OpenMemory()
	t.Cleanup(func() { _ = w.Close() })

	edges := []struct{ from, to string }{
		{"A", "B"}, {"B", "C"}, {"A", "C"}, {"C", "A"}, {"D", "C"},
	}
	for _, e := range edges {
		require.NoError(t, w.Insert(node(e.from), node(e.to), ""))
	}
	return w
}

func TestDistances(t *testing.T) {
	w := buildS1(t)

	dist, err := w.Distances(node("D"))
	require.NoError(t, err)
	require.Equal(t, map[Node]int{
		node("D"): 0,
		node("C"): 1,
		node("A"): 2,
		node("B"): 3,
	}, dist)
}

func TestReversedDistances(t *testing.T) {
	w := buildS1(t)

	dist, err := w.ReversedDistances(node("D"))
	require.NoError(t, err)
	require.Equal(t, map[Node]int{node("D"): 0}, dist)

	dist, err = w.ReversedDistances(node("A"))
	require.NoError(t, err)
	require.Equal(t, 1, dist[node("C")])
	require.Equal(t, 2, dist[node("D")])
	require.Equal(t, 2, dist[node("B")])
}

func TestHarmonicCentrality(t *testing.T) {
	w := buildS1(t)

	hc, err := w.HarmonicCentrality()
	require.NoError(t, err)

	require.InDelta(t, 1.0, hc[node("C")], 1e-9)
	require.InDelta(t, 0.6666666666666666, hc[node("A")], 1e-9)
	require.InDelta(t, 0.6111111111111112, hc[node("B")], 1e-9)
	_, ok := hc[node("D")]
	require.False(t, ok)
}

func TestHostProjectionDominance(t *testing.T) {
	w := NewBuilder("").WithFullGraph().WithHostGraph().OpenMemory()
	t.Cleanup(func() { _ = w.Close() })

	aNodes := []string{"A.com/1", "A.com/2", "A.com/3", "A.com/4"}
	for _, from := range aNodes {
		for _, to := range aNodes {
			if from == to {
				continue
			}
			require.NoError(t, w.Insert(node(from), node(to), ""))
		}
	}
	require.NoError(t, w.Insert(node("C.com"), node("B.com"), ""))
	require.NoError(t, w.Insert(node("D.com"), node("B.com"), ""))

	fullHC, err := w.HarmonicCentrality()
	require.NoError(t, err)
	for _, a := range aNodes {
		require.Greater(t, fullHC[node(a)], fullHC[node("B.com")])
	}

	hostHC, err := w.HostHarmonicCentrality()
	require.NoError(t, err)
	require.Greater(t, hostHC[node("B.com")], hostHC[node("A.com")])
}

func TestWWWStripping(t *testing.T) {
	w := NewBuilder("").WithHostGraph().OpenMemory()
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Insert(node("B.com"), node("A.com"), ""))
	require.NoError(t, w.Insert(node("B.com"), node("www.A.com"), ""))

	hostHC, err := w.HostHarmonicCentrality()
	require.NoError(t, err)
	require.InDelta(t, 1.0, hostHC[node("A.com")], 1e-9)
	_, ok := hostHC[node("www.A.com")]
	require.False(t, ok)
}

func TestMerge(t *testing.T) {
	g1 := NewBuilder("").WithFullGraph().OpenMemory()
	t.Cleanup(func() { _ = g1.Close() })
	require.NoError(t, g1.Insert(node("A"), node("B"), ""))

	g2 := NewBuilder("").WithFullGraph().OpenMemory()
	t.Cleanup(func() { _ = g2.Close() })
	require.NoError(t, g2.Insert(node("B"), node("C"), ""))

	require.NoError(t, g1.Merge(g2))

	dist, err := g1.Distances(node("A"))
	require.NoError(t, err)
	require.Equal(t, 2, dist[node("C")])
}

func TestMergeMovesUnconfiguredProjection(t *testing.T) {
	g1 := NewBuilder("").WithFullGraph().OpenMemory()
	t.Cleanup(func() { _ = g1.Close() })
	require.NoError(t, g1.Insert(node("A"), node("B"), ""))
	require.False(t, g1.HasHostGraph())

	g2 := NewBuilder("").WithFullGraph().WithHostGraph().OpenMemory()
	t.Cleanup(func() { _ = g2.Close() })
	require.NoError(t, g2.Insert(node("A.com"), node("B.com"), ""))

	require.NoError(t, g1.Merge(g2))
	require.True(t, g1.HasHostGraph())

	hostDist, err := g1.HostDistances(node("A.com"))
	require.NoError(t, err)
	require.Equal(t, 1, hostDist[node("B.com")])
}

func TestIngoingEdges(t *testing.T) {
	w := buildS1(t)

	edges, err := w.IngoingEdges(node("C"))
	require.NoError(t, err)
	require.Len(t, edges, 3)
}

func TestDistancesUnknownSourceIsEmpty(t *testing.T) {
	w := buildS1(t)

	dist, err := w.Distances(node("nowhere"))
	require.NoError(t, err)
	require.Empty(t, dist)
}

func TestOutgoingEdges(t *testing.T) {
	w := buildS1(t)

	edges, err := w.OutgoingEdges(node("A"))
	require.NoError(t, err)
	require.NotEmpty(t, edges)
	for _, e := range edges {
		require.Equal(t, node("A"), e.From)
	}
}

func TestNodesCoversEveryInsertedEndpoint(t *testing.T) {
	w := buildS1(t)

	nodes, err := w.Nodes()
	require.NoError(t, err)
	require.Contains(t, nodes, node("A"))
	require.Contains(t, nodes, node("C"))
}
