package webgraph

import (
	"fmt"
	"runtime"
	"sync"

	lvgraph "github.com/katalvlaran/lvlath/graph"

	"github.com/webgraph-io/webgraph/graphstore"
)

// harmonicCentrality computes harmonic centrality for every node in gs:
//
//	H(v) = (1 / (|N|-1)) * sum_{u != v, d(u,v) < inf} 1/d(u,v)
//
// by running a reversed shortest-paths computation rooted at each v in turn
// (reversed traversal from v visits u at the distance of the forward path
// u -> v) and normalizing. Entries whose centrality is exactly 0 are
// dropped. For |N| <= 1 the result is empty: there is no normalization
// factor.
//
// The per-node loop is embarrassingly parallel and is run over a bounded
// worker pool sized to GOMAXPROCS. The result is identical regardless of
// worker count.
func harmonicCentrality(gs *graphstore.GraphStore) (map[Node]float64, error) {
	if gs == nil {
		return map[Node]float64{}, nil
	}

	ids, err := gs.Nodes()
	if err != nil {
		return nil, fmt.Errorf("webgraph: harmonic centrality: %w", err)
	}
	n := len(ids)
	if n <= 1 {
		return map[Node]float64{}, nil
	}
	norm := 1.0 / float64(n-1)

	// One traversal-graph build shared by every worker: Dijkstra only reads
	// it, so the per-node runs below can query it concurrently.
	g, err := traversalGraph(gs, true)
	if err != nil {
		return nil, fmt.Errorf("webgraph: harmonic centrality: %w", err)
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	type result struct {
		node  Node
		value float64
	}

	jobs := make(chan graphstore.NodeID)
	results := make([]result, n)
	errCh := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range jobs {
				sum, err := reversedDistanceSum(g, v)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					continue
				}
				node, ok, err := gs.ID2Node(v)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					continue
				}
				if !ok {
					continue
				}
				results[v] = result{node: node, value: sum * norm}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			jobs <- id
		}
	}()
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, fmt.Errorf("webgraph: harmonic centrality: %w", err)
	default:
	}

	out := make(map[Node]float64, n)
	for _, r := range results {
		if r.value == 0 {
			continue
		}
		out[r.node] = r.value
	}
	return out, nil
}

// reversedDistanceSum sums 1/d(u,v) over every u reachable from v in the
// transposed traversal graph (i.e. every u with a forward path to v),
// excluding v itself.
func reversedDistanceSum(g *lvgraph.Graph, v graphstore.NodeID) (float64, error) {
	dist, err := shortestPathsFrom(g, v)
	if err != nil {
		return 0, err
	}
	var sum float64
	for u, d := range dist {
		if u == v || d == 0 {
			continue
		}
		sum += 1.0 / float64(d)
	}
	return sum, nil
}
