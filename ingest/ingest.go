// Package ingest wires mapreduce.Mapper/Reducer against webgraph.Webgraph
// for bulk edge loading: each worker loads a batch of raw edges into a
// partial in-memory graph, and the manager folds every partial graph into
// one on-disk graph by re-inserting its edges.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/webgraph-io/webgraph/webgraph"
)

// EdgeRecord is one raw "from\tto\tlabel" line, gob-encodable for transport
// across the map-reduce wire protocol.
type EdgeRecord struct {
	From  string
	To    string
	Label string
}

// PartialGraph is what a worker hands back after mapping one batch: the
// batch's edges as read back out of an in-memory Webgraph, grouped by source
// node. Duplicate records are kept.
type PartialGraph struct {
	Edges []EdgeRecord
}

// ParseEdges reads newline-delimited "from\tto\tlabel" records. Blank lines
// and lines starting with "#" are skipped.
func ParseEdges(r io.Reader) ([]EdgeRecord, error) {
	var records []EdgeRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			return nil, fmt.Errorf("ingest: line %d: expected at least 2 tab-separated fields, got %d", lineNo, len(parts))
		}
		rec := EdgeRecord{From: parts[0], To: parts[1]}
		if len(parts) >= 3 {
			rec.Label = parts[2]
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	return records, nil
}

// Batch splits records into n contiguous, roughly-equal batches, skipping
// any that would be empty. Used to hand one batch per worker to
// mapreduce.Manager.Run.
func Batch(records []EdgeRecord, n int) [][]EdgeRecord {
	if n <= 0 {
		n = 1
	}
	if len(records) == 0 {
		return nil
	}
	if n > len(records) {
		n = len(records)
	}

	batches := make([][]EdgeRecord, 0, n)
	size := (len(records) + n - 1) / n
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}

// Mapper builds a small in-memory full-graph Webgraph per batch and reads
// its edges back out. Records are not filtered: every record, duplicates
// included, comes back out.
type Mapper struct{}

// Map implements mapreduce.Mapper[[]EdgeRecord, PartialGraph].
func (Mapper) Map(batch []EdgeRecord) (PartialGraph, error) {
	wg := webgraph.NewBuilder("").WithFullGraph().OpenMemory()
	defer wg.Close()

	for _, rec := range batch {
		from := webgraph.Node{Name: rec.From}
		to := webgraph.Node{Name: rec.To}
		if err := wg.Insert(from, to, rec.Label); err != nil {
			return PartialGraph{}, fmt.Errorf("ingest: map: %w", err)
		}
	}

	nodes, err := wg.Nodes()
	if err != nil {
		return PartialGraph{}, fmt.Errorf("ingest: map: %w", err)
	}

	var out PartialGraph
	for _, node := range nodes {
		edges, err := wg.OutgoingEdges(node)
		if err != nil {
			return PartialGraph{}, fmt.Errorf("ingest: map: %w", err)
		}
		for _, e := range edges {
			out.Edges = append(out.Edges, EdgeRecord{From: node.Name, To: e.To.Name, Label: e.Label})
		}
	}
	return out, nil
}

// Reducer merges each worker's PartialGraph into a pre-opened destination
// Webgraph by re-inserting its edges. Insert is not idempotent: an edge that
// arrives twice is stored twice.
//
// Reduce's signature carries no error, so each
// failure is logged and the first one is retained for Err, which callers
// must check after the run before trusting the graph.
type Reducer struct {
	Dest *webgraph.Webgraph
	Log  logrus.FieldLogger

	err error
}

// Seed inserts the first partial graph's edges into Dest and returns it as
// the running accumulator.
func (r *Reducer) Seed(first PartialGraph) *webgraph.Webgraph {
	r.insertAll(first.Edges)
	return r.Dest
}

// Reduce implements mapreduce.Reducer[PartialGraph, *webgraph.Webgraph].
func (r *Reducer) Reduce(acc *webgraph.Webgraph, next PartialGraph) *webgraph.Webgraph {
	r.insertAll(next.Edges)
	return acc
}

// Err returns the first destination insert failure, or nil if every edge
// landed.
func (r *Reducer) Err() error {
	return r.err
}

// insertAll is only called from Seed/Reduce, which the manager serializes
// under its accumulator mutex, so r.err needs no lock of its own.
func (r *Reducer) insertAll(edges []EdgeRecord) {
	for _, e := range edges {
		err := r.Dest.Insert(webgraph.Node{Name: e.From}, webgraph.Node{Name: e.To}, e.Label)
		if err == nil {
			continue
		}
		if r.Log != nil {
			r.Log.Errorf("ingest: insert %s -> %s: %v", e.From, e.To, err)
		}
		if r.err == nil {
			r.err = fmt.Errorf("ingest: insert %s -> %s: %w", e.From, e.To, err)
		}
	}
}
