package webgraph

import "fmt"

// Builder configures a Webgraph before opening it: which projections to
// build, where they live on disk, and whether mutation is permitted.
type Builder struct {
	path     string
	withFull bool
	withHost bool
	readOnly bool
}

// NewBuilder returns a Builder rooted at path. Neither projection is
// configured by default; call WithFullGraph and/or WithHostGraph.
func NewBuilder(path string) *Builder {
	return &Builder{path: path}
}

// WithFullGraph configures the full (URL-level) projection.
func (b *Builder) WithFullGraph() *Builder {
	b.withFull = true
	return b
}

// WithHostGraph configures the host-level projection.
func (b *Builder) WithHostGraph() *Builder {
	b.withHost = true
	return b
}

// ReadOnly sets whether the opened Webgraph rejects mutation.
func (b *Builder) ReadOnly(ro bool) *Builder {
	b.readOnly = ro
	return b
}

// Open opens or creates the configured projections on disk under b.path.
func (b *Builder) Open() (*Webgraph, error) {
	if !b.withFull && !b.withHost {
		return nil, fmt.Errorf("webgraph: builder: at least one of WithFullGraph/WithHostGraph is required")
	}

	w := &Webgraph{path: b.path, readOnly: b.readOnly}

	var err error
	if b.withFull {
		w.full, err = openProjection(b.path+"/full", b.readOnly)
		if err != nil {
			return nil, fmt.Errorf("webgraph: open full graph: %w", err)
		}
	}
	if b.withHost {
		w.host, err = openProjection(b.path+"/host", b.readOnly)
		if err != nil {
			if w.full != nil {
				_ = w.full.Close()
			}
			return nil, fmt.Errorf("webgraph: open host graph: %w", err)
		}
	}
	return w, nil
}

// OpenMemory builds the configured projections entirely in memory.
func (b *Builder) OpenMemory() *Webgraph {
	w := &Webgraph{path: b.path}
	if b.withFull {
		w.full = openProjectionMemory()
	}
	if b.withHost {
		w.host = openProjectionMemory()
	}
	return w
}
