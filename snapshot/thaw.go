package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/webgraph-io/webgraph/webgraph"
)

// Thaw recreates the directory tree recorded in f at path, replacing
// whatever already exists there, then opens a Webgraph over it configured
// by f.HasFull/f.HasHost.
func Thaw(f *Frozen, path string) (*webgraph.Webgraph, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("snapshot: thaw: removing %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: thaw: creating %s: %w", path, err)
	}

	if err := writeDir(path, f.Root); err != nil {
		return nil, fmt.Errorf("snapshot: thaw: %w", err)
	}

	builder := webgraph.NewBuilder(path)
	if f.HasFull {
		builder = builder.WithFullGraph()
	}
	if f.HasHost {
		builder = builder.WithHostGraph()
	}

	w, err := builder.Open()
	if err != nil {
		return nil, fmt.Errorf("snapshot: thaw: opening %s: %w", path, err)
	}
	return w, nil
}

func writeDir(path string, folder Folder) error {
	for _, entry := range folder.Entries {
		switch {
		case entry.Folder != nil:
			sub := filepath.Join(path, entry.Folder.Name)
			if err := os.MkdirAll(sub, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", sub, err)
			}
			if err := writeDir(sub, *entry.Folder); err != nil {
				return err
			}
		case entry.File != nil:
			file := filepath.Join(path, entry.File.Name)
			if err := os.WriteFile(file, entry.File.Content, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}
		}
	}
	return nil
}
