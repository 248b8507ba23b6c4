package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/webgraph-io/webgraph/webgraph"
)

// Freeze takes a point-in-time copy of w's on-disk directory tree. It first
// calls w.Flush so the snapshot reflects every prior insert.
//
// Freeze is not concurrent-safe with writers: no locking is attempted here.
// Callers that ingest from other goroutines must serialize those inserts
// against Freeze themselves.
func Freeze(w *webgraph.Webgraph) (*Frozen, error) {
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("snapshot: freeze: %w", err)
	}

	root, err := walkDir(w.Path())
	if err != nil {
		return nil, fmt.Errorf("snapshot: freeze: %w", err)
	}

	return &Frozen{
		Root:    *root,
		HasFull: w.HasFullGraph(),
		HasHost: w.HasHostGraph(),
	}, nil
}

func walkDir(path string) (*Folder, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}

	folder := &Folder{Name: filepath.Base(path)}
	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		if e.IsDir() {
			sub, err := walkDir(child)
			if err != nil {
				return nil, err
			}
			folder.Entries = append(folder.Entries, DirEntry{Folder: sub})
			continue
		}

		content, err := os.ReadFile(child)
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", child, err)
		}
		folder.Entries = append(folder.Entries, DirEntry{File: &File{Name: e.Name(), Content: content}})
	}
	return folder, nil
}
