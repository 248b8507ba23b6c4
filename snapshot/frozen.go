// Package snapshot freezes a Webgraph's on-disk directory tree into a single
// gob-encodable value and thaws it back out.
package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/webgraph-io/webgraph/wire"
)

// Frozen is a complete, in-memory copy of a Webgraph's on-disk directory
// tree, tagged with which projections it holds.
type Frozen struct {
	Root    Folder
	HasFull bool
	HasHost bool
}

// Encode gob-encodes f and wraps the result in a single wire frame, the
// same framing the map-reduce RPC uses, so a snapshot file's length is
// self-describing and a truncated one fails decoding loudly.
func (f *Frozen) Encode() ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(f); err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}

	var framed bytes.Buffer
	if err := wire.WriteFrame(&framed, payload.Bytes()); err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return framed.Bytes(), nil
}

// DecodeFrozen unwraps one wire frame from raw and decodes its payload into
// a Frozen.
func DecodeFrozen(raw []byte) (*Frozen, error) {
	payload, err := wire.ReadFrame(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}

	var f Frozen
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&f); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return &f, nil
}
