// Package wire implements the length-prefixed binary framing shared by the
// map-reduce RPC protocol and by frozen-webgraph snapshots.
//
// A frame is an 8-byte little-endian length followed by that many bytes of
// payload. There is no compression and no checksum: both endpoints of a
// frame are trusted (a manager and the workers it dispatched, or a single
// process writing then reading back its own snapshot).
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrFrameTooLarge guards against a corrupt or hostile length prefix causing
// an unbounded allocation.
var ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")

// ErrShortFrame is returned when the stream ends mid-frame: a partial header
// or fewer payload bytes than the header promised.
var ErrShortFrame = errors.New("wire: short frame")

// MaxFrameSize bounds a single frame's payload. Block-adjacency values and
// whole partial webgraphs can legitimately be large, so this is generous
// rather than tight.
const MaxFrameSize = 1 << 30 // 1 GiB

// WriteFrame writes payload to w as one length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], uint64(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("wire: write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r and returns its payload.
// It reports io.EOF unmodified when r is closed before any bytes of a new
// frame are read, so callers can distinguish "no more frames" from a
// truncated frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header: %v", ErrShortFrame, err)
		}
		return nil, err
	}

	n := binary.LittleEndian.Uint64(header[:])
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	if n == 0 {
		return nil, nil
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: truncated payload: %v", ErrShortFrame, err)
	}
	return payload, nil
}
