package adjacency

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

func encodeBlock(b block) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("adjacency: encode block: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeBlock(raw []byte) (block, error) {
	if len(raw) == 0 {
		return make(block), nil
	}
	var b block
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&b); err != nil {
		return nil, fmt.Errorf("adjacency: decode block: %w", err)
	}
	return b, nil
}
