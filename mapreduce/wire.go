package mapreduce

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Tag bytes identifying a Task frame's variant on the wire.
const (
	tagJob         byte = 0x01
	tagAllFinished byte = 0x02
)

// task is the wire envelope a manager sends to a worker: either a job
// carrying one map-input, or the AllFinished sentinel. The variant is
// carried as a leading tag byte on the frame.
type task[I any] struct {
	Input I
}

// encodeJob frames a Job(input) task as tagJob followed by a gob-encoded
// payload.
func encodeJob[I any](input I) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(task[I]{Input: input}); err != nil {
		return nil, fmt.Errorf("mapreduce: encode job: %w", err)
	}
	return append([]byte{tagJob}, buf.Bytes()...), nil
}

// encodeAllFinished frames the AllFinished sentinel: a single tag byte with
// no payload.
func encodeAllFinished() []byte {
	return []byte{tagAllFinished}
}

// decodeTask splits a received frame's tag byte from its payload and decodes
// a Job payload into I. isAllFinished is true when the frame carries no job.
func decodeTask[I any](frame []byte) (input I, isAllFinished bool, err error) {
	if len(frame) == 0 {
		err = fmt.Errorf("mapreduce: decode task: empty frame")
		return
	}

	switch frame[0] {
	case tagAllFinished:
		isAllFinished = true
		return
	case tagJob:
		var t task[I]
		if decErr := gob.NewDecoder(bytes.NewReader(frame[1:])).Decode(&t); decErr != nil {
			err = fmt.Errorf("mapreduce: decode task: %w", decErr)
			return
		}
		input = t.Input
		return
	default:
		err = fmt.Errorf("mapreduce: decode task: unknown tag %#x", frame[0])
		return
	}
}

// encodeOutput gob-encodes a worker's map output for the reply frame.
func encodeOutput[O any](output O) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(output); err != nil {
		return nil, fmt.Errorf("mapreduce: encode output: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeOutput gob-decodes a worker's reply frame.
func decodeOutput[O any](raw []byte) (O, error) {
	var out O
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&out); err != nil {
		return out, fmt.Errorf("mapreduce: decode output: %w", err)
	}
	return out, nil
}
