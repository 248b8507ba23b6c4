package graphstore

import "errors"

// ErrReadOnly is returned by Insert and Append on a GraphStore opened with
// OpenReadOnly.
var ErrReadOnly = errors.New("graphstore: store is read-only")
