package store

import "errors"

// ErrThreadNotFound indicates the requested thread does not exist in the
// collection. Check with errors.Is().
var ErrThreadNotFound = errors.New("thread not found")
