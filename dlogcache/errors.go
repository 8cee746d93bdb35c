package dlogcache

import "errors"

// ErrNotFound is returned when no exponent within the configured bound
// produces the requested target element.
var ErrNotFound = errors.New("dlogcache: discrete log not found within bound")
