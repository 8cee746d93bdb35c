package group

import "errors"

// ErrInvalidElement is returned when a candidate value fails its range or
// subgroup-membership check.
var ErrInvalidElement = errors.New("group: invalid element")
