package content

import "errors"

// ErrWorkNotFound is returned when no published work matches a lookup.
var ErrWorkNotFound = errors.New("work not found")
