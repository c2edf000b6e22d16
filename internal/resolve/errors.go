// Package resolve finds the most plausible profile image for a player by trying wiki
// page titles in priority order.
package resolve

import "errors"

// ErrNotFound is returned when every fallback tier is exhausted without an image.
var ErrNotFound = errors.New("image not found")
