// Package winutil adjusts native windows that the drawing toolkit cannot:
// borderless style, always-on-top and exact placement.
package winutil

import "errors"

// ErrWindowNotFound is returned when no top-level window carries the title.
var ErrWindowNotFound = errors.New("window not found")
