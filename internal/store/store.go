// Package store issues parameterized SQL against the four totelink tables.
package store

import "errors"

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
