// ABOUTME: Error taxonomy for the data layer
// ABOUTME: Sentinel errors so callers can branch with errors.Is
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a lookup matched no row. Readers usually swallow
	// this into empty results; writers return it when the target row must
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRowIndex means a caller-supplied row index would target the
	// header row or lies outside the sheet. Raised before any remote call.
	ErrInvalidRowIndex = errors.New("invalid row index")
)

// validateRowIndex rejects indices that would address the header row.
func validateRowIndex(rowIndex int) error {
	if rowIndex <= 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRowIndex, rowIndex)
	}
	return nil
}
