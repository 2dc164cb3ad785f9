package errors

import (
	"fmt"

	crdberrors "github.com/cockroachdb/errors"
)

// BoundsError reports an index that falls outside the valid range [0, Limit).
type BoundsError struct {
	Op    string
	Index int
	Limit int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d)", e.Op, e.Index, e.Limit)
}

// IsBoundsError checks if an error is, or wraps, a bounds error
func IsBoundsError(err error) bool {
	var be *BoundsError
	return crdberrors.As(err, &be)
}

// BoundsErrorf creates a new bounds error for the given operation
func BoundsErrorf(op string, index, limit int) *BoundsError {
	return &BoundsError{
		Op:    op,
		Index: index,
		Limit: limit,
	}
}
