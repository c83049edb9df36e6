package grid

import "errors"

var (
	// ErrOutOfRange signals a coordinate or index outside the grid's extent.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidDimension signals a non-positive size or extent.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrMissingField signals that Build was called before a required
	// dimension was set.
	ErrMissingField = errors.New("required field not set")
	// ErrMissingCells signals that Build was called before every cell in the
	// grid was assigned.
	ErrMissingCells = errors.New("not all cells assigned")
)
