package types

import "errors"

// Error kinds. Callers wrap them with context and test with errors.Is.
var (
	// ErrLoad means the reference table is missing or malformed. Fatal at startup.
	ErrLoad = errors.New("formula table load failed")

	// ErrInvalidInput means a request field is non-numeric or out of domain.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoMatch means no coefficient row satisfies the selection criteria.
	ErrNoMatch = errors.New("no matching formula")

	// ErrAmbiguous means more than one row satisfies the selection criteria.
	ErrAmbiguous = errors.New("ambiguous formula selection")
)
