package finding

import "errors"

// Sentinel errors for common catalog and findings failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrUnknownClass indicates a finding references a defect class id
	// that does not exist in the loaded catalog.
	ErrUnknownClass = errors.New("finding: unknown defect class")

	// ErrEmptyCatalog indicates the catalog source contained no
	// defect class definitions.
	ErrEmptyCatalog = errors.New("finding: empty catalog")

	// ErrInvalidSeverity indicates a severity string outside the
	// recognized set (critical, high, medium, low, info).
	ErrInvalidSeverity = errors.New("finding: invalid severity")

	// ErrDuplicateClass indicates two catalog files declare the same
	// class id.
	ErrDuplicateClass = errors.New("finding: duplicate class id")
)
