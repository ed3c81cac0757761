package entity

import "errors"

// Error taxonomy. Pipelines wrap these with fmt.Errorf("%w: ...") so handlers
// can map them to a stable machine-readable code and HTTP status.
var (
	// ErrProvider covers embedding/completion provider failures, including
	// unreachable services and exhausted retries.
	ErrProvider = errors.New("provider error")

	// ErrSchemaDecode is returned when the provider answered but its output
	// does not conform to the expected structured schema. Not retryable.
	ErrSchemaDecode = errors.New("schema decode error")

	// ErrValidation covers malformed or missing required input.
	ErrValidation = errors.New("validation error")

	// ErrStorage covers relational persistence failures.
	ErrStorage = errors.New("storage error")

	// ErrNotFound covers missing rows (tenant lookups and similar).
	ErrNotFound = errors.New("not found")

	// Validation details
	ErrMissingField = errors.New("required field is missing")
)

// ErrorCode returns the stable machine-readable code for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrSchemaDecode), errors.Is(err, ErrProvider):
		return "LLM_ERROR"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMissingField):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	default:
		return "DB_ERROR"
	}
}
