package models

import "fmt"

// ValidationError reports malformed caller input (empty query, blank symptom
// list, empty document). Not retryable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExternalServiceError reports a failure of an external capability (embedding
// or completion endpoint). Callers recover by degrading to the deterministic
// fallback path rather than surfacing it as a hard failure.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// DimensionMismatchError reports an embedding whose length does not match the
// index dimension. Fatal: it indicates a configuration bug, never skipped.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: got %d, want %d", e.Got, e.Want)
}
