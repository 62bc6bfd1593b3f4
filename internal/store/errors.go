package store

import "fmt"

// ValidationError indicates malformed input, e.g. a non-scalar amount or a
// parameter name that cannot appear in formulas.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NotFoundError indicates an unresolvable node or parameter reference.
type NotFoundError struct {
	Kind string // "node", "parameter", or "exchange"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Ref)
}
