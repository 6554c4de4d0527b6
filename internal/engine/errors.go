package engine

import "fmt"

// EmptyAggregationError is returned when a mean has no values to average.
// It is local to one aggregation; callers show "no data" instead.
type EmptyAggregationError struct {
	Op    string
	Field string
}

func (e *EmptyAggregationError) Error() string {
	return fmt.Sprintf("%s of %q: no values to aggregate", e.Op, e.Field)
}

// UnknownFieldError names a field that does not exist or cannot play the
// requested role.
type UnknownFieldError struct {
	Field string
	Role  string // "dimension" or "measure"
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown %s field %q", e.Role, e.Field)
}
