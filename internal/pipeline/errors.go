package pipeline

import (
	"fmt"
	"strings"
)

// LoadError reports a source that could not be opened or parsed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SchemaError lists the expected columns missing from the source header.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: missing columns %s", e.Source, strings.Join(e.Missing, ", "))
}
