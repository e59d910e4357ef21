package llm

import (
	"errors"
	"fmt"
)

// ErrNoProviders means no generation backend has credentials
// configured. Construction fails fast; the run never starts.
var ErrNoProviders = errors.New("no LLM provider configured")

// DecodeError is returned by GenerateJSON when the model's output
// cannot be parsed as JSON. Payload carries the cleaned response text
// for diagnosis. It is never auto-retried.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON from LLM response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
