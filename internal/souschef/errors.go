package souschef

import (
	"fmt"
	"strings"
)

// ValidationError means the request was missing required parameters. The
// caller must fill them in before resubmitting; no LLM call was made.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// TransportError means the LLM boundary call did not complete. Retryable by
// re-invoking the operation; the pipeline never retries on its own.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm call failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means the model's reply could not be reduced to a valid recipe.
// Raw preserves the full reply text for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse model reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
