package provenance

import (
	"fmt"
)

// Kind classifies a provenance event.
type Kind string

const (
	KindInfo       Kind = "info"
	KindStep       Kind = "step"
	KindFormula    Kind = "formula"
	KindValue      Kind = "value"
	KindValidation Kind = "validation"
	KindResult     Kind = "result"
)

// Event is one immutable record emitted during a computation step. Ordering
// is carried by the sequence index; wall-clock time is irrelevant for
// diffing two runs of the same computation.
type Event struct {
	Seq       int                    `json:"seq"`
	Kind      Kind                   `json:"kind"`
	Message   string                 `json:"message"`
	Reference string                 `json:"reference,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// InvalidEventError reports a malformed call into the recorder, naming the
// offending field. It indicates a bug in the instrumented computation, not a
// property of the data being audited.
type InvalidEventError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid provenance event: field %q %s", e.Field, e.Reason)
}

// ExportError reports that recorder output could not be written. The
// in-memory events are preserved, so the caller may retry the export.
type ExportError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export provenance run to %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExportError) Unwrap() error {
	return e.Err
}
