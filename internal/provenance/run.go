package provenance

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Format selects an export rendering.
type Format string

const (
	// FormatStructured renders the run as a JSON array of events, stable
	// enough to diff two runs of the same computation.
	FormatStructured Format = "structured"
	// FormatText renders the run as one line per event.
	FormatText Format = "text"
)

// Run is one ordered sequence of provenance events belonging to a single
// computation invocation. A run is exclusively owned by the call stack that
// created it and must not be shared across goroutines; parallel branches of
// a computation each start their own run and merge afterwards.
type Run struct {
	ID        string
	Label     string
	Reference string

	recorder *Recorder
	logger   hclog.Logger
	events   []Event
}

func (r *Run) append(kind Kind, message, reference string, payload map[string]interface{}) {
	event := Event{
		Seq:       len(r.events),
		Kind:      kind,
		Message:   message,
		Reference: reference,
		Payload:   payload,
	}
	r.events = append(r.events, event)
	r.logger.Debug("provenance event", "run", r.Label, "seq", event.Seq, "kind", kind, "message", message)
}

// Info records a free-form informational message with an optional citation.
func (r *Run) Info(message string, reference ...string) error {
	ref, err := optionalReference(reference)
	if err != nil {
		return err
	}
	if message == "" {
		return &InvalidEventError{Field: "message", Reason: "must not be empty"}
	}
	r.append(KindInfo, message, ref, nil)
	return nil
}

// Step records the start of a computation step.
func (r *Run) Step(message string) error {
	if message == "" {
		return &InvalidEventError{Field: "message", Reason: "must not be empty"}
	}
	r.append(KindStep, message, "", nil)
	return nil
}

// Formula records the mathematical expression being evaluated together with
// the variable bindings in effect.
func (r *Run) Formula(expr string, variables map[string]float64) error {
	if expr == "" {
		return &InvalidEventError{Field: "expr", Reason: "must not be empty"}
	}
	payload := map[string]interface{}{"expr": expr}
	for name, value := range variables {
		if err := validNumber(name, value); err != nil {
			return err
		}
		payload[name] = value
	}
	r.append(KindFormula, expr, "", payload)
	return nil
}

// Value records a named intermediate value with an optional uncertainty.
func (r *Run) Value(name string, value float64, uncertainty ...float64) error {
	if name == "" {
		return &InvalidEventError{Field: "name", Reason: "must not be empty"}
	}
	if err := validNumber("value", value); err != nil {
		return err
	}
	payload := map[string]interface{}{"value": value}
	switch len(uncertainty) {
	case 0:
	case 1:
		if err := validNumber("uncertainty", uncertainty[0]); err != nil {
			return err
		}
		if uncertainty[0] < 0 {
			return &InvalidEventError{Field: "uncertainty", Reason: "must not be negative"}
		}
		payload["uncertainty"] = uncertainty[0]
	default:
		return &InvalidEventError{Field: "uncertainty", Reason: "accepts at most one value"}
	}
	r.append(KindValue, name, "", payload)
	return nil
}

// Validate records the outcome of an invariant check.
func (r *Run) Validate(check string, passed bool, detail ...string) error {
	if check == "" {
		return &InvalidEventError{Field: "check", Reason: "must not be empty"}
	}
	payload := map[string]interface{}{"passed": passed}
	if len(detail) > 1 {
		return &InvalidEventError{Field: "detail", Reason: "accepts at most one value"}
	}
	if len(detail) == 1 && detail[0] != "" {
		payload["detail"] = detail[0]
	}
	r.append(KindValidation, check, "", payload)
	return nil
}

// Result records the final value of the computation along with its named
// components.
func (r *Run) Result(name string, value float64, components map[string]float64) error {
	if name == "" {
		return &InvalidEventError{Field: "name", Reason: "must not be empty"}
	}
	if err := validNumber("value", value); err != nil {
		return err
	}
	payload := map[string]interface{}{"value": value}
	for comp, v := range components {
		if err := validNumber(comp, v); err != nil {
			return err
		}
		payload[comp] = v
	}
	r.append(KindResult, name, "", payload)
	return nil
}

// Events returns a copy of the accumulated event sequence.
func (r *Run) Events() []Event {
	return append([]Event(nil), r.events...)
}

// Len returns the number of recorded events.
func (r *Run) Len() int {
	return len(r.events)
}

// Export renders the full ordered event sequence. It is a pure function of
// the accumulated events: it does not mutate state and repeated calls return
// identical output.
func (r *Run) Export(format Format) ([]byte, error) {
	switch format {
	case FormatStructured:
		data, err := json.MarshalIndent(r.events, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("error marshaling provenance events: %w", err)
		}
		return data, nil
	case FormatText:
		var b strings.Builder
		fmt.Fprintf(&b, "run %s (%s)\n", r.Label, r.ID)
		for _, event := range r.events {
			fmt.Fprintf(&b, "[%d] %s: %s", event.Seq, event.Kind, event.Message)
			if event.Reference != "" {
				fmt.Fprintf(&b, " (%s)", event.Reference)
			}
			for _, key := range sortedPayloadKeys(event.Payload) {
				fmt.Fprintf(&b, " %s=%v", key, event.Payload[key])
			}
			b.WriteString("\n")
		}
		return []byte(b.String()), nil
	default:
		return nil, &InvalidEventError{Field: "format", Reason: fmt.Sprintf("unknown export format %q", format)}
	}
}

// ExportToFile writes the rendered run to path. IO failures come back as an
// ExportError; the in-memory events survive so the caller may retry.
func (r *Run) ExportToFile(path string, format Format) error {
	data, err := r.Export(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// Close finalizes the run, removing it from the recorder's registry of open
// runs. Events stay readable after Close.
func (r *Run) Close() {
	if r.recorder != nil {
		r.recorder.finish(r)
	}
}

func validNumber(field string, value float64) error {
	if math.IsNaN(value) {
		return &InvalidEventError{Field: field, Reason: "must not be NaN"}
	}
	if math.IsInf(value, 0) {
		return &InvalidEventError{Field: field, Reason: "must not be infinite"}
	}
	return nil
}

func optionalReference(reference []string) (string, error) {
	switch len(reference) {
	case 0:
		return "", nil
	case 1:
		return reference[0], nil
	default:
		return "", &InvalidEventError{Field: "reference", Reason: "accepts at most one value"}
	}
}

func sortedPayloadKeys(payload map[string]interface{}) []string {
	if len(payload) == 0 {
		return nil
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	// Keep output deterministic so two runs diff cleanly.
	sort.Strings(keys)
	return keys
}
