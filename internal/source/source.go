package source

import (
	"path/filepath"
	"strings"
)

// UnitKind distinguishes the kinds of source units rules can match against.
type UnitKind string

const (
	// UnitFunction is a function or method definition plus its docstring.
	UnitFunction UnitKind = "function"
	// UnitAssignment is a module-level assignment statement.
	UnitAssignment UnitKind = "assignment"
)

// Unit is one parsed source unit. Units are immutable once extracted; rules
// evaluate against them independently, so a Unit carries everything a
// predicate may need and no parser state.
type Unit struct {
	File    string
	Symbol  string
	Kind    UnitKind
	Line    int
	EndLine int

	// Docstring is the attached documentation, empty when absent.
	Docstring string
	// Body is the raw source text of the unit.
	Body string

	// Arithmetic counts binary arithmetic operations in a function body.
	Arithmetic int
	// NumericLiteral is set on assignment units whose right-hand side is a
	// pure numeric literal.
	NumericLiteral bool
	// HasCall is set on assignment units whose right-hand side contains a
	// call expression (a derivation rather than a hardcoded value).
	HasCall bool
}

// IsTest reports whether the unit is itself a test symbol, detected by the
// usual naming conventions (test_ prefixed symbols or test files).
func (u Unit) IsTest() bool {
	if strings.HasPrefix(u.Symbol, "test_") {
		return true
	}
	base := filepath.Base(u.File)
	return strings.HasPrefix(base, "test_") || strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), "_test")
}

// Extractor parses one language into source units.
type Extractor interface {
	// Language returns a short language identifier, e.g. "python".
	Language() string
	// Extensions returns the file extensions the extractor handles.
	Extensions() []string
	// Extract parses content and returns its source units. A returned error
	// means the file could not be parsed at all; the scanner degrades it to
	// a parse-error violation and continues.
	Extract(path string, content []byte) ([]Unit, error)
}
