package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/provscan/provscan/internal/findings"
	"github.com/provscan/provscan/internal/source"
)

// Default patterns. The citation pattern accepts the usual manuscript
// reference notations: section marks, equation numbers, appendix letters and
// versioned document identifiers.
var (
	defaultCitationPattern   = regexp.MustCompile(`(§\s*\d+(\.\d+)?)|(Eq\.\s*\d+)|(Appendix\s+[A-Z])|(v\d+\.\d+)`)
	defaultProvenancePattern = regexp.MustCompile(`(?i)(provenance|recorder|transparency)`)
)

// defaultProvenanceThreshold is the number of arithmetic operations a
// function may perform before it must record provenance.
const defaultProvenanceThreshold = 5

// NewDefaultSet returns the built-in rule set. Every aspect of it can be
// overridden by a rules file, see Load.
func NewDefaultSet() *Set {
	set, err := NewSet([]*Rule{
		{
			ID:       "missing-docstring",
			Family:   FamilyDocstring,
			Severity: findings.SeverityMedium,
		},
		{
			ID:       "missing-citation",
			Family:   FamilyCitation,
			Severity: findings.SeverityHigh,
			Pattern:  defaultCitationPattern,
		},
		{
			ID:       "literal-constant",
			Family:   FamilyLiteral,
			Severity: findings.SeverityCritical,
		},
		{
			ID:        "provenance-usage",
			Family:    FamilyProvenance,
			Severity:  findings.SeverityHigh,
			Pattern:   defaultProvenancePattern,
			Threshold: defaultProvenanceThreshold,
		},
		{
			ID:       "test-coverage",
			Family:   FamilyCoverage,
			Severity: findings.SeverityLow,
		},
	})
	if err != nil {
		// The built-in set is fixed at compile time; a construction error is
		// a bug, not an input problem.
		panic(err)
	}
	return set
}

// matchDocstring flags functions that carry no documentation at all.
func matchDocstring(r *Rule, unit source.Unit, idx *Index) (bool, string) {
	if unit.Kind != source.UnitFunction || unit.IsTest() || r.allowed(unit.Symbol) {
		return false, ""
	}
	if unit.Docstring != "" {
		return false, ""
	}
	return true, fmt.Sprintf("function %q has no docstring", unit.Symbol)
}

// matchCitation flags functions whose docstring lacks a reference matching
// the configured citation pattern. A missing docstring fails the check too:
// an undocumented function cannot cite anything.
func matchCitation(r *Rule, unit source.Unit, idx *Index) (bool, string) {
	if unit.Kind != source.UnitFunction || unit.IsTest() || r.allowed(unit.Symbol) {
		return false, ""
	}
	if r.Pattern.MatchString(unit.Docstring) {
		return false, ""
	}
	return true, fmt.Sprintf("function %q lacks a reference matching %q in its docstring", unit.Symbol, r.Pattern.String())
}

// matchLiteral flags module-level assignments of bare numeric literals with
// no derivation call on the right-hand side.
func matchLiteral(r *Rule, unit source.Unit, idx *Index) (bool, string) {
	if unit.Kind != source.UnitAssignment || r.allowed(unit.Symbol) {
		return false, ""
	}
	if !unit.NumericLiteral || unit.HasCall {
		return false, ""
	}
	return true, fmt.Sprintf("module-level constant %q is a bare numeric literal with no derivation", unit.Symbol)
}

// matchProvenance flags computation-heavy functions that never touch the
// provenance recorder API.
func matchProvenance(r *Rule, unit source.Unit, idx *Index) (bool, string) {
	if unit.Kind != source.UnitFunction || unit.IsTest() || r.allowed(unit.Symbol) {
		return false, ""
	}
	if unit.Arithmetic <= r.Threshold {
		return false, ""
	}
	if r.Pattern.MatchString(unit.Body) {
		return false, ""
	}
	return true, fmt.Sprintf("function %q performs %d arithmetic operations without recording provenance", unit.Symbol, unit.Arithmetic)
}

// matchCoverage flags public functions with no corresponding test symbol.
func matchCoverage(r *Rule, unit source.Unit, idx *Index) (bool, string) {
	if unit.Kind != source.UnitFunction || unit.IsTest() || r.allowed(unit.Symbol) {
		return false, ""
	}
	if strings.HasPrefix(unit.Symbol, "_") {
		return false, ""
	}
	if idx.HasTestFor(unit.Symbol) {
		return false, ""
	}
	return true, fmt.Sprintf("no test symbol %q found for function %q", "test_"+unit.Symbol, unit.Symbol)
}
