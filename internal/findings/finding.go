package findings

import (
	"fmt"
	"sort"
)

// Severity classifies how serious a violation is. The zero value is invalid
// on purpose: a violation without a severity is malformed.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityWarning  Severity = "warning"
)

// severityRank orders severities from most to least serious for rendering.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityWarning:  4,
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Severities returns all known severities ordered from most to least serious.
func Severities() []Severity {
	all := make([]Severity, 0, len(severityRank))
	for s := range severityRank {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return severityRank[all[i]] < severityRank[all[j]]
	})
	return all
}

// Violation is a single rule match against a source location. Violations are
// append-only scan output: once produced they are never mutated.
type Violation struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Symbol   string   `json:"symbol,omitempty"`
	Detail   string   `json:"detail"`
}

// Location renders the file:line[:symbol] position of the violation.
func (v Violation) Location() string {
	loc := fmt.Sprintf("%s:%d", v.File, v.Line)
	if v.Symbol != "" {
		loc = fmt.Sprintf("%s (%s)", loc, v.Symbol)
	}
	return loc
}

// Key identifies a violation for multiset comparisons between scans.
func (v Violation) Key() string {
	return fmt.Sprintf("%s|%s|%s|%d|%s", v.RuleID, v.Severity, v.File, v.Line, v.Symbol)
}
