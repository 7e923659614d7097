package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/provscan/provscan/internal/findings"
	"github.com/provscan/provscan/internal/source"
)

// ParseErrorRuleID is the reserved rule id used for files that could not be
// parsed. The scanner emits these directly; parse failures degrade to a
// violation instead of aborting the scan.
const ParseErrorRuleID = "parse-error"

// ParseErrorSeverity is the severity of parse-error violations.
const ParseErrorSeverity = findings.SeverityHigh

// Family names the built-in rule families. A configured rule binds an id and
// severity to one family; the family supplies the predicate.
type Family string

const (
	FamilyDocstring  Family = "docstring"
	FamilyCitation   Family = "citation"
	FamilyLiteral    Family = "literal"
	FamilyProvenance Family = "provenance"
	FamilyCoverage   Family = "coverage"
)

// matcher is a pure predicate over a source unit. It reports whether the
// rule matched and a human-readable detail for the violation.
type matcher func(r *Rule, unit source.Unit, idx *Index) (bool, string)

var familyMatchers = map[Family]matcher{
	FamilyDocstring:  matchDocstring,
	FamilyCitation:   matchCitation,
	FamilyLiteral:    matchLiteral,
	FamilyProvenance: matchProvenance,
	FamilyCoverage:   matchCoverage,
}

// Rule is one named compliance check. Rules are static configuration:
// loaded once at scanner startup and immutable during a scan, so a rule set
// may be shared across parallel scan workers without locking.
type Rule struct {
	ID        string
	Family    Family
	Severity  findings.Severity
	Pattern   *regexp.Regexp
	Threshold int
	Allow     map[string]struct{}

	match matcher
}

// Evaluate runs the rule against a single source unit. Evaluation is pure
// and order-independent: the result depends only on the rule configuration,
// the unit and the read-only index.
func (r *Rule) Evaluate(unit source.Unit, idx *Index) *findings.Violation {
	matched, detail := r.match(r, unit, idx)
	if !matched {
		return nil
	}
	return &findings.Violation{
		RuleID:   r.ID,
		Severity: r.Severity,
		File:     unit.File,
		Line:     unit.Line,
		Symbol:   unit.Symbol,
		Detail:   detail,
	}
}

func (r *Rule) allowed(symbol string) bool {
	_, ok := r.Allow[symbol]
	return ok
}

// Set is an immutable collection of rules keyed by id.
type Set struct {
	rules []*Rule
	byID  map[string]*Rule
}

// NewSet builds a Set from the given rules, rejecting duplicates and rules
// referencing unknown families.
func NewSet(rules []*Rule) (*Set, error) {
	set := &Set{byID: make(map[string]*Rule, len(rules))}
	for _, rule := range rules {
		if err := validateRule(rule); err != nil {
			return nil, err
		}
		if _, exists := set.byID[rule.ID]; exists {
			return nil, fmt.Errorf("duplicate rule id %q", rule.ID)
		}
		rule.match = familyMatchers[rule.Family]
		set.rules = append(set.rules, rule)
		set.byID[rule.ID] = rule
	}
	return set, nil
}

func validateRule(rule *Rule) error {
	if strings.TrimSpace(rule.ID) == "" {
		return fmt.Errorf("rule with empty id")
	}
	if !rule.Severity.Valid() {
		return fmt.Errorf("rule %q has invalid severity %q", rule.ID, rule.Severity)
	}
	if _, ok := familyMatchers[rule.Family]; !ok {
		return fmt.Errorf("rule %q references unknown family %q", rule.ID, rule.Family)
	}
	if (rule.Family == FamilyCitation || rule.Family == FamilyProvenance) && rule.Pattern == nil {
		return fmt.Errorf("rule %q of family %q requires a pattern", rule.ID, rule.Family)
	}
	return nil
}

// Rules returns the rules in declaration order.
func (s *Set) Rules() []*Rule {
	return s.rules
}

// Get returns the rule with the given id, or nil.
func (s *Set) Get(id string) *Rule {
	return s.byID[id]
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}

// Index is read-only cross-file context handed to rule evaluation. It is
// built once per scan before rules run, so evaluation stays pure and
// order-independent.
type Index struct {
	testSymbols map[string]struct{}
}

// NewIndex builds the index over all extracted units.
func NewIndex(units []source.Unit) *Index {
	idx := &Index{testSymbols: make(map[string]struct{})}
	for _, unit := range units {
		if unit.Kind == source.UnitFunction && strings.HasPrefix(unit.Symbol, "test_") {
			idx.testSymbols[unit.Symbol] = struct{}{}
		}
	}
	return idx
}

// HasTestFor reports whether a test symbol exists for the given symbol name,
// detected by the test_<symbol> naming convention.
func (ix *Index) HasTestFor(symbol string) bool {
	_, ok := ix.testSymbols["test_"+symbol]
	return ok
}
