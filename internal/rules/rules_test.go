package rules

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provscan/provscan/internal/findings"
	"github.com/provscan/provscan/internal/source"
)

func fn(symbol, docstring, body string, arithmetic int) source.Unit {
	return source.Unit{
		File:       "model/energy.py",
		Symbol:     symbol,
		Kind:       source.UnitFunction,
		Line:       10,
		Docstring:  docstring,
		Body:       body,
		Arithmetic: arithmetic,
	}
}

func assign(symbol string, numeric, hasCall bool) source.Unit {
	return source.Unit{
		File:           "model/constants.py",
		Symbol:         symbol,
		Kind:           source.UnitAssignment,
		Line:           3,
		NumericLiteral: numeric,
		HasCall:        hasCall,
	}
}

func TestDocstringRule(t *testing.T) {
	set := NewDefaultSet()
	rule := set.Get("missing-docstring")
	require.NotNil(t, rule)
	idx := NewIndex(nil)

	v := rule.Evaluate(fn("compute_energy", "", "return 1", 0), idx)
	require.NotNil(t, v)
	assert.Equal(t, "missing-docstring", v.RuleID)
	assert.Equal(t, findings.SeverityMedium, v.Severity)
	assert.Equal(t, "compute_energy", v.Symbol)

	assert.Nil(t, rule.Evaluate(fn("compute_energy", "Computes energy.", "return 1", 0), idx))
	assert.Nil(t, rule.Evaluate(fn("test_compute_energy", "", "assert True", 0), idx))
	assert.Nil(t, rule.Evaluate(assign("G", true, false), idx))
}

func TestCitationRule(t *testing.T) {
	set := NewDefaultSet()
	rule := set.Get("missing-citation")
	require.NotNil(t, rule)
	idx := NewIndex(nil)

	cases := []struct {
		name      string
		docstring string
		matches   bool
	}{
		{"section mark", "Density per § 3.2 of the handbook.", false},
		{"equation number", "Implements Eq. 14.", false},
		{"appendix letter", "Calibration from Appendix B.", false},
		{"versioned document", "Follows the v2.1 methodology.", false},
		{"no reference", "Computes the density of the sample.", true},
		{"missing docstring", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := rule.Evaluate(fn("density", tc.docstring, "return m / V", 1), idx)
			if tc.matches {
				require.NotNil(t, v)
				assert.Equal(t, findings.SeverityHigh, v.Severity)
			} else {
				assert.Nil(t, v)
			}
		})
	}
}

func TestLiteralRule(t *testing.T) {
	set := NewDefaultSet()
	rule := set.Get("literal-constant")
	require.NotNil(t, rule)
	idx := NewIndex(nil)

	v := rule.Evaluate(assign("GRAVITY", true, false), idx)
	require.NotNil(t, v)
	assert.Equal(t, findings.SeverityCritical, v.Severity)

	// A derivation call on the right-hand side is fine.
	assert.Nil(t, rule.Evaluate(assign("GRAVITY", true, true), idx))
	// Non-numeric assignments are out of scope.
	assert.Nil(t, rule.Evaluate(assign("NAME", false, false), idx))
	// Functions never trigger the literal family.
	assert.Nil(t, rule.Evaluate(fn("compute", "doc", "return 9.81", 0), idx))
}

func TestProvenanceRule(t *testing.T) {
	set := NewDefaultSet()
	rule := set.Get("provenance-usage")
	require.NotNil(t, rule)
	idx := NewIndex(nil)

	heavy := "a = b * c + d * e - f / g + h * i + j * k"

	v := rule.Evaluate(fn("simulate", "doc", heavy, 9), idx)
	require.NotNil(t, v)
	assert.Contains(t, v.Detail, "9 arithmetic operations")

	// At or below the threshold nothing is required.
	assert.Nil(t, rule.Evaluate(fn("simulate", "doc", heavy, 5), idx))
	// Mentioning the recorder API anywhere in the body satisfies the rule.
	assert.Nil(t, rule.Evaluate(fn("simulate", "doc", "recorder.value('x', x)\n"+heavy, 9), idx))
	assert.Nil(t, rule.Evaluate(fn("simulate", "doc", "log_provenance(x)\n"+heavy, 9), idx))
}

func TestCoverageRule(t *testing.T) {
	set := NewDefaultSet()
	rule := set.Get("test-coverage")
	require.NotNil(t, rule)

	idx := NewIndex([]source.Unit{
		fn("test_density", "", "assert True", 0),
		fn("density", "doc", "return m / V", 1),
	})

	assert.Nil(t, rule.Evaluate(fn("density", "doc", "return m / V", 1), idx))

	v := rule.Evaluate(fn("pressure", "doc", "return F / A", 1), idx)
	require.NotNil(t, v)
	assert.Equal(t, findings.SeverityLow, v.Severity)
	assert.Contains(t, v.Detail, `"test_pressure"`)

	// Private helpers and test symbols themselves are exempt.
	assert.Nil(t, rule.Evaluate(fn("_normalize", "doc", "return x", 0), idx))
	assert.Nil(t, rule.Evaluate(fn("test_pressure", "", "assert True", 0), idx))
}

func TestIndexOnlyCountsFunctionSymbols(t *testing.T) {
	idx := NewIndex([]source.Unit{
		assign("test_density", true, false),
	})
	assert.False(t, idx.HasTestFor("density"))
}

func TestAllowListSuppressesMatches(t *testing.T) {
	rule := &Rule{
		ID:       "literal-constant",
		Family:   FamilyLiteral,
		Severity: findings.SeverityCritical,
		Allow:    map[string]struct{}{"SPEED_OF_LIGHT": {}},
	}
	set, err := NewSet([]*Rule{rule})
	require.NoError(t, err)
	idx := NewIndex(nil)

	assert.Nil(t, set.Get("literal-constant").Evaluate(assign("SPEED_OF_LIGHT", true, false), idx))
	assert.NotNil(t, set.Get("literal-constant").Evaluate(assign("PLANCK", true, false), idx))
}

func TestNewSetValidation(t *testing.T) {
	valid := func() *Rule {
		return &Rule{ID: "r", Family: FamilyDocstring, Severity: findings.SeverityLow}
	}

	t.Run("empty id", func(t *testing.T) {
		r := valid()
		r.ID = " "
		_, err := NewSet([]*Rule{r})
		assert.Error(t, err)
	})

	t.Run("invalid severity", func(t *testing.T) {
		r := valid()
		r.Severity = "urgent"
		_, err := NewSet([]*Rule{r})
		assert.Error(t, err)
	})

	t.Run("unknown family", func(t *testing.T) {
		r := valid()
		r.Family = "spelling"
		_, err := NewSet([]*Rule{r})
		assert.Error(t, err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := NewSet([]*Rule{valid(), valid()})
		assert.Error(t, err)
	})

	t.Run("pattern family without pattern", func(t *testing.T) {
		r := valid()
		r.Family = FamilyCitation
		_, err := NewSet([]*Rule{r})
		assert.Error(t, err)
	})

	t.Run("pattern family with pattern", func(t *testing.T) {
		r := valid()
		r.Family = FamilyCitation
		r.Pattern = regexp.MustCompile(`ref`)
		set, err := NewSet([]*Rule{r})
		require.NoError(t, err)
		assert.Equal(t, 1, set.Len())
	})
}

func TestDefaultSetContents(t *testing.T) {
	set := NewDefaultSet()
	assert.Equal(t, 5, set.Len())
	for _, id := range []string{"missing-docstring", "missing-citation", "literal-constant", "provenance-usage", "test-coverage"} {
		assert.NotNil(t, set.Get(id), id)
	}
}
