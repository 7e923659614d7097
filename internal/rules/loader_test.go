package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provscan/provscan/internal/findings"
	"github.com/provscan/provscan/internal/source"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewDefaultSet().Len(), set.Len())
}

func TestLoadOverridesBuiltin(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - id: missing-docstring
    severity: low
    allow:
      - main
  - id: provenance-usage
    threshold: 10
`)
	set, err := Load(path)
	require.NoError(t, err)

	doc := set.Get("missing-docstring")
	require.NotNil(t, doc)
	assert.Equal(t, findings.SeverityLow, doc.Severity)
	assert.Contains(t, doc.Allow, "main")

	prov := set.Get("provenance-usage")
	require.NotNil(t, prov)
	assert.Equal(t, 10, prov.Threshold)
	// The built-in pattern survives an override that does not set one.
	require.NotNil(t, prov.Pattern)
}

func TestLoadDisableDropsRule(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - id: test-coverage
    disable: true
`)
	set, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, set.Get("test-coverage"))
	assert.Equal(t, NewDefaultSet().Len()-1, set.Len())
}

func TestLoadDeclaresNewRule(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - id: cite-doi
    family: citation
    severity: medium
    pattern: 'doi:\S+'
`)
	set, err := Load(path)
	require.NoError(t, err)

	rule := set.Get("cite-doi")
	require.NotNil(t, rule)
	assert.Equal(t, FamilyCitation, rule.Family)

	idx := NewIndex(nil)
	unit := source.Unit{File: "a.py", Symbol: "f", Kind: source.UnitFunction, Docstring: "See doi:10.1000/xyz"}
	assert.Nil(t, rule.Evaluate(unit, idx))
	unit.Docstring = "no reference"
	assert.NotNil(t, rule.Evaluate(unit, idx))
}

func TestLoadRejectsBadFiles(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing id", "rules:\n  - severity: low\n"},
		{"duplicate entry", "rules:\n  - id: missing-docstring\n  - id: missing-docstring\n"},
		{"family change on builtin", "rules:\n  - id: missing-docstring\n    family: citation\n"},
		{"new rule without family", "rules:\n  - id: custom-rule\n    severity: low\n"},
		{"new rule declared disabled", "rules:\n  - id: custom-rule\n    family: docstring\n    severity: low\n    disable: true\n"},
		{"invalid severity", "rules:\n  - id: missing-docstring\n    severity: urgent\n"},
		{"invalid pattern", "rules:\n  - id: missing-citation\n    pattern: '['\n"},
		{"pattern family without pattern", "rules:\n  - id: custom-cite\n    family: citation\n    severity: low\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeRulesFile(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
