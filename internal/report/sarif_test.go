package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provscan/provscan/internal/findings"
)

func TestSARIFLevels(t *testing.T) {
	assert.Equal(t, "error", toSarifLevel(findings.SeverityCritical))
	assert.Equal(t, "error", toSarifLevel(findings.SeverityHigh))
	assert.Equal(t, "warning", toSarifLevel(findings.SeverityMedium))
	assert.Equal(t, "note", toSarifLevel(findings.SeverityLow))
	assert.Equal(t, "note", toSarifLevel(findings.SeverityWarning))
}

func TestSARIFConversion(t *testing.T) {
	rep, err := Aggregate([]findings.Violation{
		v("literal-constant", findings.SeverityCritical),
		v("literal-constant", findings.SeverityCritical),
		{
			RuleID:   "parse-error",
			Severity: findings.SeverityHigh,
			File:     "broken.py",
			Detail:   "syntax error in broken.py",
		},
	}, Options{})
	require.NoError(t, err)

	sarifReport, err := rep.SARIF("1.2.3")
	require.NoError(t, err)
	require.Len(t, sarifReport.Runs, 1)

	run := sarifReport.Runs[0]
	assert.Equal(t, "provscan", run.Tool.Driver.Name)
	// Rules are deduplicated, results are not.
	assert.Len(t, run.Tool.Driver.Rules, 2)
	require.Len(t, run.Results, 3)

	// Violations without a line carry no region at all.
	parseResult := run.Results[2]
	require.Len(t, parseResult.Locations, 1)
	assert.Nil(t, parseResult.Locations[0].PhysicalLocation.Region)
}

func TestWriteSARIF(t *testing.T) {
	rep, err := Aggregate([]findings.Violation{
		v("missing-citation", findings.SeverityHigh),
	}, Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.sarif")
	require.NoError(t, rep.WriteSARIF(path, "1.2.3"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"2.1.0"`)
	assert.Contains(t, content, "missing-citation")
	assert.Contains(t, content, "model.py")
}
