package report

import (
	"fmt"
	"os"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/provscan/provscan/internal/findings"
)

const toolInformationURI = "https://github.com/provscan/provscan"

// toSarifLevel maps violation severities to SARIF result levels.
func toSarifLevel(severity findings.Severity) string {
	switch severity {
	case findings.SeverityCritical, findings.SeverityHigh:
		return "error"
	case findings.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// SARIF converts the report to SARIF 2.1.0 so code-scanning UIs can ingest
// the violations directly.
func (r *Report) SARIF(toolVersion string) (*sarif.Report, error) {
	sarifReport, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("provscan", toolInformationURI)
	run.Tool.Driver.SemanticVersion = &toolVersion

	seen := make(map[string]bool)
	for _, v := range r.Violations {
		if !seen[v.RuleID] {
			run.AddRule(v.RuleID).
				WithDescription(v.RuleID).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: toSarifLevel(v.Severity),
				})
			seen[v.RuleID] = true
		}

		physical := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(v.File))
		if v.Line > 0 {
			physical = physical.WithRegion(sarif.NewRegion().WithStartLine(v.Line))
		}
		location := sarif.NewLocation().WithPhysicalLocation(physical)

		result := sarif.NewRuleResult(v.RuleID).
			WithMessage(sarif.NewTextMessage(v.Detail)).
			WithLevel(toSarifLevel(v.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	sarifReport.AddRun(run)

	return sarifReport, nil
}

// WriteSARIF writes the SARIF rendering of the report to path.
func (r *Report) WriteSARIF(path, toolVersion string) error {
	sarifReport, err := r.SARIF(toolVersion)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := sarifReport.PrettyWrite(file); err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	return nil
}
