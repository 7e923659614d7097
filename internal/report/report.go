package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/provscan/provscan/internal/findings"
	"github.com/provscan/provscan/internal/gitmeta"
)

// Verdict is the overall outcome of one scan.
type Verdict string

const (
	VerdictApproved    Verdict = "approved"
	VerdictConditional Verdict = "conditional"
	VerdictRejected    Verdict = "rejected"
)

// InvalidViolationError reports a malformed violation passed to Aggregate.
// Aggregation of the remaining well-formed violations is unaffected if the
// caller filters and retries.
type InvalidViolationError struct {
	Index int
	Field string
}

// Error implements the error interface.
func (e *InvalidViolationError) Error() string {
	return fmt.Sprintf("violation at index %d has missing or invalid %s", e.Index, e.Field)
}

// Options configures verdict derivation.
type Options struct {
	// HighThreshold is the number of high-severity violations tolerated
	// before the verdict degrades to conditional.
	HighThreshold int
}

// Report aggregates all violations of one scan invocation. It is immutable
// once built; its severity counts always equal the multiset counts of the
// contained violations, and the verdict is a pure function of the counts.
type Report struct {
	ID         string               `json:"id"`
	CreatedAt  time.Time            `json:"created_at"`
	Root       string               `json:"root,omitempty"`
	Repository *gitmeta.Metadata    `json:"repository,omitempty"`
	Verdict    Verdict              `json:"verdict"`
	Counts     map[string]int       `json:"counts"`
	Violations []findings.Violation `json:"violations"`
}

// Aggregate counts violations per severity and derives the verdict. It never
// fails on well-formed input; a violation without a rule id or with an
// unknown severity is rejected with an InvalidViolationError.
func Aggregate(violations []findings.Violation, opts Options) (*Report, error) {
	counts := make(map[string]int, len(findings.Severities()))
	for i, v := range violations {
		if strings.TrimSpace(v.RuleID) == "" {
			return nil, &InvalidViolationError{Index: i, Field: "rule_id"}
		}
		if !v.Severity.Valid() {
			return nil, &InvalidViolationError{Index: i, Field: "severity"}
		}
		counts[string(v.Severity)]++
	}

	report := &Report{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Verdict:    deriveVerdict(counts, opts),
		Counts:     counts,
		Violations: append([]findings.Violation(nil), violations...),
	}
	return report, nil
}

// deriveVerdict maps severity counts to a verdict. The mapping is total and
// depends only on the counts: any critical rejects, more high findings than
// the threshold makes the result conditional, anything else is approved.
func deriveVerdict(counts map[string]int, opts Options) Verdict {
	if counts[string(findings.SeverityCritical)] > 0 {
		return VerdictRejected
	}
	if counts[string(findings.SeverityHigh)] > opts.HighThreshold {
		return VerdictConditional
	}
	return VerdictApproved
}

// Count returns the number of violations with the given severity.
func (r *Report) Count(severity findings.Severity) int {
	return r.Counts[string(severity)]
}

// Total returns the total number of violations.
func (r *Report) Total() int {
	return len(r.Violations)
}

// JSON renders the full report as indented JSON. The structured form
// preserves every violation with its location and detail and round-trips
// through Load.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling report: %w", err)
	}
	return data, nil
}

// Text renders the short human-readable summary: verdict, per-severity
// counts and the most serious violations. Suitable for a CI job log or a
// pull request comment.
func (r *Report) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Compliance verdict: %s\n", strings.ToUpper(string(r.Verdict)))
	fmt.Fprintf(&b, "Total violations: %d\n", r.Total())
	for _, severity := range findings.Severities() {
		fmt.Fprintf(&b, "  %-8s %d\n", severity, r.Count(severity))
	}

	if r.Repository != nil && r.Repository.CommitHash != nil {
		fmt.Fprintf(&b, "Scanned commit: %s\n", *r.Repository.CommitHash)
	}

	worst := r.worstViolations(10)
	if len(worst) > 0 {
		b.WriteString("Top violations:\n")
		for _, v := range worst {
			fmt.Fprintf(&b, "  [%s] %s %s: %s\n", v.Severity, v.RuleID, v.Location(), v.Detail)
		}
	}

	return b.String()
}

// worstViolations returns up to n violations ordered by severity, then by
// location, so the summary stays deterministic across runs.
func (r *Report) worstViolations(n int) []findings.Violation {
	rank := make(map[findings.Severity]int)
	for i, s := range findings.Severities() {
		rank[s] = i
	}

	sorted := append([]findings.Violation(nil), r.Violations...)
	sort.Slice(sorted, func(i, j int) bool {
		if rank[sorted[i].Severity] != rank[sorted[j].Severity] {
			return rank[sorted[i].Severity] < rank[sorted[j].Severity]
		}
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		return sorted[i].Line < sorted[j].Line
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ExitCode maps a verdict to a process exit code. Approved exits 0;
// rejected exits 2. Conditional exits 0 unless strict mode is requested, in
// which case it exits 3. Exit code 1 stays reserved for internal tool
// failures so CI can tell a crash from a compliance rejection.
func ExitCode(verdict Verdict, strict bool) int {
	switch verdict {
	case VerdictRejected:
		return 2
	case VerdictConditional:
		if strict {
			return 3
		}
		return 0
	default:
		return 0
	}
}

// Load reads a structured report back from disk.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %q: %w", path, err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %q: %w", path, err)
	}
	return &report, nil
}
