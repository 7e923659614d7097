package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provscan/provscan/internal/findings"
	"github.com/provscan/provscan/internal/rules"
)

func newTestScanner(t *testing.T, threads int) *Scanner {
	t.Helper()
	return New(rules.NewDefaultSet(), threads, hclog.NewNullLogger())
}

func writeTree(t *testing.T, tree map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range tree {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func violationKeys(violations []findings.Violation) []string {
	keys := make([]string, 0, len(violations))
	for _, v := range violations {
		keys = append(keys, v.Key())
	}
	sort.Strings(keys)
	return keys
}

const compliantSource = `def density(m, v):
    """Density per § 3.2."""
    return m / v


def test_density():
    assert density(2.0, 1.0) == 2.0
`

func TestScanEmptyDirectory(t *testing.T) {
	violations, err := newTestScanner(t, 1).Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestScanCompliantTree(t *testing.T) {
	root := writeTree(t, map[string]string{"model.py": compliantSource})
	violations, err := newTestScanner(t, 1).Scan(root)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestScanReportsViolationsWithLocations(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/model.py": `GRAVITY = 9.81


def pressure(f, a):
    return f / a
`,
	})

	violations, err := newTestScanner(t, 1).Scan(root)
	require.NoError(t, err)

	byRule := make(map[string][]findings.Violation)
	for _, v := range violations {
		byRule[v.RuleID] = append(byRule[v.RuleID], v)
		assert.Equal(t, "pkg/model.py", v.File)
	}

	require.Len(t, byRule["literal-constant"], 1)
	assert.Equal(t, 1, byRule["literal-constant"][0].Line)
	assert.Equal(t, "GRAVITY", byRule["literal-constant"][0].Symbol)

	require.Len(t, byRule["missing-docstring"], 1)
	assert.Equal(t, 4, byRule["missing-docstring"][0].Line)

	// An undocumented function fails the citation check as well.
	require.Len(t, byRule["missing-citation"], 1)
	require.Len(t, byRule["test-coverage"], 1)
}

func TestScanParseErrorDegradesToViolation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.py":   compliantSource,
		"broken.py": "def broken(:\n    pass\n",
	})

	violations, err := newTestScanner(t, 1).Scan(root)
	require.NoError(t, err)
	require.Len(t, violations, 1)

	v := violations[0]
	assert.Equal(t, rules.ParseErrorRuleID, v.RuleID)
	assert.Equal(t, findings.SeverityHigh, v.Severity)
	assert.Equal(t, "broken.py", v.File)
	assert.Equal(t, 0, v.Line)
}

func TestScanSkipsBinariesHiddenDirsAndOtherExtensions(t *testing.T) {
	root := writeTree(t, map[string]string{
		"model.py":            compliantSource,
		"notes.txt":           "GRAVITY = 9.81",
		".venv/lib/bad.py":    "GRAVITY = 9.81\n",
		"__pycache__/m.py":    "GRAVITY = 9.81\n",
		"model.cpython-39.so": "GRAVITY = 9.81\n",
	})
	binary := append([]byte("PK\x03\x04"), make([]byte, 64)...)
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundled.py"), binary, 0644))

	violations, err := newTestScanner(t, 1).Scan(root)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestScanCrossFileTestCoverage(t *testing.T) {
	root := writeTree(t, map[string]string{
		"model.py": `def density(m, v):
    """Density per § 3.2."""
    return m / v
`,
		"test_model.py": `def test_density():
    assert True
`,
	})

	violations, err := newTestScanner(t, 1).Scan(root)
	require.NoError(t, err)
	for _, v := range violations {
		assert.NotEqual(t, "test-coverage", v.RuleID)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py": "X = 1\n",
		"b.py": "def f():\n    return 2\n",
	})
	s := newTestScanner(t, 1)

	first, err := s.Scan(root)
	require.NoError(t, err)
	second, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, violationKeys(first), violationKeys(second))
}

func TestScanParallelMatchesSequential(t *testing.T) {
	tree := map[string]string{
		"broken.py": "def broken(:\n    pass\n",
	}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		tree[name+".py"] = "VALUE_" + name + " = 4.2\n\ndef func_" + name + "():\n    return 1\n"
	}
	root := writeTree(t, tree)

	sequential, err := newTestScanner(t, 1).Scan(root)
	require.NoError(t, err)
	parallel, err := newTestScanner(t, 4).Scan(root)
	require.NoError(t, err)

	require.NotEmpty(t, sequential)
	assert.Equal(t, violationKeys(sequential), violationKeys(parallel))
}

func TestScanRootMustBeDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"model.py": compliantSource})

	_, err := newTestScanner(t, 1).Scan(filepath.Join(root, "model.py"))
	assert.Error(t, err)

	_, err = newTestScanner(t, 1).Scan(filepath.Join(root, "missing"))
	assert.Error(t, err)
}
