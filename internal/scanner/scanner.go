package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/provscan/provscan/internal/findings"
	"github.com/provscan/provscan/internal/rules"
	"github.com/provscan/provscan/internal/source"
	"github.com/provscan/provscan/pkg/shared/files"
)

// Scanner evaluates a rule set against every source unit found under a root
// directory. The rule set is read-only after construction and may be shared
// across parallel scan workers without locking; parsers are not, so each
// worker builds its own extractors.
type Scanner struct {
	ruleSet       *rules.Set
	newExtractors func() []source.Extractor
	extensions    map[string]struct{}
	threads       int
	logger        hclog.Logger
}

// New creates a Scanner for the given rule set. threads bounds the number of
// files parsed concurrently; values below 1 mean sequential scanning.
func New(ruleSet *rules.Set, threads int, logger hclog.Logger) *Scanner {
	s := &Scanner{
		ruleSet: ruleSet,
		newExtractors: func() []source.Extractor {
			return []source.Extractor{source.NewPythonExtractor()}
		},
		extensions: make(map[string]struct{}),
		threads:    threads,
		logger:     logger,
	}
	for _, e := range s.newExtractors() {
		for _, ext := range e.Extensions() {
			s.extensions[ext] = struct{}{}
		}
	}
	return s
}

// fileResult is the outcome of parsing one file. Parsing is side-effect-free
// per file, so results merge after all workers complete.
type fileResult struct {
	path     string
	units    []source.Unit
	parseErr error
}

// Scan walks the tree rooted at root and returns every violation the rule
// set produces. A file that cannot be parsed yields a parse-error violation
// and the scan continues; an unreadable root is the only fatal error.
func (s *Scanner) Scan(root string) ([]findings.Violation, error) {
	expandedRoot, err := files.ExpandPath(root)
	if err != nil {
		return nil, fmt.Errorf("failed to expand root path %q: %w", root, err)
	}

	info, err := os.Stat(expandedRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access scan root %q: %w", expandedRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %q is not a directory", expandedRoot)
	}

	paths, err := s.collectFiles(expandedRoot)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("collected scan candidates", "root", expandedRoot, "files", len(paths))

	results := s.parseFiles(expandedRoot, paths)

	var allUnits []source.Unit
	for _, res := range results {
		allUnits = append(allUnits, res.units...)
	}
	idx := rules.NewIndex(allUnits)

	var violations []findings.Violation
	for _, res := range results {
		if res.parseErr != nil {
			s.logger.Warn("file could not be parsed", "file", res.path, "error", res.parseErr)
			violations = append(violations, findings.Violation{
				RuleID:   rules.ParseErrorRuleID,
				Severity: rules.ParseErrorSeverity,
				File:     res.path,
				Detail:   res.parseErr.Error(),
			})
			continue
		}
		for _, unit := range res.units {
			for _, rule := range s.ruleSet.Rules() {
				if v := rule.Evaluate(unit, idx); v != nil {
					violations = append(violations, *v)
				}
			}
		}
	}

	s.logger.Info("scan finished", "files", len(paths), "units", len(allUnits), "violations", len(violations))
	return violations, nil
}

// collectFiles gathers the files an extractor can handle. Hidden folders,
// caches and binary files are skipped silently.
func (s *Scanner) collectFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if info.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "__pycache__") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := s.extensions[filepath.Ext(name)]; !ok {
			return nil
		}
		isText, err := files.IsTextFile(path)
		if err != nil {
			s.logger.Warn("failed to sniff file, skipping", "file", path, "error", err)
			return nil
		}
		if !isText {
			s.logger.Debug("skipping binary file", "file", path)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// parseFiles extracts units from every file, using up to s.threads workers.
// Results come back ordered by path so sequential and parallel scans produce
// the same violation sequence.
func (s *Scanner) parseFiles(root string, paths []string) []fileResult {
	workers := s.threads
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers == 0 {
		return nil
	}

	jobs := make(chan string)
	resultsCh := make(chan fileResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			extractors := make(map[string]source.Extractor)
			for _, e := range s.newExtractors() {
				for _, ext := range e.Extensions() {
					extractors[ext] = e
				}
			}
			for path := range jobs {
				resultsCh <- parseFile(extractors, root, path)
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
	close(resultsCh)

	results := make([]fileResult, 0, len(paths))
	for res := range resultsCh {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].path < results[j].path
	})
	return results
}

func parseFile(extractors map[string]source.Extractor, root, path string) fileResult {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	content, err := os.ReadFile(path)
	if err != nil {
		return fileResult{path: rel, parseErr: fmt.Errorf("failed to read file: %w", err)}
	}

	extractor, ok := extractors[filepath.Ext(path)]
	if !ok {
		return fileResult{path: rel}
	}
	units, err := extractor.Extract(rel, content)
	if err != nil {
		return fileResult{path: rel, parseErr: err}
	}
	return fileResult{path: rel, units: units}
}
