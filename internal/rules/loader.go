package rules

import (
	"fmt"
	"regexp"

	"github.com/provscan/provscan/internal/findings"
	"github.com/provscan/provscan/pkg/shared/config"
)

// ruleConfig is one entry in the rules YAML file. Entries either override a
// built-in rule by id or declare a new rule bound to one of the families.
type ruleConfig struct {
	ID        string   `yaml:"id"`
	Family    string   `yaml:"family,omitempty"`
	Severity  string   `yaml:"severity,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	Threshold *int     `yaml:"threshold,omitempty"`
	Allow     []string `yaml:"allow,omitempty"`
	Disable   bool     `yaml:"disable,omitempty"`
}

type rulesFile struct {
	Rules []ruleConfig `yaml:"rules"`
}

// Load builds the effective rule set: the built-in defaults with the
// overrides from the YAML file at path applied. An empty path returns the
// defaults unchanged.
func Load(path string) (*Set, error) {
	defaults := NewDefaultSet()
	if path == "" {
		return defaults, nil
	}

	var file rulesFile
	if err := config.LoadYAML(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load rules file %q: %w", path, err)
	}

	merged := make([]*Rule, 0, defaults.Len())
	overrides := make(map[string]ruleConfig, len(file.Rules))
	for _, rc := range file.Rules {
		if rc.ID == "" {
			return nil, fmt.Errorf("rules file %q contains a rule without an id", path)
		}
		if _, dup := overrides[rc.ID]; dup {
			return nil, fmt.Errorf("rules file %q configures rule %q twice", path, rc.ID)
		}
		overrides[rc.ID] = rc
	}

	for _, rule := range defaults.Rules() {
		rc, ok := overrides[rule.ID]
		if !ok {
			merged = append(merged, rule)
			continue
		}
		delete(overrides, rule.ID)
		if rc.Disable {
			continue
		}
		applied, err := applyOverride(rule, rc)
		if err != nil {
			return nil, fmt.Errorf("rules file %q: %w", path, err)
		}
		merged = append(merged, applied)
	}

	// Remaining entries declare new rules; they must name a family.
	for _, rc := range file.Rules {
		if _, stillPending := overrides[rc.ID]; !stillPending {
			continue
		}
		rule, err := newRuleFromConfig(rc)
		if err != nil {
			return nil, fmt.Errorf("rules file %q: %w", path, err)
		}
		merged = append(merged, rule)
	}

	return NewSet(merged)
}

func applyOverride(base *Rule, rc ruleConfig) (*Rule, error) {
	rule := &Rule{
		ID:        base.ID,
		Family:    base.Family,
		Severity:  base.Severity,
		Pattern:   base.Pattern,
		Threshold: base.Threshold,
		Allow:     allowSet(rc.Allow),
	}

	if rc.Family != "" && Family(rc.Family) != base.Family {
		return nil, fmt.Errorf("rule %q cannot change family from %q to %q", base.ID, base.Family, rc.Family)
	}
	if rc.Severity != "" {
		sev := findings.Severity(rc.Severity)
		if !sev.Valid() {
			return nil, fmt.Errorf("rule %q has invalid severity %q", rc.ID, rc.Severity)
		}
		rule.Severity = sev
	}
	if rc.Pattern != "" {
		pattern, err := regexp.Compile(rc.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q has invalid pattern: %w", rc.ID, err)
		}
		rule.Pattern = pattern
	}
	if rc.Threshold != nil {
		rule.Threshold = *rc.Threshold
	}

	return rule, nil
}

func newRuleFromConfig(rc ruleConfig) (*Rule, error) {
	if rc.Family == "" {
		return nil, fmt.Errorf("rule %q is not a built-in and must name a family", rc.ID)
	}
	if rc.Disable {
		return nil, fmt.Errorf("rule %q is declared and disabled at the same time", rc.ID)
	}

	rule := &Rule{
		ID:       rc.ID,
		Family:   Family(rc.Family),
		Severity: findings.Severity(rc.Severity),
		Allow:    allowSet(rc.Allow),
	}
	if rc.Pattern != "" {
		pattern, err := regexp.Compile(rc.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q has invalid pattern: %w", rc.ID, err)
		}
		rule.Pattern = pattern
	}
	if rc.Threshold != nil {
		rule.Threshold = *rc.Threshold
	}

	return rule, nil
}

func allowSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	allow := make(map[string]struct{}, len(names))
	for _, name := range names {
		allow[name] = struct{}{}
	}
	return allow
}
