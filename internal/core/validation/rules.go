// Package validation scores completed chunk sequences against a universal
// structural baseline plus named client rule sets.
package validation

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

// DefaultRuleSet is applied when a document declares no validation
// directive. It adds nothing beyond the universal checks.
const DefaultRuleSet = "default"

// RuleRegistry resolves client rule sets by name. Built-in sets are
// registered at construction; more can be loaded from a YAML file at
// startup. Reads are concurrency-safe after loading.
type RuleRegistry struct {
	mu   sync.RWMutex
	sets map[string]domain.ClientRuleSet
}

func NewRuleRegistry() *RuleRegistry {
	r := &RuleRegistry{sets: map[string]domain.ClientRuleSet{}}
	for _, rs := range builtinRuleSets() {
		r.Register(rs)
	}
	return r
}

func (r *RuleRegistry) Register(rs domain.ClientRuleSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[rs.Name] = rs
}

// Resolve returns the rule set for name, or a configuration error naming
// the offending identifier. An empty name resolves to the default set.
func (r *RuleRegistry) Resolve(name string) (domain.ClientRuleSet, error) {
	if name == "" {
		name = DefaultRuleSet
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.sets[name]
	if !ok {
		return domain.ClientRuleSet{}, domain.WrapError(domain.ErrUnknownRuleSet, "resolve rule set", errors.New(name))
	}
	return rs, nil
}

// ruleFile is the on-disk registry extension format.
type ruleFile struct {
	RuleSets []domain.ClientRuleSet `yaml:"rule_sets"`
}

// LoadFile registers every rule set declared in the YAML file at path.
// A set without a name is rejected rather than silently skipped.
func (r *RuleRegistry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rule file: %w", err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse rule file %s: %w", path, err)
	}
	for i, rs := range f.RuleSets {
		if rs.Name == "" {
			return fmt.Errorf("rule file %s: rule set %d has no name", path, i)
		}
		r.Register(rs)
	}
	return nil
}

func builtinRuleSets() []domain.ClientRuleSet {
	return []domain.ClientRuleSet{
		{
			Name: DefaultRuleSet,
		},
		{
			Name:           "ecommerce",
			RequiredFields: []string{"Name:", "Price:"},
			PricePattern:   `(?i)(R\$|US?\$|\$|USD|BRL|EUR)\s*\d`,
			MinChunkLength: 20,
		},
	}
}
