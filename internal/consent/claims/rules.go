package claims

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// Target selects which token a claim lands in.
type Target string

const (
	TargetIDToken     Target = "id_token"
	TargetAccessToken Target = "access_token"
	TargetBoth        Target = "both"
)

func (t Target) idToken() bool     { return t == TargetIDToken || t == TargetBoth }
func (t Target) accessToken() bool { return t == TargetAccessToken || t == TargetBoth }

// Mapping copies one subject attribute into one claim.
type Mapping struct {
	Claim     string `yaml:"claim"`
	Attribute string `yaml:"attribute"`
	Target    Target `yaml:"target"`
	// Sensitive marks personal data; it may never reach the access token.
	Sensitive   bool `yaml:"sensitive"`
	TrustedOnly bool `yaml:"trusted_only"`
}

// Rule binds a scope token to the claims it releases.
type Rule struct {
	Scope  string    `yaml:"scope"`
	Claims []Mapping `yaml:"claims"`
}

// RuleSet is a validated, ordered list of rules.
type RuleSet struct {
	rules []Rule
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// NewRuleSet validates rules. Sensitive mappings that target the access
// token are refused.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.Scope == "" {
			return nil, fmt.Errorf("rule %d: scope is required", i)
		}
		if seen[r.Scope] {
			return nil, fmt.Errorf("rule %q: duplicate scope", r.Scope)
		}
		seen[r.Scope] = true
		for j, m := range r.Claims {
			if m.Claim == "" || m.Attribute == "" {
				return nil, fmt.Errorf("rule %q mapping %d: claim and attribute are required", r.Scope, j)
			}
			switch m.Target {
			case TargetIDToken, TargetAccessToken, TargetBoth:
			default:
				return nil, fmt.Errorf("rule %q claim %q: unknown target %q", r.Scope, m.Claim, m.Target)
			}
			if m.Sensitive && m.Target.accessToken() {
				return nil, fmt.Errorf("rule %q claim %q: sensitive claims cannot target the access token", r.Scope, m.Claim)
			}
		}
	}
	return &RuleSet{rules: rules}, nil
}

// Parse decodes a YAML rule document.
func Parse(data []byte) (*RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode claim rules: %w", err)
	}
	return NewRuleSet(f.Rules)
}

// LoadFile reads rules from path, or returns the built-in rules when path is empty.
func LoadFile(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claim rules: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in rules.
func Default() *RuleSet {
	rs, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("built-in claim rules are invalid: %v", err))
	}
	return rs
}

// Scopes lists the scopes that release claims, in rule order.
func (rs *RuleSet) Scopes() []string {
	out := make([]string, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, r.Scope)
	}
	return out
}
