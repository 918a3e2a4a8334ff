// Package claims assembles the session claims released for a granted scope set.
package claims

import (
	"slices"

	"consentd/internal/consent/models"
)

// Subject is the consenting user as seen by the claims builder.
type Subject struct {
	ID         string
	Attributes map[string]any
}

type Builder struct {
	rules *RuleSet
}

func NewBuilder(rules *RuleSet) *Builder {
	if rules == nil {
		rules = Default()
	}
	return &Builder{rules: rules}
}

// Build releases the claims of every granted scope. A scope that was not
// granted contributes nothing; attributes the subject lacks are skipped. When
// two scopes release the same claim, the earlier rule wins.
func (b *Builder) Build(subject Subject, client models.Client, grantedScope []string) models.SessionClaims {
	out := models.SessionClaims{
		IDToken:     map[string]any{},
		AccessToken: map[string]any{},
	}
	for _, rule := range b.rules.rules {
		if !slices.Contains(grantedScope, rule.Scope) {
			continue
		}
		for _, m := range rule.Claims {
			if m.TrustedOnly && !client.Trusted {
				continue
			}
			value, ok := subject.Attributes[m.Attribute]
			if !ok || value == nil {
				continue
			}
			if m.Target.idToken() {
				setOnce(out.IDToken, m.Claim, value)
			}
			if m.Target.accessToken() && !m.Sensitive {
				setOnce(out.AccessToken, m.Claim, value)
			}
		}
	}
	return out
}

func setOnce(dst map[string]any, key string, value any) {
	if _, exists := dst[key]; !exists {
		dst[key] = value
	}
}
