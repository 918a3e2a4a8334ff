package claims

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consentd/internal/consent/models"
)

var alice = Subject{
	ID: "user-1",
	Attributes: map[string]any{
		"name":           "Alice Example",
		"email":          "alice@example.com",
		"email_verified": true,
		"locale":         "en-GB",
		"roles":          []any{"admin"},
	},
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(Default())
	thirdParty := models.Client{ID: "client-a"}

	t.Run("only openid releases nothing", func(t *testing.T) {
		got := b.Build(alice, thirdParty, []string{"openid"})
		assert.Empty(t, got.IDToken)
		assert.Empty(t, got.AccessToken)
	})

	t.Run("email scope releases email claims into the id token only", func(t *testing.T) {
		got := b.Build(alice, thirdParty, []string{"openid", "email"})
		assert.Equal(t, map[string]any{"email": "alice@example.com", "email_verified": true}, got.IDToken)
		assert.Empty(t, got.AccessToken)
	})

	t.Run("missing attributes are skipped individually", func(t *testing.T) {
		got := b.Build(alice, thirdParty, []string{"profile"})
		assert.Equal(t, "Alice Example", got.IDToken["name"])
		assert.NotContains(t, got.IDToken, "given_name")
		assert.Equal(t, map[string]any{"locale": "en-GB"}, got.AccessToken)
	})

	t.Run("trusted-only claims need a trusted client", func(t *testing.T) {
		got := b.Build(alice, thirdParty, []string{"roles"})
		assert.Empty(t, got.AccessToken)

		got = b.Build(alice, models.Client{ID: "first-party", Trusted: true}, []string{"roles"})
		assert.Equal(t, []any{"admin"}, got.AccessToken["roles"])
	})

	t.Run("deterministic", func(t *testing.T) {
		scopes := []string{"openid", "profile", "email", "phone"}
		assert.Equal(t, b.Build(alice, thirdParty, scopes), b.Build(alice, thirdParty, scopes))
	})

	t.Run("no sensitive claim reaches the access token", func(t *testing.T) {
		got := b.Build(alice, models.Client{ID: "first-party", Trusted: true}, Default().Scopes())
		for _, forbidden := range []string{"name", "email", "given_name", "family_name", "phone_number", "address"} {
			assert.NotContains(t, got.AccessToken, forbidden)
		}
	})
}

func TestNewRuleSet_RejectsSensitiveAccessTokenClaims(t *testing.T) {
	_, err := NewRuleSet([]Rule{{
		Scope:  "email",
		Claims: []Mapping{{Claim: "email", Attribute: "email", Target: TargetBoth, Sensitive: true}},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensitive")
}

func TestNewRuleSet_Validation(t *testing.T) {
	cases := map[string][]Rule{
		"missing scope":   {{Claims: []Mapping{{Claim: "a", Attribute: "a", Target: TargetIDToken}}}},
		"duplicate scope": {{Scope: "x"}, {Scope: "x"}},
		"unknown target":  {{Scope: "x", Claims: []Mapping{{Claim: "a", Attribute: "a", Target: "userinfo"}}}},
		"missing claim":   {{Scope: "x", Claims: []Mapping{{Attribute: "a", Target: TargetIDToken}}}},
	}
	for name, rules := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRuleSet(rules)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("empty path uses built-in rules", func(t *testing.T) {
		rs, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, []string{"profile", "email", "phone", "address", "roles"}, rs.Scopes())
	})

	t.Run("reads yaml from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - scope: org
    claims:
      - claim: org_id
        attribute: organization
        target: access_token
`), 0o600))

		rs, err := LoadFile(path)
		require.NoError(t, err)
		got := NewBuilder(rs).Build(Subject{Attributes: map[string]any{"organization": "acme"}}, models.Client{}, []string{"org"})
		assert.Equal(t, map[string]any{"org_id": "acme"}, got.AccessToken)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
