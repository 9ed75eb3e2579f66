package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/pkg/errorbank"
)

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Minute
	cfg.Auth.Users = []config.Credential{
		{Username: "customer", Password: "iamcustomer", Role: "customer"},
		{Username: "admin", Password: "iamadmin", Role: "admin"},
	}
	return cfg
}

func TestAuthenticate(t *testing.T) {
	provider := NewConfigProvider(testConfig())

	identity, err := provider.Authenticate("admin", "iamadmin", "admin")
	require.NoError(t, err)
	assert.Equal(t, Identity{Username: "admin", Role: "admin"}, identity)

	_, err = provider.Authenticate("admin", "wrong", "admin")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())

	_, err = provider.Authenticate("admin", "iamadmin", "customer")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())

	_, err = provider.Authenticate("ghost", "whatever", "customer")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager(testConfig())

	raw, err := tokens.Issue(Identity{Username: "customer", Role: "customer"})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	identity, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "customer", identity.Username)
	assert.Equal(t, "customer", identity.Role)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	tokens := NewTokenManager(testConfig())
	raw, err := tokens.Issue(Identity{Username: "customer", Role: "customer"})
	require.NoError(t, err)

	other := testConfig()
	other.Auth.JWTSecret = "different-secret"
	_, err = NewTokenManager(other).Verify(raw)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())

	_, err = tokens.Verify(raw + "x")
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.TokenTTL = -time.Minute
	tokens := NewTokenManager(cfg)

	raw, err := tokens.Issue(Identity{Username: "customer", Role: "customer"})
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.Error(t, err)
}
