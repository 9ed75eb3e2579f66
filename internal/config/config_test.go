package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8084, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.Upstream.LookupTimeout)
	assert.Equal(t, 10*time.Second, cfg.Upstream.SubmitTimeout)
	assert.NotEmpty(t, cfg.Upstream.CustomerBaseURL)
	assert.NotEmpty(t, cfg.Upstream.MenuBaseURL)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "pastry-orders", cfg.Observability.ServiceName)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
}

func TestAuthRequiresSecretAndUsers(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_USERS", "")

	_, err := New()
	assert.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "secret")
	_, err = New()
	assert.Error(t, err)

	t.Setenv("AUTH_USERS", "admin:iamadmin:admin")
	cfg, err := New()
	require.NoError(t, err)
	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, "admin", cfg.Auth.Users[0].Username)
	assert.Equal(t, "admin", cfg.Auth.Users[0].Role)
}

func TestParseCredentials(t *testing.T) {
	creds := parseCredentials("customer:iamcustomer:customer, admin:iamadmin:admin,broken,also:broken")
	require.Len(t, creds, 2)
	assert.Equal(t, Credential{Username: "customer", Password: "iamcustomer", Role: "customer"}, creds[0])
	assert.Equal(t, Credential{Username: "admin", Password: "iamadmin", Role: "admin"}, creds[1])

	assert.Nil(t, parseCredentials(""))
}

func TestUpstreamTimeoutEnvOverride(t *testing.T) {
	t.Setenv("UPSTREAM_LOOKUP_TIMEOUT", "2s")
	t.Setenv("UPSTREAM_SUBMIT_TIMEOUT", "30s")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Upstream.LookupTimeout)
	assert.Equal(t, 30*time.Second, cfg.Upstream.SubmitTimeout)
}
