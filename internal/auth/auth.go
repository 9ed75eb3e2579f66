package auth

import (
	"crypto/subtle"

	"go.uber.org/fx"

	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/pkg/errorbank"
)

// Identity is the authenticated caller as the order service sees it.
type Identity struct {
	Username string
	Role     string
}

// CredentialsProvider validates login attempts. The configuration-backed
// implementation replaces what used to be a hardcoded in-process user table.
type CredentialsProvider interface {
	Authenticate(username, password, role string) (Identity, error)
}

// Module wires the credentials provider and token manager.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewTokenManager),
)

type configProvider struct {
	users []config.Credential
}

// NewConfigProvider builds a CredentialsProvider over the configured users.
func NewConfigProvider(cfg config.Config) CredentialsProvider {
	return &configProvider{users: cfg.Auth.Users}
}

// Authenticate checks username/password and that the requested role matches
// the stored one. Password comparison is constant time.
func (p *configProvider) Authenticate(username, password, role string) (Identity, error) {
	for _, user := range p.users {
		if user.Username != username {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
			break
		}
		if user.Role != role {
			return Identity{}, errorbank.Unauthorized("invalid role")
		}
		return Identity{Username: user.Username, Role: user.Role}, nil
	}
	return Identity{}, errorbank.Unauthorized("invalid credentials")
}
