package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/authorityai/authorityai/backend/go-services/internal/models"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/coreos/go-oidc/v3/oidc"
)

// UserResolver maps identity provider claims to a local account, creating it on first sight.
type UserResolver interface {
	UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error)
}

// claimsToken exposes an already decoded claims map.
type claimsToken struct {
	claims map[string]interface{}
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Verifier validates SSO ID tokens and rewrites "sub" to the local user id so that
// downstream ownership checks see the same identity as for local logins.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
	users    UserResolver
}

// IssuerURL builds the Keycloak realm issuer, e.g. https://kc/realms/authorityai.
func IssuerURL(base, realm string) string {
	return strings.TrimRight(base, "/") + "/realms/" + realm
}

// NewVerifier discovers the provider at issuer and verifies tokens issued for clientID.
func NewVerifier(ctx context.Context, issuer, clientID string, users UserResolver) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		users:    users,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	return resolve(ctx, v.users, claims)
}

func resolve(ctx context.Context, users UserResolver, claims map[string]interface{}) (middleware.Token, error) {
	if _, ok := claims["name"].(string); !ok {
		if pu, ok := claims["preferred_username"].(string); ok {
			claims["name"] = pu
		}
	}
	if users == nil {
		return &claimsToken{claims: claims}, nil
	}
	u, err := users.UpsertFromClaims(ctx, claims)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if u == nil {
		return nil, errors.New("token has no subject")
	}
	claims["idp_sub"] = claims["sub"]
	claims["sub"] = u.ID
	return &claimsToken{claims: claims}, nil
}
