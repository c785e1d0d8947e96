package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Auth modes. In hybrid mode requests carrying a bearer token are verified
// while anonymous requests pass through as the unsecure default identity.
const (
	ModeOpen   = "open"
	ModeBasic  = "basic"
	ModeSSO    = "sso"
	ModeHybrid = "hybrid"
)

// OIDCAuthenticator validates bearer tokens against an OIDC issuer.
type OIDCAuthenticator struct {
	verifier *oidc.IDTokenVerifier
	hybrid   bool
	fallback UnsecureAuthenticator
}

// NewOIDCAuthenticator discovers the issuer's verification keys. clientID is
// checked against the token audience.
func NewOIDCAuthenticator(ctx context.Context, issuerURL, clientID string, hybrid bool) (*OIDCAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider %s: %w", issuerURL, err)
	}
	return &OIDCAuthenticator{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		hybrid:   hybrid,
	}, nil
}

func (a *OIDCAuthenticator) Authenticate(r *http.Request) (*Session, error) {
	rawToken := bearerToken(r)
	if rawToken == "" {
		if a.hybrid {
			return a.fallback.Authenticate(r)
		}
		return nil, fmt.Errorf("missing bearer token")
	}

	token, err := a.verifier.Verify(r.Context(), rawToken)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Subject string `json:"sub"`
	}
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}

	user := claims.Email
	if user == "" {
		user = claims.Subject
	}
	return &Session{
		Principal: Principal{
			User:  user,
			Agent: r.Header.Get("X-Agent-Name"),
		},
	}, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// NewAuthenticator builds the provider for the configured mode. Empty or
// "open" means header-trusting identity.
func NewAuthenticator(ctx context.Context, mode, issuerURL, clientID string) (AuthProvider, error) {
	switch strings.ToLower(mode) {
	case "", ModeOpen:
		return &UnsecureAuthenticator{}, nil
	case ModeBasic:
		return &UnsecureAuthenticator{RequireUser: true}, nil
	case ModeSSO:
		return NewOIDCAuthenticator(ctx, issuerURL, clientID, false)
	case ModeHybrid:
		return NewOIDCAuthenticator(ctx, issuerURL, clientID, true)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}
