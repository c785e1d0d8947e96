package auth

import (
	"context"
	"errors"
	"net/http"
)

var sessionKey = &struct{}{}

type Verb string

type Resource struct {
	Name string
	Type string
}

const (
	VerbGet    Verb = "get"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// Authn
type Principal struct {
	User  string
	Agent string
}
type Session struct {
	Principal Principal
}

func AuthSessionFrom(ctx context.Context) (*Session, bool) {
	v, ok := ctx.Value(sessionKey).(*Session)
	return v, ok && v != nil
}

func AuthSessionTo(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// Responsibilities:
// - Authenticate:
//   - a2a requests from ui/cli (human users)
//   - openai/api requests from users/agents
type AuthProvider interface {
	Authenticate(r *http.Request) (*Session, error)
}

// Authz
type Authorizer interface {
	Check(ctx context.Context, principal Principal, verb Verb, resource Resource) error
}

func AuthnMiddleware(authn AuthProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := authn.Authenticate(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if session != nil {
				r = r.WithContext(AuthSessionTo(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UnsecureAuthenticator trusts caller-supplied identity headers. The default
// for clusters that terminate auth at the ingress. With RequireUser set
// ("basic" mode) requests without an identity are rejected instead of
// falling back to the admin default.
type UnsecureAuthenticator struct {
	RequireUser bool
}

func (a *UnsecureAuthenticator) Authenticate(r *http.Request) (*Session, error) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = r.Header.Get("X-User-Id")
	}
	if userID == "" {
		if a.RequireUser {
			return nil, errors.New("missing user identity")
		}
		userID = "admin@ark.dev"
	}
	agentID := r.Header.Get("X-Agent-Name")
	return &Session{
		Principal: Principal{
			User:  userID,
			Agent: agentID,
		},
	}, nil
}

// NoopAuthorizer allows everything.
type NoopAuthorizer struct{}

func (a *NoopAuthorizer) Check(ctx context.Context, principal Principal, verb Verb, resource Resource) error {
	return nil
}
