package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsecureAuthenticator(t *testing.T) {
	a := &UnsecureAuthenticator{}

	r := httptest.NewRequest(http.MethodGet, "/a2a/agents", nil)
	session, err := a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "admin@ark.dev", session.Principal.User)

	r = httptest.NewRequest(http.MethodGet, "/a2a/agents?user_id=alice", nil)
	session, err = a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Principal.User)

	r = httptest.NewRequest(http.MethodGet, "/a2a/agents", nil)
	r.Header.Set("X-User-Id", "bob")
	r.Header.Set("X-Agent-Name", "researcher")
	session, err = a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "bob", session.Principal.User)
	assert.Equal(t, "researcher", session.Principal.Agent)
}

func TestUnsecureAuthenticatorRequireUser(t *testing.T) {
	a := &UnsecureAuthenticator{RequireUser: true}

	r := httptest.NewRequest(http.MethodGet, "/a2a/agents", nil)
	_, err := a.Authenticate(r)
	require.Error(t, err)

	r = httptest.NewRequest(http.MethodGet, "/a2a/agents?user_id=alice", nil)
	session, err := a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Principal.User)
}

func TestAuthnMiddleware(t *testing.T) {
	mw := AuthnMiddleware(&UnsecureAuthenticator{RequireUser: true})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := AuthSessionFrom(r.Context())
		require.True(t, ok)
		w.Write([]byte(session.Principal.User)) //nolint:errcheck
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?user_id=alice", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestNewAuthenticatorModes(t *testing.T) {
	ctx := context.Background()

	a, err := NewAuthenticator(ctx, "", "", "")
	require.NoError(t, err)
	assert.IsType(t, &UnsecureAuthenticator{}, a)

	a, err = NewAuthenticator(ctx, ModeBasic, "", "")
	require.NoError(t, err)
	require.IsType(t, &UnsecureAuthenticator{}, a)
	assert.True(t, a.(*UnsecureAuthenticator).RequireUser)

	_, err = NewAuthenticator(ctx, "bogus", "", "")
	require.Error(t, err)
}
