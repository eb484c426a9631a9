package mw

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
)

type stubTokens struct {
	claims domain.TokenClaims
	err    error
}

func (s stubTokens) Issue(context.Context, domain.UserID, string) (domain.Token, domain.TokenClaims, error) {
	return "t", s.claims, nil
}

func (s stubTokens) Parse(context.Context, domain.Token) (domain.TokenClaims, error) {
	return s.claims, s.err
}

type stubBlacklist struct{ revoked bool }

func (s stubBlacklist) Revoke(context.Context, string, time.Time) error { return nil }
func (s stubBlacklist) IsRevoked(context.Context, string) (bool, error) { return s.revoked, nil }

func TestRequireAuth_PutsUserIntoDomainContext(t *testing.T) {
	id := uuid.New()
	deps := AuthDeps{
		Tokens:    stubTokens{claims: domain.TokenClaims{JTI: "j1", UserID: id, Email: "u@test.io"}},
		Blacklist: stubBlacklist{},
	}

	var seen domain.User
	var ok, okMW bool
	h := RequireAuth(deps, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, ok = domain.UserFromCtx(r.Context())
		_, okMW = UserFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok, "user must be readable via domain.UserFromCtx")
	require.True(t, okMW)
	assert.Equal(t, id, seen.ID)
	assert.Equal(t, "u@test.io", seen.Email)
}

func TestRequireAuth_Rejects(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name   string
		deps   AuthDeps
		header string
	}{
		{
			name:   "no token",
			deps:   AuthDeps{Tokens: stubTokens{}, Blacklist: stubBlacklist{}},
			header: "",
		},
		{
			name:   "bad token",
			deps:   AuthDeps{Tokens: stubTokens{err: fmt.Errorf("bad signature")}, Blacklist: stubBlacklist{}},
			header: "Bearer broken",
		},
		{
			name: "revoked token",
			deps: AuthDeps{
				Tokens:    stubTokens{claims: domain.TokenClaims{JTI: "j1", UserID: id}},
				Blacklist: stubBlacklist{revoked: true},
			},
			header: "Bearer revoked",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			h := RequireAuth(tc.deps, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}
