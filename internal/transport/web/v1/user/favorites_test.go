package user

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
)

type memCache struct {
	store map[string][]byte
}

func newMemCache() *memCache { return &memCache{store: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	if b, ok := c.store[key]; ok {
		return b, nil
	}
	return nil, nil
}

func (c *memCache) Set(_ context.Context, key string, val []byte, _ int) error {
	c.store[key] = val
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}

func (c *memCache) DelPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
	return nil
}

func (c *memCache) SetNX(_ context.Context, key string, val []byte, _ int) (bool, error) {
	if _, ok := c.store[key]; ok {
		return false, nil
	}
	c.store[key] = val
	return true, nil
}

func (c *memCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.store[key]
	return ok, nil
}

func (c *memCache) Ping(context.Context) error { return nil }
func (c *memCache) Close()                     {}

// только ListingByID; остальные методы интерфейса в этих тестах не зовутся
type fakeListings struct {
	domain.ListingsRepo
	known map[domain.ListingID]domain.Listing
}

func (f *fakeListings) ListingByID(_ context.Context, id domain.ListingID) (domain.Listing, error) {
	if l, ok := f.known[id]; ok {
		return l, nil
	}
	return domain.Listing{}, fmt.Errorf("no rows")
}

type fakeFavorites struct {
	byUser    map[domain.UserID][]domain.Listing
	listCalls int
}

func (f *fakeFavorites) AddFavorite(_ context.Context, user domain.UserID, listing domain.ListingID) error {
	f.byUser[user] = append(f.byUser[user], domain.Listing{ID: listing})
	return nil
}

func (f *fakeFavorites) RemoveFavorite(_ context.Context, user domain.UserID, listing domain.ListingID) error {
	cur := f.byUser[user]
	for i, l := range cur {
		if l.ID == listing {
			f.byUser[user] = append(cur[:i], cur[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeFavorites) FavoritesByUser(_ context.Context, user domain.UserID) ([]domain.Listing, error) {
	f.listCalls++
	return f.byUser[user], nil
}

type stubTokens struct{ claims domain.TokenClaims }

func (s stubTokens) Issue(context.Context, domain.UserID, string) (domain.Token, domain.TokenClaims, error) {
	return "t", s.claims, nil
}

func (s stubTokens) Parse(context.Context, domain.Token) (domain.TokenClaims, error) {
	return s.claims, nil
}

type stubBlacklist struct{}

func (stubBlacklist) Revoke(context.Context, string, time.Time) error { return nil }
func (stubBlacklist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func asUser(id domain.UserID, h http.HandlerFunc) http.Handler {
	deps := mw.AuthDeps{
		Tokens:    stubTokens{claims: domain.TokenClaims{JTI: "j1", UserID: id, Email: "u@test.io"}},
		Blacklist: stubBlacklist{},
	}
	return mw.RequireAuth(deps, h)
}

func doAuthed(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTestHandler(listings *fakeListings, favs *fakeFavorites, cache domain.Cache) *Handler {
	return &Handler{
		Log:       log.New(io.Discard, "", 0),
		Listings:  listings,
		Favorites: favs,
		Cache:     cache,
		CacheTTL:  60,
	}
}

func TestAddFavorite_InvalidatesUserCache(t *testing.T) {
	me := uuid.New()
	l := domain.Listing{ID: uuid.New(), Title: "flat"}
	listings := &fakeListings{known: map[domain.ListingID]domain.Listing{l.ID: l}}
	favs := &fakeFavorites{byUser: map[domain.UserID][]domain.Listing{}}
	cache := newMemCache()
	h := newTestHandler(listings, favs, cache)

	cache.store[domain.CacheKeyFavorites(me)] = []byte("stale")

	rec := doAuthed(asUser(me, h.AddFavorite), http.MethodPost, "/api/users/favorites/"+l.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, cache.store, domain.CacheKeyFavorites(me))
	assert.Len(t, favs.byUser[me], 1)
}

func TestAddFavorite_UnknownListing(t *testing.T) {
	me := uuid.New()
	listings := &fakeListings{known: map[domain.ListingID]domain.Listing{}}
	favs := &fakeFavorites{byUser: map[domain.UserID][]domain.Listing{}}
	h := newTestHandler(listings, favs, newMemCache())

	rec := doAuthed(asUser(me, h.AddFavorite), http.MethodPost, "/api/users/favorites/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, favs.byUser[me])
}

func TestAddFavorite_BadID(t *testing.T) {
	me := uuid.New()
	h := newTestHandler(
		&fakeListings{known: map[domain.ListingID]domain.Listing{}},
		&fakeFavorites{byUser: map[domain.UserID][]domain.Listing{}},
		newMemCache(),
	)

	rec := doAuthed(asUser(me, h.AddFavorite), http.MethodPost, "/api/users/favorites/oops")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFavorites_CacheAside(t *testing.T) {
	me := uuid.New()
	l := domain.Listing{ID: uuid.New(), Title: "flat"}
	listings := &fakeListings{known: map[domain.ListingID]domain.Listing{l.ID: l}}
	favs := &fakeFavorites{byUser: map[domain.UserID][]domain.Listing{me: {l}}}
	cache := newMemCache()
	h := newTestHandler(listings, favs, cache)

	rec := doAuthed(asUser(me, h.ListFavorites), http.MethodGet, "/api/users/favorites")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, favs.listCalls)
	assert.Contains(t, cache.store, domain.CacheKeyFavorites(me))

	var env struct {
		Data []domain.Listing `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, l.ID, env.Data[0].ID)

	first := rec.Body.String()

	rec = doAuthed(asUser(me, h.ListFavorites), http.MethodGet, "/api/users/favorites")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, favs.listCalls)
	assert.Equal(t, first, rec.Body.String())
}

func TestRemoveFavorite_InvalidatesUserCache(t *testing.T) {
	me := uuid.New()
	l := domain.Listing{ID: uuid.New()}
	listings := &fakeListings{known: map[domain.ListingID]domain.Listing{l.ID: l}}
	favs := &fakeFavorites{byUser: map[domain.UserID][]domain.Listing{me: {l}}}
	cache := newMemCache()
	h := newTestHandler(listings, favs, cache)

	cache.store[domain.CacheKeyFavorites(me)] = []byte("stale")

	rec := doAuthed(asUser(me, h.RemoveFavorite), http.MethodDelete, "/api/users/favorites/"+l.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, cache.store, domain.CacheKeyFavorites(me))
	assert.Empty(t, favs.byUser[me])
}
