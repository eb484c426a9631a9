package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
)

// ---- фейки ----

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

type fakeListings struct {
	items []domain.Listing

	byIDCalls   int
	searchCalls int
	countCalls  int
}

func (f *fakeListings) CreateListing(_ context.Context, l domain.Listing) (domain.Listing, error) {
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt
	f.items = append(f.items, l)
	return l, nil
}

func (f *fakeListings) ListingByID(_ context.Context, id domain.ListingID) (domain.Listing, error) {
	f.byIDCalls++
	for _, l := range f.items {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Listing{}, fmt.Errorf("no rows")
}

func (f *fakeListings) AllListings(_ context.Context) ([]domain.Listing, error) {
	out := make([]domain.Listing, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeListings) SearchListings(_ context.Context, spec domain.SearchSpec) ([]domain.Listing, error) {
	f.searchCalls++
	out := make([]domain.Listing, len(f.items))
	copy(out, f.items)
	sort.SliceStable(out, func(i, j int) bool {
		if spec.SortOrder == domain.SortDesc {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	if spec.Skip >= len(out) {
		return nil, nil
	}
	out = out[spec.Skip:]
	if len(out) > spec.Limit {
		out = out[:spec.Limit]
	}
	return out, nil
}

func (f *fakeListings) CountListings(_ context.Context, _ domain.ListingFilter) (int, error) {
	f.countCalls++
	return len(f.items), nil
}

func (f *fakeListings) ListingFilterOptions(_ context.Context) (domain.FilterOptions, error) {
	return domain.FilterOptions{Cities: []string{"Pune"}}, nil
}

func (f *fakeListings) UpdateListing(_ context.Context, id domain.ListingID, owner domain.UserID, p domain.ListingPatch) (domain.Listing, error) {
	for i, l := range f.items {
		if l.ID == id && l.OwnerID == owner {
			if p.Price != nil {
				f.items[i].Price = *p.Price
			}
			if p.Title != nil {
				f.items[i].Title = *p.Title
			}
			f.items[i].UpdatedAt = time.Now().UTC()
			return f.items[i], nil
		}
	}
	return domain.Listing{}, fmt.Errorf("no rows")
}

func (f *fakeListings) DeleteListing(_ context.Context, id domain.ListingID, owner domain.UserID) error {
	for i, l := range f.items {
		if l.ID == id && l.OwnerID == owner {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no rows")
}

// только UserByEmail; остальные методы интерфейса в этих тестах не зовутся
type fakeUsers struct {
	domain.UsersRepo
	byEmail map[string]domain.User
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return domain.User{}, fmt.Errorf("no rows")
}

type fakeRecs struct {
	added int
}

func (f *fakeRecs) AddRecommendation(context.Context, domain.UserID, domain.ListingID, domain.UserID) error {
	f.added++
	return nil
}

func (f *fakeRecs) RecommendationsByUser(context.Context, domain.UserID) ([]domain.Recommendation, error) {
	return nil, nil
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

// ---- обвязка ----

func newTestHandler(repo *fakeListings, cache domain.Cache) *Handler {
	return &Handler{
		Log:      log.New(io.Discard, "", 0),
		Listings: repo,
		Cache:    cache,
		CacheTTL: 60,
	}
}

func asUser(id domain.UserID, h http.HandlerFunc) http.Handler {
	deps := mw.AuthDeps{
		Tokens:    stubTokens{claims: domain.TokenClaims{JTI: "j1", UserID: id, Email: "u@test.io"}},
		Blacklist: stubBlacklist{},
	}
	return mw.RequireAuth(deps, h)
}

func doAuthed(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newListing(owner domain.UserID, title string, price float64) domain.Listing {
	now := time.Now().UTC()
	return domain.Listing{
		ID:            uuid.New(),
		OwnerID:       owner,
		Title:         title,
		City:          "Pune",
		Price:         price,
		AvailableFrom: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type searchEnvelope struct {
	Data searchOut `json:"data"`
}

func decodeSearch(t *testing.T, rec *httptest.ResponseRecorder) searchOut {
	t.Helper()
	var env searchEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

// ---- тесты ----

func TestGetOne_CacheAside(t *testing.T) {
	owner := uuid.New()
	l := newListing(owner, "flat", 100)
	repo := &fakeListings{items: []domain.Listing{l}}
	cache := newMemCache()
	h := newTestHandler(repo, cache)

	// промах: идём в БД и кладём в кеш
	rec := httptest.NewRecorder()
	h.GetOne(rec, httptest.NewRequest(http.MethodGet, "/api/listings/"+l.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.byIDCalls)
	assert.Contains(t, cache.store, domain.CacheKeyListing(l.ID))

	first := rec.Body.String()

	// попадание: БД не трогаем, байты те же
	rec = httptest.NewRecorder()
	h.GetOne(rec, httptest.NewRequest(http.MethodGet, "/api/listings/"+l.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.byIDCalls)
	assert.Equal(t, first, rec.Body.String())
}

func TestGetOne_NotFoundNotCached(t *testing.T) {
	repo := &fakeListings{}
	cache := newMemCache()
	h := newTestHandler(repo, cache)
	missing := uuid.New()

	rec := httptest.NewRecorder()
	h.GetOne(rec, httptest.NewRequest(http.MethodGet, "/api/listings/"+missing.String(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, cache.store)

	// повтор снова идёт в БД
	rec = httptest.NewRecorder()
	h.GetOne(rec, httptest.NewRequest(http.MethodGet, "/api/listings/"+missing.String(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2, repo.byIDCalls)
}

func TestGetOne_MissingThenCreatedBecomesVisible(t *testing.T) {
	owner := uuid.New()
	repo := &fakeListings{}
	cache := newMemCache()
	h := newTestHandler(repo, cache)

	// промах по несуществующему id ничего не кеширует
	rec := httptest.NewRecorder()
	h.GetOne(rec, httptest.NewRequest(http.MethodGet, "/api/listings/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, cache.store)

	// создаём объявление
	create := asUser(owner, h.Create)
	rec2 := doAuthed(create, http.MethodPost, "/api/listings", `{"title":"flat","price":100}`)
	require.Equal(t, http.StatusOK, rec2.Code)
	require.Len(t, repo.items, 1)
	created := repo.items[0]

	// и оно сразу видно на чтении
	rec = httptest.NewRecorder()
	h.GetOne(rec, httptest.NewRequest(http.MethodGet, "/api/listings/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID.String())
}

func TestGetOne_BadID(t *testing.T) {
	h := newTestHandler(&fakeListings{}, newMemCache())

	rec := httptest.NewRecorder()
	h.GetOne(rec, httptest.NewRequest(http.MethodGet, "/api/listings/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_CacheMissThenHit(t *testing.T) {
	owner := uuid.New()
	repo := &fakeListings{items: []domain.Listing{
		newListing(owner, "P1", 100),
		newListing(owner, "P2", 200),
	}}
	cache := newMemCache()
	h := newTestHandler(repo, cache)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/listings/search?sortOrder=desc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeSearch(t, rec)
	require.Len(t, out.Listings, 2)
	assert.Equal(t, "P2", out.Listings[0].Title)
	assert.Equal(t, "P1", out.Listings[1].Title)
	assert.Equal(t, 2, out.Pagination.Total)
	assert.Equal(t, 1, out.Pagination.Pages)
	assert.Equal(t, 1, repo.searchCalls)

	first := rec.Body.String()

	// повтор — из кеша, байт в байт
	rec = httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/listings/search?sortOrder=desc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.searchCalls)
	assert.Equal(t, first, rec.Body.String())
}

func TestSearch_UpdateInvalidatesCachedOrder(t *testing.T) {
	owner := uuid.New()
	p1 := newListing(owner, "P1", 100)
	p2 := newListing(owner, "P2", 200)
	repo := &fakeListings{items: []domain.Listing{p1, p2}}
	cache := newMemCache()
	h := newTestHandler(repo, cache)

	// закешировали порядок [P2, P1]
	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/listings/search?sortOrder=desc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeSearch(t, rec)
	require.Equal(t, []string{"P2", "P1"}, []string{out.Listings[0].Title, out.Listings[1].Title})

	// владелец поднял цену P1 до 500
	upd := asUser(owner, h.Update)
	rec2 := doAuthed(upd, http.MethodPut, "/api/listings/"+p1.ID.String(), `{"price": 500}`)
	require.Equal(t, http.StatusOK, rec2.Code)

	// тот же поиск после мутации отражает новый порядок
	rec = httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/listings/search?sortOrder=desc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out = decodeSearch(t, rec)
	require.Len(t, out.Listings, 2)
	assert.Equal(t, "P1", out.Listings[0].Title)
	assert.Equal(t, float64(500), out.Listings[0].Price)
	assert.Equal(t, "P2", out.Listings[1].Title)
	assert.Equal(t, 2, repo.searchCalls)
}

func TestSearch_EmptyResultCached(t *testing.T) {
	repo := &fakeListings{}
	cache := newMemCache()
	h := newTestHandler(repo, cache)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/listings/search", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeSearch(t, rec)
	assert.Empty(t, out.Listings)
	assert.Equal(t, 0, out.Pagination.Pages)

	rec = httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/listings/search", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.searchCalls, "пустая выдача должна была закешироваться")
}

func TestSearch_BadParams(t *testing.T) {
	h := newTestHandler(&fakeListings{}, newMemCache())

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/listings/search?page=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_InvalidatesCollectionsButNotFilters(t *testing.T) {
	owner := uuid.New()
	repo := &fakeListings{}
	cache := newMemCache()
	h := newTestHandler(repo, cache)

	cache.store[domain.CacheKeyAllListings()] = []byte("stale")
	cache.store[domain.CacheKeySearch("deadbeef")] = []byte("stale")
	cache.store[domain.CacheKeyFilterOptions()] = []byte(`{"cities":["Pune"]}`)

	create := asUser(owner, h.Create)
	rec := doAuthed(create, http.MethodPost, "/api/listings", `{"title":"flat","price":100}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, cache.store, domain.CacheKeyAllListings())
	assert.NotContains(t, cache.store, domain.CacheKeySearch("deadbeef"))
	assert.Contains(t, cache.store, domain.CacheKeyFilterOptions())
	require.Len(t, repo.items, 1)
	assert.Equal(t, owner, repo.items[0].OwnerID)
}

func TestCreate_Validation(t *testing.T) {
	owner := uuid.New()
	h := newTestHandler(&fakeListings{}, newMemCache())
	create := asUser(owner, h.Create)

	rec := doAuthed(create, http.MethodPost, "/api/listings", `{"title":"","price":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doAuthed(create, http.MethodPost, "/api/listings", `{"title":"flat","price":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdate_NotOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	l := newListing(owner, "flat", 100)
	repo := &fakeListings{items: []domain.Listing{l}}
	h := newTestHandler(repo, newMemCache())

	upd := asUser(stranger, h.Update)
	rec := doAuthed(upd, http.MethodPut, "/api/listings/"+l.ID.String(), `{"price": 1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, float64(100), repo.items[0].Price)
}

func TestDelete_InvalidatesListingKeys(t *testing.T) {
	owner := uuid.New()
	l := newListing(owner, "flat", 100)
	repo := &fakeListings{items: []domain.Listing{l}}
	cache := newMemCache()
	h := newTestHandler(repo, cache)

	cache.store[domain.CacheKeyListing(l.ID)] = []byte("stale")
	cache.store[domain.CacheKeyAllListings()] = []byte("stale")
	cache.store[domain.CacheKeySearch("cafe")] = []byte("stale")

	del := asUser(owner, h.Delete)
	rec := doAuthed(del, http.MethodDelete, "/api/listings/"+l.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, repo.items)
	assert.NotContains(t, cache.store, domain.CacheKeyListing(l.ID))
	assert.NotContains(t, cache.store, domain.CacheKeyAllListings())
	assert.NotContains(t, cache.store, domain.CacheKeySearch("cafe"))
}

func TestRecommend_RecordsAndInvalidates(t *testing.T) {
	me := uuid.New()
	target := domain.User{ID: uuid.New(), Email: "friend@test.io"}
	l := newListing(me, "flat", 100)
	repo := &fakeListings{items: []domain.Listing{l}}
	recs := &fakeRecs{}
	cache := newMemCache()
	h := newTestHandler(repo, cache)
	h.Users = &fakeUsers{byEmail: map[string]domain.User{target.Email: target}}
	h.Recs = recs

	cache.store[domain.CacheKeyRecommendations(target.ID)] = []byte("stale")

	rec := doAuthed(asUser(me, h.Recommend), http.MethodPost,
		"/api/listings/"+l.ID.String()+"/recommend", `{"email":"friend@test.io"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, recs.added)
	assert.NotContains(t, cache.store, domain.CacheKeyRecommendations(target.ID))
}

func TestRecommend_RequiresSuffix(t *testing.T) {
	me := uuid.New()
	l := newListing(me, "flat", 100)
	repo := &fakeListings{items: []domain.Listing{l}}
	recs := &fakeRecs{}
	h := newTestHandler(repo, newMemCache())
	h.Recs = recs

	// POST /api/listings/{id} без /recommend — не наш маршрут
	rec := doAuthed(asUser(me, h.Recommend), http.MethodPost,
		"/api/listings/"+l.ID.String(), `{"email":"friend@test.io"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, recs.added)
}

func TestDelete_NotFound(t *testing.T) {
	owner := uuid.New()
	repo := &fakeListings{}
	h := newTestHandler(repo, newMemCache())

	del := asUser(owner, h.Delete)
	rec := doAuthed(del, http.MethodDelete, "/api/listings/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
