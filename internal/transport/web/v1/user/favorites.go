package user

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

// AddFavorite godoc
// @Summary     Add listing to favorites
// @Tags        users
// @Param       id path string true "listing id"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/users/favorites/{id} [post]
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	const op = "users.favorites.add"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, id, err := h.favoriteArgs(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad request", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	// существование объявления проверяем по БД
	if _, err := h.Listings.ListingByID(r.Context(), id); err != nil {
		logx.Error(h.Log, reqID, op, "listing not found", err, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	if err := h.Favorites.AddFavorite(r.Context(), me.ID, id); err != nil {
		logx.Error(h.Log, reqID, op, "db add favorite failed", err, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// сбрасываем кеш избранного — после успешной записи
	if err := h.Cache.Del(r.Context(), domain.CacheKeyFavorites(me.ID)); err != nil {
		logx.Error(h.Log, reqID, op, "cache invalidation failed", err, "user_id", me.ID)
	}

	logx.Info(h.Log, reqID, op, "ok", "listing_id", id, "user_id", me.ID)
	v1.WriteOKResponse(w, r, map[string]bool{id.String(): true})
}

// RemoveFavorite godoc
// @Summary     Remove listing from favorites
// @Tags        users
// @Param       id path string true "listing id"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/users/favorites/{id} [delete]
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	const op = "users.favorites.remove"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, id, err := h.favoriteArgs(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad request", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Favorites.RemoveFavorite(r.Context(), me.ID, id); err != nil {
		logx.Error(h.Log, reqID, op, "db remove favorite failed", err, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	if err := h.Cache.Del(r.Context(), domain.CacheKeyFavorites(me.ID)); err != nil {
		logx.Error(h.Log, reqID, op, "cache invalidation failed", err, "user_id", me.ID)
	}

	logx.Info(h.Log, reqID, op, "ok", "listing_id", id, "user_id", me.ID)
	v1.WriteOKResponse(w, r, map[string]bool{id.String(): false})
}

// ListFavorites godoc
// @Summary     List my favorite listings
// @Tags        users
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=[]domain.Listing}
// @Failure     401 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/users/favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	const op = "users.favorites.list"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		logx.Error(h.Log, reqID, op, "method not allowed", domain.ErrMethodNotAllowed)
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}
	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "unauthorized", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	key := domain.CacheKeyFavorites(me.ID)
	if b, err := h.Cache.Get(r.Context(), key); err != nil {
		logx.Error(h.Log, reqID, op, "cache get failed, treating as miss", err, "key", key)
	} else if b != nil {
		logx.Info(h.Log, reqID, op, "cache hit", "user_id", me.ID)
		writeCachedEnvelope(w, r, b)
		return
	}

	listings, err := h.Favorites.FavoritesByUser(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "db favorites failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}

	env := domain.OkData(listings)
	if buf, err := json.Marshal(env); err == nil {
		if err := h.Cache.Set(r.Context(), key, buf, h.CacheTTL); err != nil {
			logx.Error(h.Log, reqID, op, "cache set failed", err, "key", key)
		}
		logx.Info(h.Log, reqID, op, "ok", "count", len(listings))
		writeCachedEnvelope(w, r, buf)
		return
	}

	logx.Info(h.Log, reqID, op, "ok (fallback)", "count", len(listings))
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}

// общий разбор: метод уже проверяет роутер, тут — auth + listing id из path
func (h *Handler) favoriteArgs(r *http.Request) (domain.User, domain.ListingID, error) {
	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		return domain.User{}, uuid.Nil, domain.ErrUnauth
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/users/favorites/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return domain.User{}, uuid.Nil, domain.ErrBadParams
	}
	return me, id, nil
}

func writeCachedEnvelope(w http.ResponseWriter, r *http.Request, b []byte) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
