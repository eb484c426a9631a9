package listing

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

// GetOne godoc
// @Summary     Get single listing
// @Tags        listings
// @Produce     json
// @Param       id path string true "listing id"
// @Success     200 {object} domain.APIEnvelope{data=domain.Listing}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/listings/{id} [get]
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	const op = "listings.get_one"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		logx.Error(h.Log, reqID, op, "method not allowed", domain.ErrMethodNotAllowed)
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	// id из path
	idStr := unescape(strings.TrimPrefix(r.URL.Path, "/api/listings/"))
	id, err := uuid.Parse(idStr)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad listing id", err, "listing_id_raw", idStr)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// кэш → отдать как есть
	key := domain.CacheKeyListing(id)
	if b := h.cacheGet(r.Context(), reqID, op, key); b != nil {
		logx.Info(h.Log, reqID, op, "cache hit", "listing_id", id)
		writeCachedEnvelope(w, r, b)
		return
	}

	// промах — в БД; "не найдено" НЕ кешируем
	l, err := h.Listings.ListingByID(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "listing not found", err, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	env := domain.OkData(l)
	buf := h.cacheSetJSON(r.Context(), reqID, op, key, env)

	logx.Info(h.Log, reqID, op, "ok", "listing_id", l.ID)
	if buf != nil {
		writeCachedEnvelope(w, r, buf)
		return
	}
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}
