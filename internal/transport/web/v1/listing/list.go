package listing

import (
	"net/http"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

// List godoc
// @Summary     List all listings
// @Tags        listings
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=[]domain.Listing}
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/listings [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "listings.list"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		logx.Error(h.Log, reqID, op, "method not allowed", domain.ErrMethodNotAllowed)
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	key := domain.CacheKeyAllListings()
	if b := h.cacheGet(r.Context(), reqID, op, key); b != nil {
		logx.Info(h.Log, reqID, op, "cache hit")
		writeCachedEnvelope(w, r, b)
		return
	}

	listings, err := h.Listings.AllListings(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "db list failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}

	env := domain.OkData(listings)
	buf := h.cacheSetJSON(r.Context(), reqID, op, key, env)

	logx.Info(h.Log, reqID, op, "ok", "count", len(listings))
	if buf != nil {
		writeCachedEnvelope(w, r, buf)
		return
	}
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}
