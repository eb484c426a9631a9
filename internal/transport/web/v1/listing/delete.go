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

// Delete godoc
// @Summary     Delete listing (owner only)
// @Tags        listings
// @Param       id path string true "listing id"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/listings/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "listings.delete"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodDelete {
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

	idStr := unescape(strings.TrimPrefix(r.URL.Path, "/api/listings/"))
	id, err := uuid.Parse(idStr)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad listing id", err, "listing_id_raw", idStr)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// владение проверяем по БД, а не по кешу
	cur, err := h.Listings.ListingByID(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "listing not found", err, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}
	if cur.OwnerID != me.ID {
		logx.Error(h.Log, reqID, op, "not owner", domain.ErrForbidden, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	if err := h.Listings.DeleteListing(r.Context(), id, me.ID); err != nil {
		logx.Error(h.Log, reqID, op, "db delete failed", err, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// инвалидация строго после успешного удаления
	h.invalidateListingCaches(r.Context(), reqID, op, domain.ListingInvalidationKeys(id)...)

	logx.Info(h.Log, reqID, op, "ok", "listing_id", id)
	v1.WriteOKResponse(w, r, map[string]bool{id.String(): true})
}
