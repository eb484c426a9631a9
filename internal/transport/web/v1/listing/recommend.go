package listing

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

type recommendRequest struct {
	Email string `json:"email"` // кому рекомендуем
}

type recommendResponse struct {
	Listing string `json:"listing"`
	To      string `json:"to"`
}

// Recommend godoc
// @Summary     Recommend listing to a user by email
// @Tags        listings
// @Accept      json
// @Produce     json
// @Param       id path string true "listing id"
// @Param       request body recommendRequest true "recipient email"
// @Success     200 {object} domain.APIEnvelope{response=recommendResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/listings/{id}/recommend [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	const op = "listings.recommend"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodPost {
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

	// /api/listings/{id}/recommend — суффикс обязателен, иначе это не наш маршрут
	p := strings.TrimPrefix(r.URL.Path, "/api/listings/")
	idStr, ok := strings.CutSuffix(p, "/recommend")
	if !ok {
		logx.Error(h.Log, reqID, op, "unknown route", domain.ErrNotFound, "path", r.URL.Path)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}
	id, err := uuid.Parse(unescape(idStr))
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad listing id", err, "listing_id_raw", idStr)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		logx.Error(h.Log, reqID, op, "bad json or empty email", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// существование объявления и получателя — по авторитетному хранилищу
	if _, err := h.Listings.ListingByID(r.Context(), id); err != nil {
		logx.Error(h.Log, reqID, op, "listing not found", err, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}
	target, err := h.Users.UserByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		logx.Error(h.Log, reqID, op, "recipient not found", err, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	if err := h.Recs.AddRecommendation(r.Context(), target.ID, id, me.ID); err != nil {
		logx.Error(h.Log, reqID, op, "db recommend failed", err, "listing_id", id, "to", target.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// сбрасываем кеш рекомендаций получателя — после успешной записи
	if err := h.Cache.Del(r.Context(), domain.CacheKeyRecommendations(target.ID)); err != nil {
		logx.Error(h.Log, reqID, op, "cache invalidation failed", err, "to", target.ID)
	}

	logx.Info(h.Log, reqID, op, "ok", "listing_id", id, "to", target.ID)
	v1.WriteOKResponse(w, r, recommendResponse{Listing: id.String(), To: target.Email})
}
