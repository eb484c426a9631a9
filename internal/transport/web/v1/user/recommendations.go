package user

import (
	"encoding/json"
	"net/http"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

// ListRecommendations godoc
// @Summary     List recommendations received by me
// @Tags        users
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=[]domain.Recommendation}
// @Failure     401 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/users/recommendations [get]
func (h *Handler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "users.recommendations.list"
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

	key := domain.CacheKeyRecommendations(me.ID)
	if b, err := h.Cache.Get(r.Context(), key); err != nil {
		logx.Error(h.Log, reqID, op, "cache get failed, treating as miss", err, "key", key)
	} else if b != nil {
		logx.Info(h.Log, reqID, op, "cache hit", "user_id", me.ID)
		writeCachedEnvelope(w, r, b)
		return
	}

	recs, err := h.Recs.RecommendationsByUser(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "db recommendations failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}

	env := domain.OkData(recs)
	if buf, err := json.Marshal(env); err == nil {
		if err := h.Cache.Set(r.Context(), key, buf, h.CacheTTL); err != nil {
			logx.Error(h.Log, reqID, op, "cache set failed", err, "key", key)
		}
		logx.Info(h.Log, reqID, op, "ok", "count", len(recs))
		writeCachedEnvelope(w, r, buf)
		return
	}

	logx.Info(h.Log, reqID, op, "ok (fallback)", "count", len(recs))
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}
