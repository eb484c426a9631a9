package listing

import (
	"net/http"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

// Filters godoc
// @Summary     Enumerate available filter values
// @Tags        listings
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=domain.FilterOptions}
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/listings/filters [get]
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	const op = "listings.filters"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		logx.Error(h.Log, reqID, op, "method not allowed", domain.ErrMethodNotAllowed)
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	opts, err := h.filterOptions(r.Context(), reqID, op)
	if err != nil {
		logx.Error(h.Log, reqID, op, "filter options failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteOKData(w, r, opts)
}
