package listing

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

// Частичное обновление: отсутствующее поле не трогаем
type updateRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	PropertyType  *string  `json:"type"`
	State         *string  `json:"state"`
	City          *string  `json:"city"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	Furnishing    *string  `json:"furnishing"`
	ListerType    *string  `json:"listed_by"`
	Category      *string  `json:"category"`
	Verified      *bool    `json:"is_verified"`
	Price         *float64 `json:"price"`
	AreaSqFt      *float64 `json:"area_sq_ft"`
	Rating        *float64 `json:"rating"`
	AvailableFrom *string  `json:"available_from"` // YYYY-MM-DD
	Amenities     []string `json:"amenities"`
	Tags          []string `json:"tags"`
}

// Update godoc
// @Summary     Update listing (owner only)
// @Tags        listings
// @Accept      json
// @Produce     json
// @Param       id path string true "listing id"
// @Param       request body updateRequest true "fields to update"
// @Success     200 {object} domain.APIEnvelope{data=domain.Listing}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/listings/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "listings.update"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodPut {
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

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
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

	p := domain.ListingPatch{
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: req.PropertyType,
		State:        req.State,
		City:         req.City,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Furnishing:   req.Furnishing,
		ListerType:   req.ListerType,
		Category:     req.Category,
		Verified:     req.Verified,
		Price:        req.Price,
		AreaSqFt:     req.AreaSqFt,
		Rating:       req.Rating,
		Amenities:    req.Amenities,
		Tags:         req.Tags,
	}
	if req.AvailableFrom != nil {
		t, err := time.Parse(dateLayout, *req.AvailableFrom)
		if err != nil {
			logx.Error(h.Log, reqID, op, "bad available_from", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
		p.AvailableFrom = &t
	}

	out, err := h.Listings.UpdateListing(r.Context(), id, me.ID, p)
	if err != nil {
		logx.Error(h.Log, reqID, op, "db update failed", err, "listing_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// инвалидация строго после успешной записи
	h.invalidateListingCaches(r.Context(), reqID, op, domain.ListingInvalidationKeys(id)...)

	logx.Info(h.Log, reqID, op, "ok", "listing_id", out.ID)
	v1.WriteOKData(w, r, out)
}
