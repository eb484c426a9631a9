package listing

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

type createRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	PropertyType  string   `json:"type"`
	State         string   `json:"state"`
	City          string   `json:"city"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	Furnishing    string   `json:"furnishing"`
	ListerType    string   `json:"listed_by"`
	Category      string   `json:"category"`
	Verified      bool     `json:"is_verified"`
	Price         float64  `json:"price"`
	AreaSqFt      float64  `json:"area_sq_ft"`
	Rating        float64  `json:"rating"`
	AvailableFrom string   `json:"available_from"` // YYYY-MM-DD
	Amenities     []string `json:"amenities"`
	Tags          []string `json:"tags"`
}

// Create godoc
// @Summary     Create listing
// @Tags        listings
// @Accept      json
// @Produce     json
// @Param       request body createRequest true "listing"
// @Success     200 {object} domain.APIEnvelope{data=domain.Listing}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/listings [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "listings.create"
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

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Title == "" || req.Price < 0 || req.Bedrooms < 0 || req.Bathrooms < 0 {
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams, "title", req.Title)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	availableFrom := time.Now().UTC().Truncate(24 * time.Hour)
	if req.AvailableFrom != "" {
		t, err := time.Parse(dateLayout, req.AvailableFrom)
		if err != nil {
			logx.Error(h.Log, reqID, op, "bad available_from", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
		availableFrom = t
	}

	l := domain.Listing{
		ID:            uuid.New(), // публичный идентификатор
		OwnerID:       me.ID,
		Title:         req.Title,
		Description:   req.Description,
		PropertyType:  req.PropertyType,
		State:         req.State,
		City:          req.City,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Furnishing:    req.Furnishing,
		ListerType:    req.ListerType,
		Category:      req.Category,
		Verified:      req.Verified,
		Price:         req.Price,
		AreaSqFt:      req.AreaSqFt,
		Rating:        req.Rating,
		AvailableFrom: availableFrom,
		Amenities:     req.Amenities,
		Tags:          req.Tags,
	}

	out, err := h.Listings.CreateListing(r.Context(), l)
	if err != nil {
		logx.Error(h.Log, reqID, op, "db create failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// инвалидация строго после успешной записи: коллекция + все поиски
	h.invalidateListingCaches(r.Context(), reqID, op, domain.CacheKeyAllListings())

	logx.Info(h.Log, reqID, op, "ok", "listing_id", out.ID)
	v1.WriteOKData(w, r, out)
}
