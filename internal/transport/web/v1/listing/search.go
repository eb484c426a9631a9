package listing

import (
	"net/http"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

type paginationOut struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type searchOut struct {
	Listings      []domain.Listing     `json:"listings"`
	Pagination    paginationOut        `json:"pagination"`
	FilterOptions domain.FilterOptions `json:"filterOptions"`
}

// Search godoc
// @Summary     Search listings
// @Description Фильтрованный и пагинированный поиск. Результат (страница +
// @Description пагинация + доступные значения фильтров) кешируется целиком.
// @Tags        listings
// @Produce     json
// @Param       type      query string false "property type"
// @Param       state     query string false "state"
// @Param       city      query string false "city"
// @Param       bedrooms  query int    false "bedrooms"
// @Param       bathrooms query int    false "bathrooms"
// @Param       furnishing query string false "furnishing"
// @Param       listedBy  query string false "lister type"
// @Param       category  query string false "category"
// @Param       verified  query bool   false "verified only"
// @Param       minPrice  query number false "min price"
// @Param       maxPrice  query number false "max price"
// @Param       minArea   query number false "min area"
// @Param       maxArea   query number false "max area"
// @Param       minRating query number false "min rating"
// @Param       maxRating query number false "max rating"
// @Param       availableFrom query string false "available from (YYYY-MM-DD)"
// @Param       availableTo   query string false "available to (YYYY-MM-DD)"
// @Param       amenities query string false "amenities, |-separated, all required"
// @Param       tags      query string false "tags, |-separated, all required"
// @Param       sortBy    query string false "price|rating|area|created (default price)"
// @Param       sortOrder query string false "asc|desc (default asc)"
// @Param       page      query int    false "page (default 1)"
// @Param       limit     query int    false "limit (default 10, max 100)"
// @Success     200 {object} domain.APIEnvelope{data=searchOut}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/listings/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	const op = "listings.search"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "query", r.URL.RawQuery)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		logx.Error(h.Log, reqID, op, "method not allowed", domain.ErrMethodNotAllowed)
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	sq, err := parseSearchQuery(r.URL.Query())
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad query", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	key := sq.CacheKey()
	if b := h.cacheGet(r.Context(), reqID, op, key); b != nil {
		logx.Info(h.Log, reqID, op, "cache hit", "key", key)
		writeCachedEnvelope(w, r, b)
		return
	}

	// страница и total — по одному и тому же фильтру, параллельно
	type countRes struct {
		n   int
		err error
	}
	countCh := make(chan countRes, 1)
	go func() {
		n, err := h.Listings.CountListings(r.Context(), sq.Filter)
		countCh <- countRes{n, err}
	}()

	listings, err := h.Listings.SearchListings(r.Context(), sq.Spec())
	if err != nil {
		logx.Error(h.Log, reqID, op, "db search failed", err)
		<-countCh
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	cr := <-countCh
	if cr.err != nil {
		logx.Error(h.Log, reqID, op, "db count failed", cr.err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	opts, err := h.filterOptions(r.Context(), reqID, op)
	if err != nil {
		logx.Error(h.Log, reqID, op, "filter options failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	if listings == nil {
		listings = []domain.Listing{} // пустая выдача — валидный кешируемый результат
	}
	out := searchOut{
		Listings: listings,
		Pagination: paginationOut{
			Total: cr.n,
			Page:  sq.Page,
			Limit: sq.Limit,
			Pages: pageCount(cr.n, sq.Limit),
		},
		FilterOptions: opts,
	}

	env := domain.OkData(out)
	buf := h.cacheSetJSON(r.Context(), reqID, op, key, env)

	logx.Info(h.Log, reqID, op, "ok", "count", len(listings), "total", cr.n, "page", sq.Page)
	if buf != nil {
		writeCachedEnvelope(w, r, buf)
		return
	}
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}
