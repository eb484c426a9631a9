package listing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	srt "sort"
	"strconv"
	"strings"
	"time"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Распознанный запрос поиска: фильтр + сортировка + страница.
type searchQuery struct {
	Filter    domain.ListingFilter
	SortBy    string
	SortOrder domain.SortOrder
	Page      int
	Limit     int
}

// parseSearchQuery разбирает query-параметры поиска. Нераспознанные параметры
// игнорируются; значение, которое не парсится в свой тип — ошибка запроса.
// Политика пагинации: нечисловые page/limit → bad params; нулевые и
// отрицательные — приводим к значениям по умолчанию (limit дополнительно
// ограничен сверху).
func parseSearchQuery(q url.Values) (searchQuery, error) {
	out := searchQuery{
		SortBy:    domain.SortByPrice,
		SortOrder: domain.SortAsc,
		Page:      defaultPage,
		Limit:     defaultLimit,
	}

	var err error
	f := &out.Filter
	if f.PropertyType, err = qString(q, "type"); err != nil {
		return out, err
	}
	if f.State, err = qString(q, "state"); err != nil {
		return out, err
	}
	if f.City, err = qString(q, "city"); err != nil {
		return out, err
	}
	if f.Bedrooms, err = qInt(q, "bedrooms"); err != nil {
		return out, err
	}
	if f.Bathrooms, err = qInt(q, "bathrooms"); err != nil {
		return out, err
	}
	if f.Furnishing, err = qString(q, "furnishing"); err != nil {
		return out, err
	}
	if f.ListerType, err = qString(q, "listedBy"); err != nil {
		return out, err
	}
	if f.Category, err = qString(q, "category"); err != nil {
		return out, err
	}
	if f.Verified, err = qBool(q, "verified"); err != nil {
		return out, err
	}

	if f.MinPrice, err = qFloat(q, "minPrice"); err != nil {
		return out, err
	}
	if f.MaxPrice, err = qFloat(q, "maxPrice"); err != nil {
		return out, err
	}
	if f.MinArea, err = qFloat(q, "minArea"); err != nil {
		return out, err
	}
	if f.MaxArea, err = qFloat(q, "maxArea"); err != nil {
		return out, err
	}
	if f.MinRating, err = qFloat(q, "minRating"); err != nil {
		return out, err
	}
	if f.MaxRating, err = qFloat(q, "maxRating"); err != nil {
		return out, err
	}

	if f.AvailableFrom, err = qDate(q, "availableFrom"); err != nil {
		return out, err
	}
	if f.AvailableTo, err = qDate(q, "availableTo"); err != nil {
		return out, err
	}

	f.Amenities = qList(q, "amenities")
	f.Tags = qList(q, "tags")

	// сортировка: неизвестное поле → по умолчанию (price asc)
	if s := q.Get("sortBy"); s != "" {
		switch s {
		case "price":
			out.SortBy = domain.SortByPrice
		case "rating":
			out.SortBy = domain.SortByRating
		case "area":
			out.SortBy = domain.SortByArea
		case "created":
			out.SortBy = domain.SortByCreated
		}
	}
	if s := q.Get("sortOrder"); s == "desc" {
		out.SortOrder = domain.SortDesc
	}

	if p, err := qInt(q, "page"); err != nil {
		return out, err
	} else if p != nil && *p > 0 {
		out.Page = *p
	}
	if l, err := qInt(q, "limit"); err != nil {
		return out, err
	} else if l != nil && *l > 0 {
		out.Limit = *l
	}
	if out.Limit > maxLimit {
		out.Limit = maxLimit
	}

	return out, nil
}

// Spec возвращает срез выдачи для репозитория: skip = (page-1)*limit
func (sq searchQuery) Spec() domain.SearchSpec {
	return domain.SearchSpec{
		Filter:    sq.Filter,
		SortBy:    sq.SortBy,
		SortOrder: sq.SortOrder,
		Skip:      (sq.Page - 1) * sq.Limit,
		Limit:     sq.Limit,
	}
}

// CacheKey — канонический ключ поиска: все действующие параметры (включая
// подставленные умолчания) сериализуются как name=value, сортируются и
// хэшируются. Одинаковые запросы в любом порядке аргументов дают один ключ.
func (sq searchQuery) CacheKey() string {
	parts := []string{
		fmt.Sprintf("page=%d", sq.Page),
		fmt.Sprintf("limit=%d", sq.Limit),
		"sortBy=" + sq.SortBy,
		"sortOrder=" + string(sq.SortOrder),
	}

	f := sq.Filter
	addStr := func(name string, v *string) {
		if v != nil {
			parts = append(parts, name+"="+*v)
		}
	}
	addInt := func(name string, v *int) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", name, *v))
		}
	}
	addFloat := func(name string, v *float64) {
		if v != nil {
			parts = append(parts, name+"="+strconv.FormatFloat(*v, 'f', -1, 64))
		}
	}

	addStr("type", f.PropertyType)
	addStr("state", f.State)
	addStr("city", f.City)
	addInt("bedrooms", f.Bedrooms)
	addInt("bathrooms", f.Bathrooms)
	addStr("furnishing", f.Furnishing)
	addStr("listedBy", f.ListerType)
	addStr("category", f.Category)
	if f.Verified != nil {
		parts = append(parts, "verified="+strconv.FormatBool(*f.Verified))
	}
	addFloat("minPrice", f.MinPrice)
	addFloat("maxPrice", f.MaxPrice)
	addFloat("minArea", f.MinArea)
	addFloat("maxArea", f.MaxArea)
	addFloat("minRating", f.MinRating)
	addFloat("maxRating", f.MaxRating)
	if f.AvailableFrom != nil {
		parts = append(parts, "availableFrom="+f.AvailableFrom.Format(dateLayout))
	}
	if f.AvailableTo != nil {
		parts = append(parts, "availableTo="+f.AvailableTo.Format(dateLayout))
	}
	if len(f.Amenities) > 0 {
		parts = append(parts, "amenities="+joinSorted(f.Amenities))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags="+joinSorted(f.Tags))
	}

	srt.Strings(parts)
	return domain.CacheKeySearch(sha256hex(strings.Join(parts, "&")))
}

// pageCount = ceil(total/limit); total=0 → 0 страниц
func pageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

const dateLayout = "2006-01-02"

// ---- разбор отдельных параметров ----

func qString(q url.Values, name string) (*string, error) {
	if !q.Has(name) {
		return nil, nil
	}
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	return &v, nil
}

func qInt(q url.Values, name string) (*int, error) {
	if !q.Has(name) || q.Get(name) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadParams, name)
	}
	return &n, nil
}

func qFloat(q url.Values, name string) (*float64, error) {
	if !q.Has(name) || q.Get(name) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(q.Get(name), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadParams, name)
	}
	return &v, nil
}

func qBool(q url.Values, name string) (*bool, error) {
	if !q.Has(name) || q.Get(name) == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(q.Get(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadParams, name)
	}
	return &b, nil
}

func qDate(q url.Values, name string) (*time.Time, error) {
	if !q.Has(name) || q.Get(name) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, q.Get(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadParams, name)
	}
	return &t, nil
}

// Список через разделитель "|": amenities=pool|gym
func qList(q url.Values, name string) []string {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, "|") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinSorted(vals []string) string {
	cp := make([]string, len(vals))
	copy(cp, vals)
	srt.Strings(cp)
	return strings.Join(cp, "|")
}

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// для safety: url.PathUnescape id из path-параметра
func unescape(s string) string {
	u, _ := url.PathUnescape(s)
	return u
}
