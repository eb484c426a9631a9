package domain

import (
	"context"
	"time"
)

// Направление сортировки выдачи
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Поля, по которым разрешена сортировка (белый список)
const (
	SortByPrice   = "price"
	SortByRating  = "rating"
	SortByArea    = "area_sq_ft"
	SortByCreated = "created_at"
)

// Фильтр поиска. Указатель == ограничение задано; nil — поле не ограничиваем.
type ListingFilter struct {
	PropertyType *string
	State        *string
	City         *string
	Bedrooms     *int
	Bathrooms    *int
	Furnishing   *string
	ListerType   *string
	Category     *string
	Verified     *bool

	MinPrice  *float64
	MaxPrice  *float64
	MinArea   *float64
	MaxArea   *float64
	MinRating *float64
	MaxRating *float64

	AvailableFrom *time.Time
	AvailableTo   *time.Time

	// Требуются ВСЕ перечисленные значения (conjunctive containment)
	Amenities []string
	Tags      []string
}

// Срез выдачи: поле сортировки из белого списка + смещение/лимит
type SearchSpec struct {
	Filter    ListingFilter
	SortBy    string
	SortOrder SortOrder
	Skip      int
	Limit     int
}

// Перечисление доступных значений фильтров (для UI)
type FilterOptions struct {
	PropertyTypes []string `json:"types"`
	States        []string `json:"states"`
	Cities        []string `json:"cities"`
	Furnishings   []string `json:"furnishings"`
	ListerTypes   []string `json:"listed_by"`
	Categories    []string `json:"categories"`
	Amenities     []string `json:"amenities"`
	Tags          []string `json:"tags"`
}

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, email, name string, passHash []byte) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
}

type ListingsRepo interface {
	CreateListing(ctx context.Context, l Listing) (Listing, error)
	// Поиск по публичному listing id (не по внутреннему PK)
	ListingByID(ctx context.Context, id ListingID) (Listing, error)
	AllListings(ctx context.Context) ([]Listing, error)
	SearchListings(ctx context.Context, spec SearchSpec) ([]Listing, error)
	CountListings(ctx context.Context, f ListingFilter) (int, error)
	ListingFilterOptions(ctx context.Context) (FilterOptions, error)
	UpdateListing(ctx context.Context, id ListingID, owner UserID, p ListingPatch) (Listing, error)
	DeleteListing(ctx context.Context, id ListingID, owner UserID) error
}

type FavoritesRepo interface {
	AddFavorite(ctx context.Context, user UserID, listing ListingID) error
	RemoveFavorite(ctx context.Context, user UserID, listing ListingID) error
	FavoritesByUser(ctx context.Context, user UserID) ([]Listing, error)
}

type RecommendationsRepo interface {
	AddRecommendation(ctx context.Context, to UserID, listing ListingID, from UserID) error
	RecommendationsByUser(ctx context.Context, to UserID) ([]Recommendation, error)
}
