package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID

// Публичный идентификатор объявления. Не совпадает с внутренним PK в БД —
// наружу и в кеш уходит только он.
type ListingID = uuid.UUID

// Пользователь
type User struct {
	ID        UserID    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PassHash  []byte    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"created_at"`
}

// Объявление о недвижимости
type Listing struct {
	ID      ListingID `json:"id"`
	OwnerID UserID    `json:"-"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	PropertyType string `json:"type"` // Apartment / Villa / ...
	State        string `json:"state"`
	City         string `json:"city"`
	Bedrooms     int    `json:"bedrooms"`
	Bathrooms    int    `json:"bathrooms"`
	Furnishing   string `json:"furnishing"` // Furnished / Semi / Unfurnished
	ListerType   string `json:"listed_by"`  // Owner / Agent / Builder
	Category     string `json:"category"`   // Rent / Sale
	Verified     bool   `json:"is_verified"`

	Price         float64   `json:"price"`
	AreaSqFt      float64   `json:"area_sq_ft"`
	Rating        float64   `json:"rating"`
	AvailableFrom time.Time `json:"available_from"`

	Amenities []string `json:"amenities"`
	Tags      []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Частичное обновление: nil — поле не трогаем.
type ListingPatch struct {
	Title         *string
	Description   *string
	PropertyType  *string
	State         *string
	City          *string
	Bedrooms      *int
	Bathrooms     *int
	Furnishing    *string
	ListerType    *string
	Category      *string
	Verified      *bool
	Price         *float64
	AreaSqFt      *float64
	Rating        *float64
	AvailableFrom *time.Time
	Amenities     []string
	Tags          []string
}

// Рекомендация: кто и какое объявление посоветовал пользователю
type Recommendation struct {
	Listing   Listing   `json:"listing"`
	FromID    UserID    `json:"-"`
	FromEmail string    `json:"from_email"`
	FromName  string    `json:"from_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
