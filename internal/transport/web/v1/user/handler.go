package user

import (
	"log"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
)

type Handler struct {
	Log       *log.Logger
	Listings  domain.ListingsRepo
	Favorites domain.FavoritesRepo
	Recs      domain.RecommendationsRepo
	Cache     domain.Cache

	CacheTTL int // секунд
}
