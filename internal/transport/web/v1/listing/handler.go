package listing

import (
	"log"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
)

type Handler struct {
	Log      *log.Logger
	Listings domain.ListingsRepo
	Users    domain.UsersRepo
	Recs     domain.RecommendationsRepo
	Cache    domain.Cache

	CacheTTL int // секунд
}
