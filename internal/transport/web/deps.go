package web

import "github.com/tech-wizard720/Property-Listing-system/internal/domain"

type Repos struct {
	Users     domain.UsersRepo
	Listings  domain.ListingsRepo
	Favorites domain.FavoritesRepo
	Recs      domain.RecommendationsRepo
}

type AuthDeps struct {
	Hasher    domain.PasswordHasher
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}
