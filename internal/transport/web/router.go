package web

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/tech-wizard720/Property-Listing-system/internal/docs"
	authv1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1/auth"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1/health"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1/listing"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1/user"

	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
)

const maxBodyBytes = 1 << 20 // 1 MiB на тело запроса

type handlers struct {
	health   *health.Handler
	register *authv1.HandlerRegister
	login    *authv1.HandlerLogin
	logout   *authv1.HandlerLogout
	listings *listing.Handler
	users    *user.Handler
}

func newRouter(h handlers, auth AuthDeps, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	deps := mw.AuthDeps{Tokens: auth.Tokens, Blacklist: auth.Blacklist}
	guard := func(hf http.HandlerFunc) http.Handler {
		return mw.RequireAuth(deps, hf)
	}

	// health
	mux.HandleFunc("GET /v1/healthz", h.health.Liveness)
	mux.HandleFunc("GET /v1/readyz", h.health.Readiness)

	// auth
	mux.HandleFunc("POST /api/auth/register", h.register.Register)
	mux.HandleFunc("POST /api/auth/login", h.login.Login)
	mux.HandleFunc("DELETE /api/auth/logout", h.logout.Logout)

	// listings: точные маршруты выигрывают у поддеревьев,
	// поэтому search/filters не перехватываются GetOne.
	mux.HandleFunc("GET /api/listings", h.listings.List)
	mux.HandleFunc("HEAD /api/listings", h.listings.List)
	mux.HandleFunc("GET /api/listings/search", h.listings.Search)
	mux.HandleFunc("HEAD /api/listings/search", h.listings.Search)
	mux.HandleFunc("GET /api/listings/filters", h.listings.Filters)
	mux.HandleFunc("GET /api/listings/", h.listings.GetOne)
	mux.HandleFunc("HEAD /api/listings/", h.listings.GetOne)
	mux.Handle("POST /api/listings", guard(h.listings.Create))
	mux.Handle("POST /api/listings/", guard(h.listings.Recommend))
	mux.Handle("PUT /api/listings/", guard(h.listings.Update))
	mux.Handle("DELETE /api/listings/", guard(h.listings.Delete))

	// users
	mux.Handle("GET /api/users/favorites", guard(h.users.ListFavorites))
	mux.Handle("POST /api/users/favorites/", guard(h.users.AddFavorite))
	mux.Handle("DELETE /api/users/favorites/", guard(h.users.RemoveFavorite))
	mux.Handle("GET /api/users/recommendations", guard(h.users.ListRecommendations))

	// swagger ui
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	var root http.Handler = mux
	root = limitBody(root)
	root = mw.Logging(logger)(root)
	root = mw.WithRequestID(root)
	return root
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
