package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/tech-wizard720/Property-Listing-system/internal/config"
	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	authv1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1/auth"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1/health"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1/listing"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1/user"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, rep Repos, auth AuthDeps, cache domain.Cache, db health.Pinger) *Server {
	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())
	authLog := log.New(logger.Writer(), logger.Prefix()+"[auth] ", logger.Flags())
	listingLog := log.New(logger.Writer(), logger.Prefix()+"[listings] ", logger.Flags())
	userLog := log.New(logger.Writer(), logger.Prefix()+"[users] ", logger.Flags())

	healthHandler := &health.Handler{DB: db, Cache: cache, Log: healthLog}
	registerHandler := &authv1.HandlerRegister{Log: authLog, Users: rep.Users, Hasher: auth.Hasher}
	loginHandler := &authv1.HandlerLogin{Log: authLog, Users: rep.Users, Hasher: auth.Hasher, Tokens: auth.Tokens}
	logoutHandler := &authv1.HandlerLogout{Log: authLog, Tokens: auth.Tokens, Blacklist: auth.Blacklist}
	listingHandler := &listing.Handler{
		Log:      listingLog,
		Listings: rep.Listings,
		Users:    rep.Users,
		Recs:     rep.Recs,
		Cache:    cache,
		CacheTTL: cfg.CacheTTLSeconds,
	}
	userHandler := &user.Handler{
		Log:       userLog,
		Listings:  rep.Listings,
		Favorites: rep.Favorites,
		Recs:      rep.Recs,
		Cache:     cache,
		CacheTTL:  cfg.CacheTTLSeconds,
	}

	h := handlers{
		health:   healthHandler,
		register: registerHandler,
		login:    loginHandler,
		logout:   logoutHandler,
		listings: listingHandler,
		users:    userHandler,
	}

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           newRouter(h, auth, logger),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
