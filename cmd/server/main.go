package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/tech-wizard720/Property-Listing-system/internal/app"
)

// @title           Property Listing API
// @version         1.0
// @description     Бэкенд объявлений недвижимости: поиск с кэшем, избранное, рекомендации.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
