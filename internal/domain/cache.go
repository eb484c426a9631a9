package domain

import "context"

// Ключи кеша — единое место, чтобы не расползались по коду.
func CacheKeyListing(id ListingID) string        { return "listing:" + id.String() }
func CacheKeyAllListings() string                { return "listings:all" }
func CacheKeySearch(queryHash string) string     { return "listings:search:" + queryHash }
func CacheKeyFilterOptions() string              { return "listings:filters" }
func CacheKeyFavorites(user UserID) string       { return "favorites:" + user.String() }
func CacheKeyRecommendations(user UserID) string { return "recommendations:" + user.String() }
func CacheKeyTokenJTI(jti string) string         { return "jti:" + jti }

// Паттерны для массовой инвалидации семейств ключей
const (
	CachePatternSearch = "listings:search:*"
)

// Ключи, сбрасываемые при любой мутации объявлений. Перечисление фильтров
// (listings:filters) намеренно НЕ входит: оно живёт до истечения TTL.
func ListingInvalidationKeys(id ListingID) []string {
	return []string{CacheKeyListing(id), CacheKeyAllListings()}
}

// Простой k/v интерфейс. Реализация — Redis.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Del(ctx context.Context, keys ...string) error
	// Инвалидация по маске: SCAN + DEL, два рейса в Redis, НЕ атомарно.
	// Ключи, записанные между сканом и удалением, доживут до TTL.
	DelPattern(ctx context.Context, pattern string) error
	SetNX(ctx context.Context, key string, val []byte, ttlSeconds int) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Ping(context.Context) error
	Close()
}
