package listing

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
)

// Кеш никогда не роняет запрос: ошибка транспорта — это промах на чтении
// и no-op на записи/инвалидации. Классификацию (транспорт/битые данные)
// оставляем в логах.

func (h *Handler) cacheGet(ctx context.Context, reqID, op, key string) []byte {
	b, err := h.Cache.Get(ctx, key)
	if err != nil {
		logx.Error(h.Log, reqID, op, "cache get failed, treating as miss", err, "key", key)
		return nil
	}
	return b
}

func (h *Handler) cacheSetJSON(ctx context.Context, reqID, op, key string, v any) []byte {
	buf, err := json.Marshal(v)
	if err != nil {
		logx.Error(h.Log, reqID, op, "cache marshal failed", err, "key", key)
		return nil
	}
	if err := h.Cache.Set(ctx, key, buf, h.CacheTTL); err != nil {
		logx.Error(h.Log, reqID, op, "cache set failed", err, "key", key)
	}
	return buf
}

// invalidateListingCaches сбрасывает точечные ключи и всё семейство
// закешированных поисков. Вызывается строго ПОСЛЕ успешной мутации в БД;
// неудача инвалидации не откатывает мутацию — только лог, кеш доживёт до TTL.
func (h *Handler) invalidateListingCaches(ctx context.Context, reqID, op string, keys ...string) {
	if err := h.Cache.Del(ctx, keys...); err != nil {
		logx.Error(h.Log, reqID, op, "cache invalidation failed", err, "keys", keys)
	}
	if err := h.Cache.DelPattern(ctx, domain.CachePatternSearch); err != nil {
		logx.Error(h.Log, reqID, op, "search cache invalidation failed", err)
	}
}

// filterOptions — cache-aside для перечисления значений фильтров.
// Ключ общий для эндпоинта /filters и для пейлоада поиска. Мутации объявлений
// его намеренно не сбрасывают — свежие значения появятся после истечения TTL.
func (h *Handler) filterOptions(ctx context.Context, reqID, op string) (domain.FilterOptions, error) {
	key := domain.CacheKeyFilterOptions()

	if b := h.cacheGet(ctx, reqID, op, key); b != nil {
		var opts domain.FilterOptions
		if err := json.Unmarshal(b, &opts); err == nil {
			return opts, nil
		} else {
			logx.Error(h.Log, reqID, op, "cache decode failed, treating as miss", err, "key", key)
		}
	}

	opts, err := h.Listings.ListingFilterOptions(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	h.cacheSetJSON(ctx, reqID, op, key, opts)
	return opts, nil
}

// writeCachedEnvelope отдаёт закешированный конверт как есть
func writeCachedEnvelope(w http.ResponseWriter, r *http.Request, b []byte) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
