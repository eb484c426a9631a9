package redisx

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Классификация отказов кеша: транспорт отделяем от битых данных,
// чтобы вызывающая сторона могла залогировать причину. Наружу (клиенту API)
// и то и другое всё равно деградирует до промаха.
var (
	ErrTransport = errors.New("cache: transport")
	ErrDecode    = errors.New("cache: decode")
)

type Cache struct {
	rdb    *redis.Client
	logger *log.Logger
}

type Config struct {
	Addr     string
	DB       int
	Password string
}

func New(cfg Config, logger *log.Logger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Cache{rdb: rdb, logger: logger}
}

func (c *Cache) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.logger.Printf("PING failed: %v", err)
	} else {
		c.logger.Println("PING ok")
	}
	return err
}

func (c *Cache) Close() {
	if c.rdb == nil {
		c.logger.Println("nothing to close")
		return
	}

	if err := c.rdb.Close(); err != nil {
		c.logger.Printf("error while closing: %v", err)
		return
	}

	c.logger.Println("closed")
}

// Get возвращает (nil, nil) на промахе. Ошибка — всегда ErrTransport-обёртка.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Printf("GET %q: not found", key)
		return nil, nil
	}
	if err != nil {
		c.logger.Printf("GET %q: error: %v", key, err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c.logger.Printf("GET %q: hit (%d bytes)", key, len(b))
	return b, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttlSeconds int) error {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	err := c.rdb.Set(ctx, key, val, ttl).Err()
	if err != nil {
		c.logger.Printf("SET %q failed: %v", key, err)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c.logger.Printf("SET %q ok (ttl=%s)", key, ttl)
	return nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Printf("DEL %v failed: %v", keys, err)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c.logger.Printf("DEL %v: deleted=%d", keys, n)
	return nil
}

// DelPattern удаляет все ключи по маске (например "listings:search:*").
// SCAN + пачечный DEL: два сетевых рейса, НЕ атомарно. Ключи, появившиеся
// между сканом и удалением, не зацепит — доживут до TTL или следующей
// инвалидации.
func (c *Cache) DelPattern(ctx context.Context, pattern string) error {
	var (
		batch   []string
		deleted int64
		cursor  uint64
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.logger.Printf("SCAN %q failed: %v", pattern, err)
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		batch = append(batch, keys...)
		if len(batch) >= 500 {
			n, err := c.rdb.Del(ctx, batch...).Result()
			if err != nil {
				c.logger.Printf("DEL (pattern %q) failed: %v", pattern, err)
				return fmt.Errorf("%w: %v", ErrTransport, err)
			}
			deleted += n
			batch = batch[:0]
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(batch) > 0 {
		n, err := c.rdb.Del(ctx, batch...).Result()
		if err != nil {
			c.logger.Printf("DEL (pattern %q) failed: %v", pattern, err)
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		deleted += n
	}
	c.logger.Printf("DEL pattern %q: deleted=%d", pattern, deleted)
	return nil
}

// SetNX устанавливает значение только если ключ ещё не существует.
func (c *Cache) SetNX(ctx context.Context, key string, val []byte, ttlSeconds int) (bool, error) {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	ok, err := c.rdb.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		c.logger.Printf("SETNX %q failed: %v", key, err)
		return false, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if ok {
		c.logger.Printf("SETNX %q ok (ttl=%s)", key, ttl)
	} else {
		c.logger.Printf("SETNX %q skipped (already exists)", key)
	}
	return ok, nil
}

// Exists проверяет наличие ключа.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		c.logger.Printf("EXISTS %q failed: %v", key, err)
		return false, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if n == 1 {
		c.logger.Printf("EXISTS %q: true", key)
		return true, nil
	}
	c.logger.Printf("EXISTS %q: false", key)
	return false, nil
}
