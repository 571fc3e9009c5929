package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"pos-nfc-api/internal/config"
	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
)

const cardKeyPrefix = "card:"

type cardCache struct {
	client goredis.Cmdable
}

// NewClient builds a client from REDIS_URL when set, otherwise from the
// address settings, and pings it once.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	opts := &goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := goredis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewCardCache(client goredis.Cmdable) ports.CardCache {
	return &cardCache{client: client}
}

func cardKey(id int64) string {
	return cardKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *cardCache) Get(ctx context.Context, id int64) (*domain.Card, error) {
	raw, err := c.client.Get(ctx, cardKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached card: %w", err)
	}

	var card domain.Card
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("decode cached card: %w", err)
	}
	return &card, nil
}

func (c *cardCache) Set(ctx context.Context, card *domain.Card, ttl time.Duration) error {
	raw, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("encode card: %w", err)
	}
	if err := c.client.Set(ctx, cardKey(card.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache card: %w", err)
	}
	return nil
}

func (c *cardCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, cardKey(id)).Err(); err != nil {
		return fmt.Errorf("evict cached card: %w", err)
	}
	return nil
}
