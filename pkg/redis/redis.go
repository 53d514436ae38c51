// Package redis обёртка над go-redis: публикация событий и счетчики ограничения частоты запросов
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Options параметры подключения
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Client клиент Redis
type Client struct {
	rdb *goredis.Client
}

// NewClient создает подключение и проверяет его через Ping
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Publish отправляет сообщение в канал
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// CheckRateLimit считает запросы по ключу в фиксированном окне
// Возвращает true, если лимит ещё не превышен
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	windowKey := fmt.Sprintf("%s:%d", key, time.Now().UnixNano()/int64(window))

	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= int64(limit), nil
}

// Close закрывает соединение
func (c *Client) Close() error {
	return c.rdb.Close()
}
