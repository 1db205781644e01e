package adapter

import (
	"book-explorer/internal/core/model"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient connects and pings once so a bad address fails at startup.
func NewRedisClient(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", o.Addr, err)
	}
	return client, nil
}

// RedisSlot stores one value under one key. ttl == 0 keeps it forever
// (durable); a positive ttl makes it session-scoped and refreshes on every write.
type RedisSlot struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewRedisSlot(client redis.Cmdable, key string, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, key: key, ttl: ttl}
}

// SessionKey namespaces a session-scoped key by session id.
func SessionKey(sessionID, key string) string {
	return fmt.Sprintf("bookexplorer:session:%s:%s", sessionID, key)
}

func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis slot: get %s: %w", s.key, err)
	}
	return b, nil
}

func (s *RedisSlot) Store(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis slot: set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisSlot) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis slot: del %s: %w", s.key, err)
	}
	return nil
}
