package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/1broseidon/zonetile/internal/config"
)

// Redis stores each screen as a hash of application name to JSON record,
// under "<prefix>:positions:<screen>".
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedis connects lazily; the first command dials.
func NewRedis(cfg config.RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.Timeout,
	})
	return NewRedisWithClient(client, cfg.Prefix, cfg.Timeout)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient, prefix string, timeout time.Duration) *Redis {
	if prefix == "" {
		prefix = "zonetile"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Redis{client: client, prefix: prefix, timeout: timeout}
}

func (r *Redis) key(screenKey string) string {
	return r.prefix + ":positions:" + screenKey
}

func (r *Redis) Load(ctx context.Context, screenKey string) (Positions, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	fields, err := r.client.HGetAll(ctx, r.key(screenKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load %q: %w", screenKey, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("screen %q: %w", screenKey, ErrNotFound)
	}
	positions := make(Positions, len(fields))
	for app, raw := range fields {
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("redis load %q: app %q: %w", screenKey, app, err)
		}
		positions[app] = rec
	}
	return positions, nil
}

// Save replaces the screen's hash atomically.
func (r *Redis) Save(ctx context.Context, screenKey string, positions Positions) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	values := make(map[string]any, len(positions))
	for app, rec := range positions {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("redis save %q: app %q: %w", screenKey, app, err)
		}
		values[app] = string(data)
	}

	key := r.key(screenKey)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %q: %w", screenKey, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
