package locking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/nametracker/nametracker/config"
)

// releaseScript deletes the key only when this locker still owns it, so a
// lock that expired and was re-acquired elsewhere is never released by the
// stale holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a shared Redis via SET NX with a TTL.
type RedisLocker struct {
	client *redis.Client
	owner  string
}

// NewRedisLocker creates a locker from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func NewRedisLocker(cfg *config.RedisConfig) (*RedisLocker, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis URL")
	}

	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}

	return &RedisLocker{
		client: client,
		owner:  uuid.NewString(),
	}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, l.owner, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "acquire lock")
	}
	return ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	err := releaseScript.Run(ctx, l.client, []string{key}, l.owner).Err()
	if err != nil && err != redis.Nil {
		return errors.Wrap(err, "release lock")
	}
	return nil
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
