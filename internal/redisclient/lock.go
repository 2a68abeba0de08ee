package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("bucket lock not acquired")
)

// Locker serializes critical sections on a logical resource bucket,
// e.g. a doctor-hour capacity window or a waitlist department queue.
type Locker interface {
	WithLock(ctx context.Context, bucket string, fn func(ctx context.Context) error) error
}

type redisBucketLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBucketLocker creates a locker that uses a per bucket Redis key
func NewRedisBucketLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisBucketLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisBucketLocker) WithLock(ctx context.Context, bucket string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:%s", bucket)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire bucket lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisBucketLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release bucket lock: %w", err)
	}
	return nil
}
