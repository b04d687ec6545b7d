package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const chargeLockKey = "pecal:billing:charge_lock"

// releaseLockScript deletes the lock only if it still holds the caller's token,
// so a run that outlived its TTL cannot drop a newer holder's lock.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrLockNotHeld is returned by Release when the lock expired or was taken over.
var ErrLockNotHeld = errors.New("charge lock not held")

// ChargeLock serializes recurring charge runs across processes.
type ChargeLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewChargeLock creates a lock held for at most ttl.
func NewChargeLock(client *redis.Client, ttl time.Duration) *ChargeLock {
	return &ChargeLock{
		client: client,
		key:    chargeLockKey,
		ttl:    ttl,
	}
}

// TryAcquire takes the lock with SetNX. It returns the release token, or an
// empty token if another run holds the lock.
func (l *ChargeLock) TryAcquire(ctx context.Context) (string, error) {
	token, err := newLockToken()
	if err != nil {
		return "", err
	}

	acquired, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire charge lock: %w", err)
	}
	if !acquired {
		return "", nil
	}
	return token, nil
}

// Release frees the lock if token still owns it.
func (l *ChargeLock) Release(ctx context.Context, token string) error {
	n, err := releaseLockScript.Run(ctx, l.client, []string{l.key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release charge lock: %w", err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func newLockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
