package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pecal-inc/pecal/internal/shared/logger"
)

const (
	// alertKeyPrefix is the prefix for all alert deduplication keys
	alertKeyPrefix = "pecal:billing:alert:"
	// DefaultAlertCooldown applies when no cooldown is configured
	DefaultAlertCooldown = 30 * time.Minute
)

// AlertSender delivers one operator alert.
type AlertSender interface {
	SendAlert(ctx context.Context, subject, body string) error
}

// AlertDeduplicator drops repeats of an identical alert within the cooldown,
// across every process sharing the Redis instance.
type AlertDeduplicator struct {
	client   *redis.Client
	next     AlertSender
	cooldown time.Duration
	logger   logger.Interface
}

func NewAlertDeduplicator(client *redis.Client, next AlertSender, cooldown time.Duration, log logger.Interface) *AlertDeduplicator {
	if cooldown <= 0 {
		cooldown = DefaultAlertCooldown
	}
	return &AlertDeduplicator{
		client:   client,
		next:     next,
		cooldown: cooldown,
		logger:   log,
	}
}

// buildKey hashes subject and body so the key stays short.
// Format: pecal:billing:alert:{sha256 prefix}
func (d *AlertDeduplicator) buildKey(subject, body string) string {
	sum := sha256.Sum256([]byte(subject + "\n" + body))
	return alertKeyPrefix + hex.EncodeToString(sum[:16])
}

// SendAlert forwards the alert unless the same one went out within the
// cooldown. Redis errors never suppress an alert.
func (d *AlertDeduplicator) SendAlert(ctx context.Context, subject, body string) error {
	key := d.buildKey(subject, body)

	// SetNX is atomic: only one instance wins the cooldown slot
	acquired, err := d.client.SetNX(ctx, key, "1", d.cooldown).Result()
	if err != nil {
		d.logger.Warnw("alert deduplication unavailable, sending anyway", "subject", subject, "error", err)
		return d.next.SendAlert(ctx, subject, body)
	}

	if !acquired {
		d.logger.Debugw("duplicate billing alert suppressed", "subject", subject)
		return nil
	}

	if err := d.next.SendAlert(ctx, subject, body); err != nil {
		// free the slot so the next occurrence retries delivery
		if delErr := d.client.Del(ctx, key).Err(); delErr != nil {
			d.logger.Warnw("failed to clear alert cooldown", "subject", subject, "error", delErr)
		}
		return err
	}

	return nil
}
