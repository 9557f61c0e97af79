package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"comptrack/pkg/platform/sentinel"
)

// Entries only need to survive same-day re-runs; two days covers clock
// skew between scheduler hosts.
const entryTTL = 48 * time.Hour

// Redis is a Ledger shared across scheduler instances. MarkSent uses
// SETNX so concurrent runs cannot both claim the same key.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (l *Redis) AlreadySent(ctx context.Context, key Key) (bool, error) {
	n, err := l.client.Exists(ctx, key.String()).Result()
	if err != nil {
		return false, fmt.Errorf("ledger exists %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return n > 0, nil
}

func (l *Redis) MarkSent(ctx context.Context, key Key) error {
	if err := l.client.SetNX(ctx, key.String(), "1", entryTTL).Err(); err != nil {
		return fmt.Errorf("ledger mark %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}
