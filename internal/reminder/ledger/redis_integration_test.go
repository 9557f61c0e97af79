//go:build integration

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comptrack/pkg/platform/sentinel"
	"comptrack/pkg/testutil/containers"
)

func TestRedisLedger(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	defer rc.Terminate(t)

	l := NewRedis(rc.Client)
	ctx := context.Background()

	key := Key{
		AssignmentID: uuid.New(),
		OffsetDays:   30,
		TargetDate:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	sent, err := l.AlreadySent(ctx, key)
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, l.MarkSent(ctx, key))

	sent, err = l.AlreadySent(ctx, key)
	require.NoError(t, err)
	assert.True(t, sent)

	ttl, err := rc.Client.TTL(ctx, key.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Hour, "entries expire instead of accumulating")
}

func TestRedisLedgerUnavailable(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	defer rc.Terminate(t)

	l := NewRedis(rc.Client)
	require.NoError(t, rc.Client.Close())

	key := Key{AssignmentID: uuid.New(), OffsetDays: 7, TargetDate: time.Now()}

	_, err := l.AlreadySent(context.Background(), key)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
