package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		Action:  ActionReminderSent,
		Actor:   "scheduler",
		Subject: "Quarterly Tax Filing",
	})
	require.NoError(t, err)

	events, err := pub.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionReminderSent, events[0].Action)
	assert.NotZero(t, events[0].ID, "events are stamped with an ID")
	assert.False(t, events[0].Timestamp.IsZero(), "events are stamped with a timestamp")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), Event{Action: ActionReminderSent, Actor: "scheduler"})
		require.NoError(t, err)
	}

	// Close must flush everything still sitting in the buffer.
	pub.Close()

	events, err := store.Recent(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestInMemoryStore_RecentNewestFirst(t *testing.T) {
	store := NewInMemoryStore()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := range 3 {
		require.NoError(t, store.Append(context.Background(), Event{
			Action:    ActionReminderSent,
			Subject:   string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, err := store.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].Subject)
	assert.Equal(t, "b", events[1].Subject)
}
