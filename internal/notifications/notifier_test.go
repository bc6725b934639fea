package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"boardapi/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishBoardEvent(context.Background(), models.BoardEvent{Type: models.EventBoardCreated}))
	assert.NoError(t, n.StartBoardSubscriber(context.Background(), func(string) {
		t.Fatal("no messages expected")
	}))
}

func TestNotifier_PublishReachesSubscriber(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 1)
	require.NoError(t, n.StartBoardSubscriber(ctx, func(payload string) {
		payloads <- payload
	}))

	ev := models.BoardEvent{
		Type:       models.EventBoardCreated,
		BoardID:    12,
		UserID:     3,
		Category:   "free",
		Title:      "hello",
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, n.PublishBoardEvent(context.Background(), ev))

	select {
	case payload := <-payloads:
		var got models.BoardEvent
		require.NoError(t, json.Unmarshal([]byte(payload), &got))
		assert.Equal(t, ev.BoardID, got.BoardID)
		assert.Equal(t, ev.Type, got.Type)
		assert.True(t, ev.OccurredAt.Equal(got.OccurredAt))
	case <-time.After(testEventuallyTimeout):
		t.Fatal("event was not delivered")
	}
}

func TestHub_StartWiringForwardsEvents(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	c, err := hub.Register(0, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishBoardEvent(context.Background(), models.BoardEvent{
		Type:    models.EventBoardDeleted,
		BoardID: 5,
	}))

	assert.Eventually(t, func() bool {
		return len(c.Send) == 1
	}, testEventuallyTimeout, testPollInterval)

	msg := <-c.Send
	assert.Contains(t, string(msg), `"type":"board_deleted"`)
	_ = hub.Shutdown(context.Background())
}
