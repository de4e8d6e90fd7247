package queue

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/model"
)

type mockPublisher struct {
	PublishFunc func(ctx context.Context, stream string, event ActivityEvent) (string, error)
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event ActivityEvent) (string, error) {
	return m.PublishFunc(ctx, stream, event)
}

func TestNewActivityEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := &model.Notification{ID: "n1", Action: model.ActionLike}

	e := NewActivityEvent("Twitter", model.Activity{
		Kind:         model.ActivityNotification,
		Actor:        "bob",
		Receiver:     "alice",
		PostID:       "p1",
		Message:      "notification to alice: bob liked your post",
		At:           at,
		Notification: n,
	})

	assert.Equal(t, model.ActivityNotification, e.Type)
	assert.Equal(t, "Twitter", e.Network)
	assert.Equal(t, at.UnixMilli(), e.Timestamp)
	assert.Equal(t, "n1", e.NotificationID)
	assert.Equal(t, model.ActionLike, e.Action)

	values, err := e.ToMap()
	require.NoError(t, err)
	assert.Equal(t, model.ActivityNotification, values["type"])

	parsed, err := ParseActivityEvent(values)
	require.NoError(t, err)
	assert.Equal(t, e, parsed)
}

func TestParseActivityEvent_Invalid(t *testing.T) {
	_, err := ParseActivityEvent(map[string]interface{}{"type": "login"})
	assert.Error(t, err)

	_, err = ParseActivityEvent(map[string]interface{}{"data": "{not json"})
	assert.Error(t, err)
}

func TestActivitySink_PublishesInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []ActivityEvent
	pub := &mockPublisher{
		PublishFunc: func(ctx context.Context, stream string, event ActivityEvent) (string, error) {
			assert.Equal(t, "stream:test", stream)
			mu.Lock()
			got = append(got, event)
			mu.Unlock()
			return "1-0", nil
		},
	}

	sink := NewActivitySink(pub, "Twitter", "stream:test")
	go sink.Run(context.Background())

	sink.Record(model.Activity{Kind: model.ActivityLogin, Actor: "alice", Message: "alice connected"})
	sink.Record(model.Activity{Kind: model.ActivityFollow, Actor: "bob", Receiver: "alice", Message: "bob started following alice"})
	sink.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, "alice connected", got[0].Message)
	assert.Equal(t, "alice", got[1].Receiver)

	// Entries after Close are ignored.
	sink.Record(model.Activity{Kind: model.ActivityLogout, Actor: "alice"})
	sink.Close()
}

func TestActivitySink_PublishErrorsAreSwallowed(t *testing.T) {
	calls := 0
	pub := &mockPublisher{
		PublishFunc: func(ctx context.Context, stream string, event ActivityEvent) (string, error) {
			calls++
			return "", errors.New("connection refused")
		},
	}

	sink := NewActivitySink(pub, "Twitter", "")
	assert.Equal(t, StreamActivity, sink.stream)
	go sink.Run(context.Background())

	sink.Record(model.Activity{Kind: model.ActivityLogin, Actor: "alice"})
	sink.Record(model.Activity{Kind: model.ActivityLogin, Actor: "bob"})
	sink.Close()

	assert.Equal(t, 2, calls)
}

func TestActivitySink_DropsWhenFull(t *testing.T) {
	pub := &mockPublisher{
		PublishFunc: func(ctx context.Context, stream string, event ActivityEvent) (string, error) {
			return "1-0", nil
		},
	}
	sink := NewActivitySink(pub, "Twitter", "")

	// Run is not started yet, so nothing drains the buffer.
	for i := 0; i < defaultSinkBuffer+3; i++ {
		sink.Record(model.Activity{Kind: model.ActivityLogin, Actor: "alice"})
	}
	assert.Equal(t, int64(3), sink.Dropped())

	go sink.Run(context.Background())
	sink.Close()
}

// =============================================================================
// Redis integration
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	// DB 1 keeps test data away from dev data
	opts.DB = 1

	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestRedisStream_PublishReadAck(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	const stream, group, consumer = "stream:activity:test", "tail_test", "tail-1"

	cons := NewConsumer(client)
	require.NoError(t, cons.EnsureGroup(ctx, stream, group, "0"))
	require.NoError(t, cons.EnsureGroup(ctx, stream, group, "0"), "second call tolerates BUSYGROUP")

	pub := NewPublisher(client, 1000)
	event := NewActivityEvent("Twitter", model.Activity{
		Kind:    model.ActivityPublish,
		Actor:   "alice",
		PostID:  "p1",
		Message: "alice published a post:\n\"hi\"\n",
		At:      time.Now(),
	})
	id, err := pub.Publish(ctx, stream, event)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs, err := cons.Read(ctx, stream, group, consumer, 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, event, msgs[0].Event)

	pending, err := cons.ReadPending(ctx, stream, group, consumer, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "unacked message stays pending")

	require.NoError(t, cons.Ack(ctx, stream, group, id))
	pending, err = cons.ReadPending(ctx, stream, group, consumer, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	msgs, err = cons.Read(ctx, stream, group, consumer, 10, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, msgs, "timeout returns no messages")
}

func TestRedisStream_MalformedEntriesAreAcked(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	const stream, group, consumer = "stream:activity:malformed", "tail_test", "tail-1"

	cons := NewConsumer(client)
	require.NoError(t, cons.EnsureGroup(ctx, stream, group, "0"))

	for i := 0; i < 3; i++ {
		require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: map[string]interface{}{"type": "login"},
		}).Err())
	}
	good := NewActivityEvent("Twitter", model.Activity{Kind: model.ActivityLogin, Actor: "alice", At: time.Now()})
	goodID, err := NewPublisher(client, 1000).Publish(ctx, stream, good)
	require.NoError(t, err)

	// The first batch is all malformed.
	msgs, err := cons.Read(ctx, stream, group, consumer, 2, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	msgs, err = cons.Read(ctx, stream, group, consumer, 2, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, goodID, msgs[0].ID)

	// Malformed entries were acked on delivery, so only the good one is pending.
	pending, err := cons.ReadPending(ctx, stream, group, consumer, 2)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, goodID, pending[0].ID)

	summary, err := client.XPending(ctx, stream, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Count, "only the parseable entry is still pending")
}
