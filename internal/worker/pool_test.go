package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushed struct {
	key   string
	value []byte
}

// fakePusher records LPush calls; keys listed in failing always error.
type fakePusher struct {
	mu      sync.Mutex
	calls   []pushed
	failing map[string]bool
}

func (f *fakePusher) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pushed{key: key, value: values[0].([]byte)})
	if f.failing[key] {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	return redis.NewIntResult(int64(len(f.calls)), nil)
}

func (f *fakePusher) byKey(key string) []pushed {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []pushed
	for _, c := range f.calls {
		if c.key == key {
			out = append(out, c)
		}
	}
	return out
}

func TestDispatcher_FlushesOnShutdown(t *testing.T) {
	rdb := &fakePusher{}
	d := NewDispatcher(rdb, 16)

	d.Publish(context.Background(), "ruling.committed", map[string]any{"reel_no": "R-1", "sheets": 5000})
	d.Publish(context.Background(), "reel.finished", map[string]any{"reel_no": "R-1"})

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx, 2)
	cancel()
	d.Wait()

	committed := rdb.byKey(EventQueuePrefix + "ruling.committed")
	require.Len(t, committed, 1)
	assert.Len(t, rdb.byKey(EventQueuePrefix+"reel.finished"), 1)

	var ev Event
	require.NoError(t, json.Unmarshal(committed[0].value, &ev))
	assert.Equal(t, "ruling.committed", ev.Topic)
	assert.JSONEq(t, `{"reel_no":"R-1","sheets":5000}`, string(ev.Payload))
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestDispatcher_FailedPushGoesToDLQ(t *testing.T) {
	queue := EventQueuePrefix + "reel.status_changed"
	rdb := &fakePusher{failing: map[string]bool{queue: true}}
	d := NewDispatcher(rdb, 4)

	d.Publish(context.Background(), "reel.status_changed", map[string]string{"to": "Hold"})
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx, 1)
	cancel()
	d.Wait()

	assert.Len(t, rdb.byKey(queue), maxPushAttempts)
	dead := rdb.byKey(DLQPrefix + queue)
	require.Len(t, dead, 1)

	var entry DLQEntry
	require.NoError(t, json.Unmarshal(dead[0].value, &entry))
	assert.Equal(t, queue, entry.OriginalQueue)
	assert.Equal(t, maxPushAttempts, entry.Attempts)
	assert.Equal(t, "connection refused", entry.Reason)
}

func TestDispatcher_FullBufferDrops(t *testing.T) {
	rdb := &fakePusher{}
	d := NewDispatcher(rdb, 1)

	d.Publish(context.Background(), "ruling.committed", 1)
	d.Publish(context.Background(), "ruling.committed", 2)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx, 1)
	cancel()
	d.Wait()

	assert.Len(t, rdb.byKey(EventQueuePrefix+"ruling.committed"), 1)
}

func TestDispatcher_UnencodablePayloadIsSkipped(t *testing.T) {
	d := NewDispatcher(&fakePusher{}, 1)
	d.Publish(context.Background(), "ruling.committed", make(chan int))
	assert.Empty(t, d.queue)
}
