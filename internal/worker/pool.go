package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventQueuePrefix namespaces the Redis lists events land in: events:{topic}.
const EventQueuePrefix = "events:"

const (
	defaultBuffer   = 256
	maxPushAttempts = 3
	pushTimeout     = 2 * time.Second
)

// Event is the envelope for every published domain event.
type Event struct {
	Topic      string          `json:"topic"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Pusher is the slice of the Redis client the dispatcher needs.
type Pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Dispatcher publishes committed domain events to Redis lists. Publish never
// blocks the request path: events go into a bounded buffer drained by a small
// worker pool, and a full buffer drops the event with a warning.
type Dispatcher struct {
	rdb    Pusher
	queue  chan Event
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

func NewDispatcher(rdb Pusher, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Dispatcher{rdb: rdb, queue: make(chan Event, buffer), closed: make(chan struct{})}
}

// Publish encodes payload and queues it for topic.
func (d *Dispatcher) Publish(_ context.Context, topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("events: failed to marshal payload")
		return
	}
	ev := Event{Topic: topic, Payload: data, OccurredAt: time.Now().UTC()}
	select {
	case <-d.closed:
		log.Warn().Str("topic", topic).Msg("events: dispatcher stopped, event dropped")
	case d.queue <- ev:
	default:
		log.Warn().Str("topic", topic).Msg("events: buffer full, event dropped")
	}
}

// Start launches numWorkers goroutines draining the buffer until ctx is done.
// Events still buffered at shutdown are flushed before Wait returns.
func (d *Dispatcher) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		d.wg.Add(1)
		go d.run(ctx, i)
	}
	go func() {
		<-ctx.Done()
		d.once.Do(func() { close(d.closed) })
	}()
	log.Info().Msgf("event dispatcher started with %d workers", numWorkers)
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) run(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.queue:
			d.push(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-d.queue:
					d.push(ev)
				default:
					log.Info().Msgf("event worker %d shutting down", id)
					return
				}
			}
		}
	}
}

func (d *Dispatcher) push(ev Event) {
	encoded, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("topic", ev.Topic).Msg("events: failed to marshal envelope")
		return
	}
	queue := EventQueuePrefix + ev.Topic

	var lastErr error
	for attempt := 1; attempt <= maxPushAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		lastErr = d.rdb.LPush(ctx, queue, encoded).Err()
		cancel()
		if lastErr == nil {
			return
		}
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	SendToDLQ(d.rdb, queue, ev, lastErr.Error(), maxPushAttempts)
}
