package worker

// Dead letter queue.
// Events that could not be pushed after maxPushAttempts land here for manual
// inspection. Uses a Redis list per source queue: dlq:{original_queue}

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed event with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string `json:"original_queue"`
	Event         Event  `json:"event"`
	Reason        string `json:"reason"`
	FailedAt      string `json:"failed_at"` // ISO 8601
	Attempts      int    `json:"attempts"`
}

// SendToDLQ pushes a failed event to the dead letter queue. When Redis itself is
// the failure this will usually fail too, and the event survives only in the log.
func SendToDLQ(rdb Pusher, queue string, ev Event, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		Event:         ev,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().
			Err(err).
			Str("dlq_key", dlqKey).
			RawJSON("event", data).
			Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("topic", ev.Topic).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: event moved to dead letter queue")
}
