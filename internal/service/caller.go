package service

import (
	"context"

	"github.com/google/uuid"
)

// Caller is the authenticated identity behind a request. Role is taken as given;
// issuing and checking credentials happens upstream.
type Caller struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// Actor is the string stamped on created_by / actor columns.
func (c Caller) Actor() string {
	if c.Username != "" {
		return c.Username
	}
	return c.UserID.String()
}

// Event topics published after a commit.
const (
	TopicRulingCommitted   = "ruling.committed"
	TopicReelFinished      = "reel.finished"
	TopicReelStatusChanged = "reel.status_changed"
)

// EventPublisher receives post-commit notifications. Implementations must not block
// and must swallow their own failures.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any)
}

// ReelLocker serializes work on one reel across processes. It only reduces
// contention; atomic units stay correct without it.
type ReelLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) {}
