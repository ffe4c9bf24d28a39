// Package notify tells open browser tabs that the todo collection changed.
// Mutations publish a TodoChanged event to NATS; every SSE connection
// listens on the subject of the collection it shows.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nuid"

	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/platform/metrics"
	"github.com/todo-1m/webclient/internal/platform/natsutil"
	"github.com/todo-1m/webclient/internal/sharding"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionToggled = "toggled"
	ActionDeleted = "deleted"
)

// Notifier publishes change events. A nil Notifier is disabled and
// silently drops events.
type Notifier struct {
	Publisher natsutil.Publisher
	Logger    *log.Logger
	NewID     func() string
	Now       func() time.Time
}

func NewNotifier(publisher natsutil.Publisher, logger *log.Logger) *Notifier {
	return &Notifier{
		Publisher: publisher,
		Logger:    logger,
		NewID:     nuid.Next,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (n *Notifier) Enabled() bool { return n != nil && n.Publisher != nil }

// Publish announces that userID changed todoID. Failures are logged and
// returned; callers treat them as non-fatal since the mutation already
// succeeded.
func (n *Notifier) Publish(_ context.Context, userID contracts.ID, action string, todoID contracts.ID, title string) error {
	if !n.Enabled() {
		return nil
	}
	subject := sharding.UserEventSubject(userID.String())
	event := contracts.TodoChanged{
		EventID:    n.NewID(),
		UserID:     sharding.SubjectToken(userID.String()),
		TodoID:     todoID.String(),
		Action:     action,
		Title:      title,
		OccurredAt: n.Now(),
		ShardID:    sharding.GetShardID(sharding.SubjectToken(userID.String())),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode todo change: %w", err)
	}
	if err := n.Publisher.Publish(subject, payload); err != nil {
		metrics.NotificationsPublished.WithLabelValues(action, "error").Inc()
		if n.Logger != nil {
			n.Logger.Warn("publish todo change failed", "subject", subject, "action", action, "err", err)
		}
		return fmt.Errorf("publish todo change: %w", err)
	}
	metrics.NotificationsPublished.WithLabelValues(action, "ok").Inc()
	return nil
}
