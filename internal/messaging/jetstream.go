package messaging

import (
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	EventsStream = "TODO_WEB_EVENTS"
	eventsMaxAge = 24 * time.Hour
)

// EnsureStreams creates (or validates) the stream holding app.event.> so
// that publishes are acknowledged even when no browser is listening.
func EnsureStreams(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(EventsStream); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return err
		}
		if _, addErr := js.AddStream(&nats.StreamConfig{
			Name:      EventsStream,
			Subjects:  []string{"app.event.>"},
			Retention: nats.LimitsPolicy,
			Storage:   nats.FileStorage,
			MaxAge:    eventsMaxAge,
			Replicas:  1,
		}); addErr != nil {
			return addErr
		}
	}
	return nil
}
