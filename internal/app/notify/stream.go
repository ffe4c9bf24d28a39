package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/todo-1m/webclient/internal/platform/metrics"
)

const (
	EventName          = "todos-changed"
	DefaultHeartbeat   = 25 * time.Second
	connectedEventName = "connected"
)

// Stream writes SSE frames for every change on subject until ctx ends.
// It answers 204 when the hub is disabled so EventSource stops retrying.
func Stream(ctx context.Context, w http.ResponseWriter, hub *Hub, subject string, heartbeat time.Duration) {
	if hub == nil || hub.subscriber == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	changes, unsubscribe, err := hub.Subscribe(subject)
	if err != nil {
		http.Error(w, "stream subscription failed", http.StatusServiceUnavailable)
		return
	}
	defer unsubscribe()

	metrics.SSEClients.Inc()
	defer metrics.SSEClients.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "retry: 5000\nevent: %s\ndata: {}\n\n", connectedEventName)
	flusher.Flush()

	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case change := <-changes:
			data, err := json.Marshal(frame{
				Action: change.Event.Action,
				TodoID: change.Event.TodoID,
				Title:  change.Event.Title,
				Count:  change.Count,
			})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", change.Event.EventID, EventName, data)
			flusher.Flush()
		}
	}
}

type frame struct {
	Action string `json:"action"`
	TodoID string `json:"todo_id,omitempty"`
	Title  string `json:"title,omitempty"`
	Count  int    `json:"count"`
}
