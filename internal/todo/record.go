// Package todo holds the client-side view of todo records: normalization of
// the remote wire shape, sorting and filtering.
package todo

import (
	"strings"
	"time"

	"github.com/todo-1m/webclient/internal/contracts"
)

type Status string

const (
	StatusNotDone Status = "NOT_DONE"
	StatusDone    Status = "DONE"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Rank orders priorities; unknown values rank with LOW.
func (p Priority) Rank() int {
	switch p {
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return 0
	}
}

// ParseStatus upper-cases raw and maps the legacy COMPLETED spelling to DONE.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(StatusNotDone):
		return StatusNotDone, true
	case string(StatusDone), "COMPLETED":
		return StatusDone, true
	default:
		return "", false
	}
}

func ParsePriority(raw string) (Priority, bool) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	default:
		return "", false
	}
}

// Record is the todo shape returned by the remote API, legacy fields included.
type Record struct {
	ID          contracts.ID `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status,omitempty"`
	Completed   *bool        `json:"completed,omitempty"`
	Done        *bool        `json:"done,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Deadline    string       `json:"deadline,omitempty"`
	Tag         []string     `json:"tag,omitempty"`
}

// Todo is a normalized record. Legacy completion flags are folded into
// Status and Complete once, when the record crosses the API boundary.
type Todo struct {
	ID          contracts.ID
	Title       string
	Description string
	Status      Status
	Complete    bool
	Priority    Priority
	// RawPriority is the upper-cased priority as sent, "LOW" when absent.
	RawPriority string
	DeadlineRaw string
	Deadline    time.Time
	HasDeadline bool
	Tags        []string
}

// IsComplete applies the completion rule to a raw record.
func (r Record) IsComplete() bool {
	if r.Completed != nil && *r.Completed {
		return true
	}
	if r.Done != nil && *r.Done {
		return true
	}
	switch strings.ToUpper(strings.TrimSpace(r.Status)) {
	case "DONE", "COMPLETED":
		return true
	}
	return false
}

// Normalize maps a wire record to a Todo. Offset-less deadlines are read in loc.
func Normalize(r Record, loc *time.Location) Todo {
	t := Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Complete:    r.IsComplete(),
		DeadlineRaw: r.Deadline,
	}

	if status, ok := ParseStatus(r.Status); ok {
		t.Status = status
	} else if t.Complete {
		t.Status = StatusDone
	} else {
		t.Status = StatusNotDone
	}

	t.RawPriority = strings.ToUpper(strings.TrimSpace(r.Priority))
	if t.RawPriority == "" {
		t.RawPriority = string(PriorityLow)
	}
	if p, ok := ParsePriority(r.Priority); ok {
		t.Priority = p
	} else {
		t.Priority = PriorityLow
	}

	if ts, ok := ParseTimestamp(r.Deadline, loc); ok {
		t.Deadline = ts
		t.HasDeadline = true
	}

	if len(r.Tag) > 0 {
		t.Tags = append([]string(nil), r.Tag...)
	} else {
		t.Tags = []string{}
	}
	return t
}

// NormalizeAll normalizes a fetched collection, keeping fetch order.
func NormalizeAll(records []Record, loc *time.Location) []Todo {
	out := make([]Todo, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(r, loc))
	}
	return out
}

// TagText is the comma-joined tag list used for display and sorting.
func (t Todo) TagText() string {
	return strings.Join(t.Tags, ",")
}

var offsetLessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an ISO-8601 timestamp. Date-only values are UTC
// midnight; date-times without an offset are read in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, true
	}
	for _, layout := range offsetLessLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, true
		}
	}
	if ts, err := time.Parse(time.DateOnly, raw); err == nil {
		return ts, true
	}
	return time.Time{}, false
}
