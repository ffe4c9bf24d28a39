package todo

import (
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortNone        SortKey = ""
	SortTitle       SortKey = "title"
	SortDescription SortKey = "description"
	SortStatus      SortKey = "status"
	SortPriority    SortKey = "priority"
	SortDeadline    SortKey = "deadline"
	SortTag         SortKey = "tag"
)

// SortKeys lists the sortable columns in display order.
func SortKeys() []SortKey {
	return []SortKey{SortTitle, SortDescription, SortStatus, SortPriority, SortDeadline, SortTag}
}

func ParseSortKey(raw string) (SortKey, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return SortNone, true
	}
	for _, key := range SortKeys() {
		if string(key) == raw {
			return key, true
		}
	}
	return SortNone, false
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Descending)) {
		return Descending
	}
	return Ascending
}

type SortConfig struct {
	Key       SortKey
	Direction Direction
}

// Toggle returns the config after the user picks key: the same key flips
// direction, a different key starts ascending.
func (c SortConfig) Toggle(key SortKey) SortConfig {
	if c.Key == key && key != SortNone {
		if c.Direction == Descending {
			return SortConfig{Key: key, Direction: Ascending}
		}
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

// DefaultLanguage drives string collation for title, description and tag.
var DefaultLanguage = language.English

// Sort orders records by cfg using the current time for deadline distance.
func Sort(records []Todo, cfg SortConfig) []Todo {
	return SortAt(records, cfg, time.Now())
}

// SortAt returns a new, stably ordered slice. Ties always fall back to the
// original position; input is never modified.
func SortAt(records []Todo, cfg SortConfig, now time.Time) []Todo {
	out := make([]Todo, len(records))
	copy(out, records)
	if cfg.Key == SortNone || len(out) < 2 {
		return out
	}

	type indexed struct {
		todo  Todo
		index int
	}
	items := make([]indexed, len(out))
	for i, t := range out {
		items[i] = indexed{todo: t, index: i}
	}

	desc := cfg.Direction == Descending
	var compare func(a, b Todo) int

	switch cfg.Key {
	case SortStatus:
		compare = func(a, b Todo) int {
			if a.Complete == b.Complete {
				return 0
			}
			// completed first when ascending
			c := 1
			if a.Complete {
				c = -1
			}
			if desc {
				c = -c
			}
			return c
		}
	case SortTitle, SortDescription, SortTag:
		col := collate.New(DefaultLanguage)
		text := stringField(cfg.Key)
		compare = func(a, b Todo) int {
			c := col.CompareString(text(a), text(b))
			if desc {
				c = -c
			}
			return c
		}
	case SortPriority:
		compare = func(a, b Todo) int {
			// higher rank first when ascending
			c := b.Priority.Rank() - a.Priority.Rank()
			if desc {
				c = -c
			}
			return c
		}
	case SortDeadline:
		compare = func(a, b Todo) int {
			da, db := deadlineDistance(a, now), deadlineDistance(b, now)
			switch {
			case da == db:
				return 0
			case math.IsInf(da, 1):
				return 1
			case math.IsInf(db, 1):
				return -1
			}
			c := -1
			if da > db {
				c = 1
			}
			if desc {
				c = -c
			}
			return c
		}
	default:
		return out
	}

	slices.SortStableFunc(items, func(a, b indexed) int {
		if c := compare(a.todo, b.todo); c != 0 {
			return c
		}
		return a.index - b.index
	})

	for i, item := range items {
		out[i] = item.todo
	}
	return out
}

func stringField(key SortKey) func(Todo) string {
	switch key {
	case SortDescription:
		return func(t Todo) string { return t.Description }
	case SortTag:
		return Todo.TagText
	default:
		return func(t Todo) string { return t.Title }
	}
}

func deadlineDistance(t Todo, now time.Time) float64 {
	if !t.HasDeadline {
		return math.Inf(1)
	}
	return math.Abs(float64(t.Deadline.Sub(now)))
}
