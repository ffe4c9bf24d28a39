package todo

import (
	"fmt"
	"strings"
	"time"
)

// FilterConfig narrows a fetched collection. Empty fields do not constrain.
type FilterConfig struct {
	Status   Status
	Priority string
	Start    *time.Time
	End      *time.Time
}

func (f FilterConfig) IsEmpty() bool {
	return f.Status == "" && strings.TrimSpace(f.Priority) == "" && f.Start == nil && f.End == nil
}

// ParseFilter builds a FilterConfig from form or flag input. Range bounds
// accept the same formats as deadlines.
func ParseFilter(status, priority, start, end string, loc *time.Location) (FilterConfig, error) {
	var cfg FilterConfig
	if strings.TrimSpace(status) != "" {
		s, ok := ParseStatus(status)
		if !ok {
			return FilterConfig{}, fmt.Errorf("unknown status filter %q", status)
		}
		cfg.Status = s
	}
	cfg.Priority = strings.TrimSpace(priority)
	if strings.TrimSpace(start) != "" {
		ts, ok := ParseTimestamp(start, loc)
		if !ok {
			return FilterConfig{}, fmt.Errorf("invalid start date %q", start)
		}
		cfg.Start = &ts
	}
	if strings.TrimSpace(end) != "" {
		ts, ok := ParseTimestamp(end, loc)
		if !ok {
			return FilterConfig{}, fmt.Errorf("invalid end date %q", end)
		}
		cfg.End = &ts
	}
	return cfg, nil
}

// Filter keeps records matching every active constraint, preserving order.
// Records whose deadline did not parse always pass the date range.
func Filter(records []Todo, cfg FilterConfig) []Todo {
	if cfg.IsEmpty() {
		out := make([]Todo, len(records))
		copy(out, records)
		return out
	}

	priority := strings.ToUpper(strings.TrimSpace(cfg.Priority))
	out := make([]Todo, 0, len(records))
	for _, t := range records {
		switch cfg.Status {
		case StatusDone:
			if !t.Complete {
				continue
			}
		case StatusNotDone:
			if t.Complete {
				continue
			}
		}
		if priority != "" && t.RawPriority != priority {
			continue
		}
		if t.HasDeadline {
			if cfg.Start != nil && t.Deadline.Before(*cfg.Start) {
				continue
			}
			if cfg.End != nil && t.Deadline.After(*cfg.End) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}
