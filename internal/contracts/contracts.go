package contracts

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ID is an identifier issued by the remote API. The backend emits numeric ids,
// older deployments emit strings; both decode to the same textual form.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// User is an account as returned by the remote users API.
type User struct {
	ID       ID     `json:"id"`
	Name     string `json:"name,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// TodoChanged is published by the web frontend after a successful mutation
// and consumed by the SSE stream of every session watching the same subject.
type TodoChanged struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	TodoID     string    `json:"todo_id"`
	Action     string    `json:"action"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
	ShardID    int       `json:"shard_id"`
}
