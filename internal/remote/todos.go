package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/form"
	"github.com/todo-1m/webclient/internal/todo"
)

// ListTodos fetches the whole collection, optionally for one user.
func (c *Client) ListTodos(ctx context.Context, userID contracts.ID) ([]todo.Record, error) {
	var query url.Values
	if !userID.IsZero() {
		query = url.Values{"userId": {userID.String()}}
	}
	var raw json.RawMessage
	if err := c.do(ctx, "ListTodos", http.MethodGet, "/api/all-todos", query, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[todo.Record](raw), nil
}

func (c *Client) GetTodo(ctx context.Context, id contracts.ID) (todo.Record, error) {
	var rec todo.Record
	err := c.do(ctx, "GetTodo", http.MethodGet, "/api/todo/"+url.PathEscape(id.String()), nil, nil, &rec)
	return rec, err
}

// CreateTodo posts a new todo. The returned record is empty when the API
// answers without a body.
func (c *Client) CreateTodo(ctx context.Context, payload form.Payload) (todo.Record, error) {
	payload.Completed = nil
	var rec todo.Record
	err := c.do(ctx, "CreateTodo", http.MethodPost, "/api/create-todo", nil, payload, &rec)
	return rec, err
}

func (c *Client) UpdateTodo(ctx context.Context, id contracts.ID, payload form.Payload) (todo.Record, error) {
	var rec todo.Record
	err := c.do(ctx, "UpdateTodo", http.MethodPut, "/api/update-todo/"+url.PathEscape(id.String()), nil, payload, &rec)
	return rec, err
}

// ToggleTodo flips completion server side.
func (c *Client) ToggleTodo(ctx context.Context, id contracts.ID) error {
	return c.do(ctx, "ToggleTodo", http.MethodPatch, "/api/change-todo-status/"+url.PathEscape(id.String()), nil, nil, nil)
}

func (c *Client) DeleteTodo(ctx context.Context, id contracts.ID) error {
	return c.do(ctx, "DeleteTodo", http.MethodDelete, "/api/delete-todo/"+url.PathEscape(id.String()), nil, nil, nil)
}
