package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/todo-1m/webclient/internal/contracts"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. Name and email are trimmed, the password is
// sent as typed.
func (c *Client) Register(ctx context.Context, name, email, password string) (contracts.User, error) {
	body := registerRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	var user contracts.User
	err := c.do(ctx, "Register", http.MethodPost, "/api/users/register", nil, body, &user)
	return user, err
}

// Login authenticates with query parameters. When the API answers with an
// id but no name the full record is fetched and merged; a failure of that
// second call is ignored.
func (c *Client) Login(ctx context.Context, email, password string) (contracts.User, error) {
	query := url.Values{"email": {email}, "password": {password}}
	var user contracts.User
	if err := c.do(ctx, "Login", http.MethodPost, "/api/users/login", query, nil, &user); err != nil {
		return contracts.User{}, err
	}
	if !user.ID.IsZero() && strings.TrimSpace(user.Name) == "" {
		if byID, err := c.GetUser(ctx, user.ID); err == nil {
			user = MergeUser(user, byID)
		}
	}
	return user, nil
}

func (c *Client) GetUser(ctx context.Context, id contracts.ID) (contracts.User, error) {
	var user contracts.User
	query := url.Values{"id": {id.String()}}
	err := c.do(ctx, "GetUser", http.MethodGet, "/api/users/userById", query, nil, &user)
	return user, err
}

func (c *Client) ListUsers(ctx context.Context) ([]contracts.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "ListUsers", http.MethodGet, "/api/users/all-users", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[contracts.User](raw), nil
}

// MergeUser overlays the non-empty fields of detail onto base.
func MergeUser(base, detail contracts.User) contracts.User {
	if !detail.ID.IsZero() {
		base.ID = detail.ID
	}
	if detail.Name != "" {
		base.Name = detail.Name
	}
	if detail.FullName != "" {
		base.FullName = detail.FullName
	}
	if detail.Username != "" {
		base.Username = detail.Username
	}
	if detail.Email != "" {
		base.Email = detail.Email
	}
	return base
}
