package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/todo-1m/webclient/internal/form"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.requests = append(api.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		handler, ok := api.routes[r.Method+" "+r.URL.Path]
		api.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no route"}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return api, New(srv.URL+"/", srv.Client())
}

func (f *fakeAPI) handle(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (f *fakeAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func TestListTodos(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/all-todos", http.StatusOK, `[{"id":1,"title":"a","priority":"HIGH"},{"id":"2","title":"b"}]`)

	records, err := client.ListTodos(context.Background(), "")
	if err != nil {
		t.Fatalf("ListTodos error: %v", err)
	}
	if len(records) != 2 || records[0].ID != "1" || records[1].ID != "2" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if q := api.last().Query; q != "" {
		t.Fatalf("unexpected query %q", q)
	}

	if _, err := client.ListTodos(context.Background(), "42"); err != nil {
		t.Fatalf("ListTodos error: %v", err)
	}
	if q := api.last().Query; q != "userId=42" {
		t.Fatalf("query = %q", q)
	}
}

func TestListTodosNonArrayDegradesToEmpty(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/all-todos", http.StatusOK, `{"content":[]}`)

	records, err := client.ListTodos(context.Background(), "")
	if err != nil {
		t.Fatalf("ListTodos error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty slice, got %#v", records)
	}
}

func TestCreateTodoNeverSendsCompleted(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("POST /api/create-todo", http.StatusCreated, `{"id":9,"title":"x"}`)

	done := true
	rec, err := client.CreateTodo(context.Background(), form.Payload{Title: "x", Status: "NOT_DONE", Priority: "LOW", Tag: []string{}, Completed: &done})
	if err != nil {
		t.Fatalf("CreateTodo error: %v", err)
	}
	if rec.ID != "9" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(api.last().Body), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if _, ok := body["completed"]; ok {
		t.Fatalf("create payload must not carry completed: %v", body)
	}
	if _, ok := body["deadline"]; ok {
		t.Fatalf("absent deadline must be omitted: %v", body)
	}
}

func TestUpdateToggleDeletePaths(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("PUT /api/update-todo/5", http.StatusOK, ``)
	api.handle("PATCH /api/change-todo-status/5", http.StatusOK, `{"id":5}`)
	api.handle("DELETE /api/delete-todo/5", http.StatusNoContent, ``)

	completed := false
	if _, err := client.UpdateTodo(context.Background(), "5", form.Payload{Title: "t", Completed: &completed}); err != nil {
		t.Fatalf("UpdateTodo error: %v", err)
	}
	if !strings.Contains(api.last().Body, `"completed":false`) {
		t.Fatalf("update payload must carry completed: %s", api.last().Body)
	}
	if err := client.ToggleTodo(context.Background(), "5"); err != nil {
		t.Fatalf("ToggleTodo error: %v", err)
	}
	if api.last().Body != "" {
		t.Fatalf("toggle must not send a body: %q", api.last().Body)
	}
	if err := client.DeleteTodo(context.Background(), "5"); err != nil {
		t.Fatalf("DeleteTodo error: %v", err)
	}
}

func TestRequestErrorCarriesBackendMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"title must not be blank"}`, "title must not be blank"},
		{"error field", `{"error":"Bad Request"}`, "Bad Request"},
		{"violations", `{"message":"Validation failed","violations":[{"field":"email","message":"must be valid"},{"field":"name"}]}`, "Validation failed: email must be valid | name"},
		{"not json", `<html>oops</html>`, "CreateTodo: unexpected status 400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, client := newFakeAPI(t)
			api.handle("POST /api/create-todo", http.StatusBadRequest, tt.body)

			_, err := client.CreateTodo(context.Background(), form.Payload{Title: "x"})
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected *RequestError, got %T %v", err, err)
			}
			if reqErr.Op != "CreateTodo" || reqErr.Status != http.StatusBadRequest {
				t.Fatalf("unexpected error fields: %+v", reqErr)
			}
			if err.Error() != tt.want {
				t.Fatalf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if StatusCode(err) != http.StatusBadRequest {
				t.Fatalf("StatusCode = %d", StatusCode(err))
			}
		})
	}
}

func TestTransportFailureIsRequestError(t *testing.T) {
	client := New("http://127.0.0.1:1", nil)
	err := client.DeleteTodo(context.Background(), "1")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != 0 || reqErr.Err == nil {
		t.Fatalf("unexpected error: %#v", err)
	}
}

func TestLoginMergesUserByID(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("POST /api/users/login", http.StatusOK, `{"id":3,"email":"a@b.co"}`)
	api.handle("GET /api/users/userById", http.StatusOK, `{"id":3,"name":"Ada","email":"a@b.co"}`)

	user, err := client.Login(context.Background(), "a@b.co", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != "3" || user.Name != "Ada" || user.Email != "a@b.co" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if q := api.last().Query; q != "id=3" {
		t.Fatalf("userById query = %q", q)
	}
}

func TestLoginIgnoresUserByIDFailure(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("POST /api/users/login", http.StatusOK, `{"id":3,"email":"a@b.co"}`)
	api.handle("GET /api/users/userById", http.StatusInternalServerError, `{}`)

	user, err := client.Login(context.Background(), "a@b.co", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != "3" || user.Name != "" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestLoginSendsCredentialsAsQuery(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("POST /api/users/login", http.StatusUnauthorized, `{"message":"Invalid credentials"}`)

	_, err := client.Login(context.Background(), "a@b.co", "p&w")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("unexpected error: %v", err)
	}
	req := api.last()
	if req.Body != "" || req.Query != "email=a%40b.co&password=p%26w" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestRegisterTrimsNameAndEmail(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("POST /api/users/register", http.StatusCreated, `{"id":1,"name":"Ada"}`)

	if _, err := client.Register(context.Background(), "  Ada ", " a@b.co ", " pw "); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	want := `{"name":"Ada","email":"a@b.co","password":" pw "}`
	if got := api.last().Body; got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func TestListUsers(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/users/all-users", http.StatusOK, `[{"id":1,"fullName":"Ada Lovelace"},{"id":2,"username":"bob"}]`)

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if len(users) != 2 || users[0].FullName != "Ada Lovelace" || users[1].Username != "bob" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestTemperatureShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"number", `21.5`, 21.5},
		{"temperature", `{"temperature":18}`, 18},
		{"temp_c", `{"temp_c":"-3.5"}`, -3.5},
		{"null temperature falls through", `{"temperature":null,"temp_c":4}`, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, client := newFakeAPI(t)
			api.handle("GET /api/weather", http.StatusOK, tt.body)
			got, err := client.Temperature(context.Background(), "Istanbul")
			if err != nil {
				t.Fatalf("Temperature error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Temperature = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemperatureFallsBackToPathForm(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/weather", http.StatusBadRequest, `{"message":"missing param"}`)
	api.handle("GET /api/weather/New York", http.StatusOK, `{"temperature":11}`)

	got, err := client.Temperature(context.Background(), "New York")
	if err != nil {
		t.Fatalf("Temperature error: %v", err)
	}
	if got != 11 {
		t.Fatalf("Temperature = %v", got)
	}
}

func TestTemperatureErrors(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/weather", http.StatusOK, `{"humidity":40}`)
	if _, err := client.Temperature(context.Background(), "Oslo"); !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}

	// neither form is routed: the error of the path attempt is returned
	_, bare := newFakeAPI(t)
	_, err := bare.Temperature(context.Background(), "Nowhere")
	if err == nil || err.Error() != "no route" || StatusCode(err) != http.StatusNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFormatCelsius(t *testing.T) {
	if got := FormatCelsius(21.5); got != "21.5°C" {
		t.Fatalf("FormatCelsius = %q", got)
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(&RequestError{Op: "Login", Status: 401, Message: "Bad credentials"}, "Login failed"); got != "Bad credentials" {
		t.Fatalf("Message = %q", got)
	}
	if got := Message(&RequestError{Op: "Login", Status: 500}, "Login failed"); got != "Login failed" {
		t.Fatalf("Message = %q", got)
	}
	if got := Message(errors.New("plain"), "Login failed"); got != "Login failed" {
		t.Fatalf("Message = %q", got)
	}
}
