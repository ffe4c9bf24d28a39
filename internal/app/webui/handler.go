// Package webui serves the server-rendered todo pages. Every render reads a
// fresh snapshot from the remote API; no todo state lives in this process.
package webui

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/todo-1m/webclient/internal/app/account"
	"github.com/todo-1m/webclient/internal/app/notify"
	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/form"
	"github.com/todo-1m/webclient/internal/platform/logging"
	"github.com/todo-1m/webclient/internal/platform/metrics"
	"github.com/todo-1m/webclient/internal/session"
	"github.com/todo-1m/webclient/internal/sharding"
	"github.com/todo-1m/webclient/internal/todo"
	"github.com/todo-1m/webclient/services/frontend"
)

// TodoAPI is the part of the remote client the pages use.
type TodoAPI interface {
	ListTodos(ctx context.Context, userID contracts.ID) ([]todo.Record, error)
	GetTodo(ctx context.Context, id contracts.ID) (todo.Record, error)
	CreateTodo(ctx context.Context, payload form.Payload) (todo.Record, error)
	UpdateTodo(ctx context.Context, id contracts.ID, payload form.Payload) (todo.Record, error)
	ToggleTodo(ctx context.Context, id contracts.ID) error
	DeleteTodo(ctx context.Context, id contracts.ID) error
	Temperature(ctx context.Context, location string) (float64, error)
}

type Handler struct {
	Todos    TodoAPI
	Accounts *account.Service
	Sessions *session.Manager
	Notifier *notify.Notifier
	Hub      *notify.Hub
	Logger   *log.Logger

	// Location is the zone deadlines are entered and displayed in.
	Location *time.Location
	// DefaultLocation prefills the weather widget.
	DefaultLocation string
	// ScopeTodosToUser lists only the signed-in user's todos and narrows
	// live refresh to that user's events.
	ScopeTodosToUser bool
	// Ready reports whether backing services are reachable.
	Ready func(ctx context.Context) error
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(h.logger()))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.DefaultHandler())
	r.Handle("/static/*", http.StripPrefix("/static/", frontend.StaticHandler()))

	r.Group(func(pages chi.Router) {
		pages.Use(h.Sessions.Middleware)

		pages.Get("/", h.handleRoot)
		pages.Get("/login", h.handleLoginPage)
		pages.Post("/login", h.handleLogin)
		pages.Get("/register", h.handleRegisterPage)
		pages.Post("/register", h.handleRegister)
		pages.Post("/logout", h.handleLogout)

		pages.Group(func(authed chi.Router) {
			authed.Use(h.requireUser)
			authed.Get("/profile", h.handleProfile)
			authed.Get("/users", h.handleUsers)
		})

		pages.Get("/todos", h.handleTodos)
		pages.Post("/todos", h.handleCreateTodo)
		pages.Post("/todos/{todoID}", h.handleUpdateTodo)
		pages.Post("/todos/{todoID}/toggle", h.handleToggleTodo)
		pages.Post("/todos/{todoID}/delete", h.handleDeleteTodo)
		pages.Get("/events", h.handleEvents)
	})

	return r
}

func (h *Handler) logger() *log.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return log.Default()
}

func (h *Handler) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	h.handleHealth(w, r)
}

// currentUser treats an unreadable session as signed out.
func (h *Handler) currentUser(r *http.Request) *contracts.User {
	user, err := session.FromContext(r.Context()).Get()
	if err != nil {
		h.logger().Warn("session user unreadable", "err", err)
		return nil
	}
	return user
}

func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.currentUser(r) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// render writes a full page. Render errors after the status line can only
// be logged.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	chrome := frontend.Chrome{
		Title: title,
		User:  h.currentUser(r),
		Live:  h.Hub != nil,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := frontend.Layout(chrome, body).Render(r.Context(), w); err != nil {
		h.logger().Error("render page failed", "path", r.URL.Path, "err", err)
	}
}

// userScope is the id todo listings are narrowed to, empty when the
// collection is shared.
func (h *Handler) userScope(r *http.Request) contracts.ID {
	if !h.ScopeTodosToUser {
		return ""
	}
	if user := h.currentUser(r); user != nil {
		return user.ID
	}
	return ""
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	subject := sharding.AllUsersEventFilter()
	if scope := h.userScope(r); scope != "" {
		subject = sharding.UserEventFilter(scope.String())
	}
	notify.Stream(r.Context(), w, h.Hub, subject, 0)
}

func (h *Handler) publish(r *http.Request, action string, todoID contracts.ID, title string) {
	var userID contracts.ID
	if user := h.currentUser(r); user != nil {
		userID = user.ID
	}
	// Failures are logged by the notifier and never undo the mutation.
	_ = h.Notifier.Publish(r.Context(), userID, action, todoID, title)
}
