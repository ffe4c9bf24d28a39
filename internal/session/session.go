package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/platform/auth"
)

const DefaultCookieName = "todo_session"

var ErrNoSession = errors.New("no session in context")

type contextKey struct{}

// Session is the per-request view of one browser session.
type Session struct {
	mu      sync.Mutex
	manager *Manager
	w       http.ResponseWriter
	id      string
	data    []byte
}

// Get returns the signed-in user, or nil when signed out. A stored record
// that no longer decodes is reported as an error.
func (s *Session) Get() (*contracts.User, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	data := s.data
	s.mu.Unlock()
	if len(data) == 0 {
		return nil, nil
	}
	var user contracts.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &user, nil
}

// Set stores user under a fresh session id and issues its cookie. The
// previous id, if any, is removed so an earlier cookie no longer resolves.
func (s *Session) Set(ctx context.Context, user contracts.User) error {
	if s == nil {
		return ErrNoSession
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.manager.NewID()
	expires := s.manager.Now().Add(s.manager.TTL)
	if err := s.manager.Store.Save(ctx, Record{ID: id, Data: data, ExpiresAt: expires}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if old := s.id; old != "" && old != id {
		if err := s.manager.Store.Delete(ctx, old); err != nil && !errors.Is(err, ErrNotFound) && s.manager.Logger != nil {
			s.manager.Logger.Warn("delete replaced session failed", "err", err)
		}
	}
	s.id = id
	s.data = data
	return s.manager.writeCookie(s.w, s.id, expires)
}

// Clear signs the browser out and expires its cookie.
func (s *Session) Clear(ctx context.Context) error {
	if s == nil {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id
	s.id = ""
	s.data = nil
	s.manager.expireCookie(s.w)
	if id == "" {
		return nil
	}
	if err := s.manager.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ID is empty until the session has been persisted.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// WithSession is used by tests and by Middleware.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

type Manager struct {
	Store      Store
	Tokens     auth.Manager
	CookieName string
	TTL        time.Duration
	Secure     bool
	Logger     *log.Logger
	Now        func() time.Time
	NewID      func() string
}

func NewManager(store Store, secret string, ttl time.Duration, logger *log.Logger) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		Store:      store,
		Tokens:     auth.NewManager(secret, ttl),
		CookieName: DefaultCookieName,
		TTL:        ttl,
		Logger:     logger,
		Now:        func() time.Time { return time.Now().UTC() },
		NewID:      uuid.NewString,
	}
}

// Middleware resolves the session from the cookie once per request and
// stores it in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.resolve(w, r)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (m *Manager) resolve(w http.ResponseWriter, r *http.Request) *Session {
	s := &Session{manager: m, w: w}
	cookie, err := r.Cookie(m.CookieName)
	if err != nil || cookie.Value == "" {
		return s
	}

	claims, err := m.Tokens.Parse(cookie.Value)
	if err != nil {
		m.expireCookie(w)
		return s
	}
	rec, err := m.Store.Load(r.Context(), claims.SessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && m.Logger != nil {
			m.Logger.Warn("session load failed", "err", err)
		}
		m.expireCookie(w)
		return s
	}
	s.id = rec.ID
	s.data = rec.Data
	return s
}

func (m *Manager) writeCookie(w http.ResponseWriter, id string, expires time.Time) error {
	if w == nil {
		return nil
	}
	token, err := m.Tokens.Sign(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
