package webui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/todo-1m/webclient/internal/app/account"
	"github.com/todo-1m/webclient/internal/remote"
	"github.com/todo-1m/webclient/internal/session"
	"github.com/todo-1m/webclient/services/frontend"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
	usersUnavailable   = "Users could not be loaded"
	registeredNotice   = "Registration successful. Please log in."
)

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	view := frontend.LoginView{}
	if r.URL.Query().Get("registered") != "" {
		view.Notice = registeredNotice
	}
	h.render(w, r, http.StatusOK, "Login", frontend.LoginPage(view))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue(account.FieldEmail)
	password := r.PostFormValue(account.FieldPassword)

	user, err := h.Accounts.Login(r.Context(), email, password)
	if err != nil {
		view := frontend.LoginView{Email: email}
		status := failureStatus(err)
		var fieldErrs account.FieldErrors
		if errors.As(err, &fieldErrs) {
			view.Errors = fieldErrs
		} else {
			view.Error = account.FailureMessage(err, loginFailed)
			if remote.StatusCode(err) == http.StatusUnauthorized || remote.StatusCode(err) == http.StatusNotFound {
				status = http.StatusUnauthorized
			}
		}
		h.render(w, r, status, "Login", frontend.LoginPage(view))
		return
	}

	if err := session.FromContext(r.Context()).Set(r.Context(), user); err != nil {
		h.logger().Error("store session failed", "err", err)
		h.render(w, r, http.StatusInternalServerError, "Login",
			frontend.LoginPage(frontend.LoginView{Email: email, Error: loginFailed}))
		return
	}
	h.logger().Info("user signed in", "user_id", user.ID)
	http.Redirect(w, r, "/todos", http.StatusSeeOther)
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "Register", frontend.RegisterPage(frontend.RegisterView{}))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := r.PostFormValue(account.FieldName)
	email := r.PostFormValue(account.FieldEmail)
	password := r.PostFormValue(account.FieldPassword)

	if _, err := h.Accounts.Register(r.Context(), name, email, password); err != nil {
		view := frontend.RegisterView{Name: name, Email: email}
		var fieldErrs account.FieldErrors
		if errors.As(err, &fieldErrs) {
			view.Errors = fieldErrs
		} else {
			view.Error = account.FailureMessage(err, registrationFailed)
		}
		h.render(w, r, failureStatus(err), "Register", frontend.RegisterPage(view))
		return
	}
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := session.FromContext(r.Context()).Clear(r.Context()); err != nil {
		h.logger().Warn("clear session failed", "err", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	h.render(w, r, http.StatusOK, "Profile", frontend.ProfilePage(*user))
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.Users(r.Context())
	if err != nil {
		h.logger().Warn("list users failed", "err", err)
		h.render(w, r, failureStatus(err), "Users",
			frontend.UsersPage(frontend.UsersView{Error: account.FailureMessage(err, usersUnavailable)}))
		return
	}
	h.render(w, r, http.StatusOK, "Users", frontend.UsersPage(frontend.UsersView{Users: users}))
}

// failureStatus maps a failed operation to the status of the re-rendered
// page: validation is 422, remote client errors keep their 4xx, anything
// else is a bad gateway.
func failureStatus(err error) int {
	var fieldErrs account.FieldErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusUnprocessableEntity
	}
	if code := remote.StatusCode(err); code >= 400 && code < 500 {
		return code
	}
	return http.StatusBadGateway
}

func trimmed(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}
