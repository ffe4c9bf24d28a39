package webui

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/todo-1m/webclient/internal/app/notify"
	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/form"
	"github.com/todo-1m/webclient/internal/remote"
	"github.com/todo-1m/webclient/internal/todo"
	"github.com/todo-1m/webclient/services/frontend"
)

const titleRequired = "Title is required"

var listingParams = []string{
	frontend.ParamSort,
	frontend.ParamDir,
	frontend.ParamStatus,
	frontend.ParamPriority,
	frontend.ParamStart,
	frontend.ParamEnd,
	frontend.ParamLocation,
}

// listing is the sort, filter and weather state of the todos page, read
// from the query string or from the return field of a post.
type listing struct {
	query     url.Values
	sort      todo.SortConfig
	filter    todo.FilterConfig
	values    frontend.FilterValues
	filterErr error
	location  string
}

func parseListing(q url.Values, loc *time.Location) listing {
	l := listing{query: url.Values{}}
	for _, key := range listingParams {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			l.query.Set(key, v)
		}
	}

	if key, ok := todo.ParseSortKey(l.query.Get(frontend.ParamSort)); ok && key != todo.SortNone {
		l.sort = todo.SortConfig{Key: key, Direction: todo.ParseDirection(l.query.Get(frontend.ParamDir))}
	} else {
		l.query.Del(frontend.ParamSort)
		l.query.Del(frontend.ParamDir)
	}

	l.values = frontend.FilterValues{
		Status:   l.query.Get(frontend.ParamStatus),
		Priority: strings.ToUpper(l.query.Get(frontend.ParamPriority)),
		Start:    l.query.Get(frontend.ParamStart),
		End:      l.query.Get(frontend.ParamEnd),
	}
	l.filter, l.filterErr = todo.ParseFilter(l.values.Status, l.values.Priority, l.values.Start, l.values.End, loc)
	l.location = l.query.Get(frontend.ParamLocation)
	return l
}

// returnListing restores the listing a form was posted from.
func returnListing(r *http.Request, loc *time.Location) listing {
	q, err := url.ParseQuery(r.PostFormValue(frontend.ParamReturn))
	if err != nil {
		q = url.Values{}
	}
	return parseListing(q, loc)
}

func (l listing) href() string {
	return frontend.ListingHref(l.query)
}

// todosPage describes one render of /todos.
type todosPage struct {
	status    int
	listing   listing
	form      *form.Reconciler
	editID    contracts.ID
	formError string
	err       string
}

func (h *Handler) handleTodos(w http.ResponseWriter, r *http.Request) {
	loc := h.location()
	pg := todosPage{
		status:  http.StatusOK,
		listing: parseListing(r.URL.Query(), loc),
		form:    form.New(loc),
		editID:  contracts.ID(strings.TrimSpace(r.URL.Query().Get(frontend.ParamEdit))),
	}
	h.showTodos(w, r, pg)
}

func (h *Handler) showTodos(w http.ResponseWriter, r *http.Request, pg todosPage) {
	ctx := r.Context()
	loc := h.location()
	l := pg.listing
	messages := []string{}
	if pg.err != "" {
		messages = append(messages, pg.err)
	}
	if l.filterErr != nil {
		messages = append(messages, l.filterErr.Error())
		if pg.status == http.StatusOK {
			pg.status = http.StatusBadRequest
		}
	}

	var todos []todo.Todo
	records, err := h.Todos.ListTodos(ctx, h.userScope(r))
	if err != nil {
		h.logger().Warn("list todos failed", "err", err)
		messages = append(messages, "Todos could not be loaded: "+failureText(err))
		if pg.status == http.StatusOK {
			pg.status = failureStatus(err)
		}
	} else {
		todos = todo.NormalizeAll(records, loc)
	}

	if !pg.editID.IsZero() && pg.form.Mode() == form.Creating {
		if target, ok := h.findTodo(r, todos, pg.editID); ok {
			pg.form.EnterEdit(target)
		} else {
			messages = append(messages, "Todo could not be loaded for editing")
		}
	}

	if l.filterErr == nil && !l.filter.IsEmpty() {
		todos = todo.Filter(todos, l.filter)
	}
	todos = todo.Sort(todos, l.sort)

	view := frontend.TodosView{
		Todos:     todos,
		Sort:      l.sort,
		Filter:    l.values,
		Query:     l.query,
		Mode:      pg.form.Mode(),
		Fields:    pg.form.Fields(),
		FormError: pg.formError,
		Error:     strings.Join(messages, ". "),
		Location:  h.DefaultLocation,
		Loc:       loc,
	}
	if target, ok := pg.form.Target(); ok {
		view.EditID = target.ID
	}
	if l.location != "" {
		view.Location = l.location
		temp, err := h.Todos.Temperature(ctx, l.location)
		if err != nil {
			view.WeatherError = "Weather could not be loaded: " + failureText(err)
		} else {
			view.Weather = remote.FormatCelsius(temp)
		}
	}

	h.render(w, r, pg.status, "Todos", frontend.TodosPage(view))
}

// findTodo looks the record up in the fetched snapshot first and asks the
// API only when the snapshot does not have it.
func (h *Handler) findTodo(r *http.Request, snapshot []todo.Todo, id contracts.ID) (todo.Todo, bool) {
	for _, t := range snapshot {
		if t.ID == id {
			return t, true
		}
	}
	rec, err := h.Todos.GetTodo(r.Context(), id)
	if err != nil {
		h.logger().Warn("get todo failed", "todo_id", id, "err", err)
		return todo.Todo{}, false
	}
	return todo.Normalize(rec, h.location()), true
}

// applyForm copies the posted fields into the reconciler.
func applyForm(rec *form.Reconciler, r *http.Request) {
	rec.SetTitle(r.PostFormValue("title"))
	rec.SetDescription(r.PostFormValue("description"))
	rec.SetStatus(r.PostFormValue("status"))
	rec.SetPriority(r.PostFormValue("priority"))
	rec.SetDeadline(trimmed(r, "deadline"))
	rec.SetTags(r.PostFormValue("tags"))
	rec.SetCompleted(r.PostFormValue("completed") == "true")
}

func (h *Handler) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	loc := h.location()
	rec := form.New(loc)
	applyForm(rec, r)
	pg := todosPage{listing: returnListing(r, loc), form: rec}

	sub, err := rec.Submit()
	if err != nil {
		pg.status, pg.formError = submitFailure(err)
		h.showTodos(w, r, pg)
		return
	}

	created, err := h.Todos.CreateTodo(r.Context(), sub.Payload)
	rec.Complete(err)
	if err != nil {
		h.logger().Warn("create todo failed", "err", err)
		pg.status = failureStatus(err)
		pg.formError = "Todo could not be created: " + failureText(err)
		h.showTodos(w, r, pg)
		return
	}

	title := created.Title
	if title == "" {
		title = sub.Payload.Title
	}
	h.publish(r, notify.ActionCreated, created.ID, title)
	http.Redirect(w, r, pg.listing.href(), http.StatusSeeOther)
}

func (h *Handler) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	loc := h.location()
	rec := form.New(loc)
	rec.EnterEdit(todo.Todo{ID: todoID(r)})
	applyForm(rec, r)
	pg := todosPage{listing: returnListing(r, loc), form: rec}

	sub, err := rec.Submit()
	if err != nil {
		pg.status, pg.formError = submitFailure(err)
		h.showTodos(w, r, pg)
		return
	}

	_, err = h.Todos.UpdateTodo(r.Context(), sub.TargetID, sub.Payload)
	rec.Complete(err)
	if err != nil {
		h.logger().Warn("update todo failed", "todo_id", sub.TargetID, "err", err)
		pg.status = failureStatus(err)
		pg.formError = "Todo could not be updated: " + failureText(err)
		h.showTodos(w, r, pg)
		return
	}

	h.publish(r, notify.ActionUpdated, sub.TargetID, sub.Payload.Title)
	http.Redirect(w, r, pg.listing.href(), http.StatusSeeOther)
}

func (h *Handler) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	h.rowAction(w, r, notify.ActionToggled, "Todo status could not be changed: ", h.Todos.ToggleTodo)
}

func (h *Handler) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	h.rowAction(w, r, notify.ActionDeleted, "Todo could not be deleted: ", h.Todos.DeleteTodo)
}

func (h *Handler) rowAction(w http.ResponseWriter, r *http.Request, action, failurePrefix string, call func(ctx context.Context, id contracts.ID) error) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	loc := h.location()
	id := todoID(r)
	pg := todosPage{listing: returnListing(r, loc), form: form.New(loc)}

	if err := call(r.Context(), id); err != nil {
		h.logger().Warn("todo "+action+" failed", "todo_id", id, "err", err)
		pg.status = failureStatus(err)
		pg.err = failurePrefix + failureText(err)
		h.showTodos(w, r, pg)
		return
	}

	h.publish(r, action, id, "")
	http.Redirect(w, r, pg.listing.href(), http.StatusSeeOther)
}

func todoID(r *http.Request) contracts.ID {
	return contracts.ID(strings.TrimSpace(chi.URLParam(r, "todoID")))
}

func submitFailure(err error) (int, string) {
	if errors.Is(err, form.ErrTitleRequired) {
		return http.StatusUnprocessableEntity, titleRequired
	}
	return http.StatusBadRequest, err.Error()
}

// failureText is the backend's message when it sent one.
func failureText(err error) string {
	return remote.Message(err, err.Error())
}
