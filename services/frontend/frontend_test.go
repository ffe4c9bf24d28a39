package frontend

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/todo-1m/webclient/internal/app/account"
	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/form"
	"github.com/todo-1m/webclient/internal/todo"
)

func renderString(t *testing.T, v TodosView) string {
	t.Helper()
	var buf bytes.Buffer
	if err := TodosPage(v).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render error: %v", err)
	}
	return buf.String()
}

func TestSortHrefTogglesDirection(t *testing.T) {
	query := url.Values{ParamStatus: {"DONE"}}
	cfg := todo.SortConfig{Key: todo.SortTitle, Direction: todo.Ascending}

	if got := SortHref(query, cfg, todo.SortTitle); got != "/todos?dir=desc&sort=title&status=DONE" {
		t.Fatalf("same key href = %q", got)
	}
	if got := SortHref(query, cfg, todo.SortPriority); got != "/todos?dir=asc&sort=priority&status=DONE" {
		t.Fatalf("other key href = %q", got)
	}
}

func TestListingHrefDropsEditAndEmptyValues(t *testing.T) {
	query := url.Values{ParamEdit: {"3"}, ParamSort: {"title"}}
	if got := ListingHref(query, ParamSort, ""); got != "/todos" {
		t.Fatalf("ListingHref = %q", got)
	}
	if got := ListingHref(nil, ParamEdit, "7"); got != "/todos?edit=7" {
		t.Fatalf("ListingHref = %q", got)
	}
}

func TestDeadlineText(t *testing.T) {
	loc := time.FixedZone("Istanbul", 3*60*60)
	withDeadline := todo.Todo{HasDeadline: true, Deadline: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	if got := DeadlineText(withDeadline, loc); got != "2026-03-01 12:30" {
		t.Fatalf("DeadlineText = %q", got)
	}
	if got := DeadlineText(todo.Todo{DeadlineRaw: "soon"}, loc); got != "soon" {
		t.Fatalf("unparsable deadline = %q", got)
	}
	if got := DeadlineText(todo.Todo{}, loc); got != "-" {
		t.Fatalf("missing deadline = %q", got)
	}
}

func TestTodosPageEscapesAndMarksSortColumn(t *testing.T) {
	html := renderString(t, TodosView{
		Todos: []todo.Todo{{ID: "1", Title: "<script>x</script>", Priority: todo.PriorityHigh, Tags: []string{"a", "b"}}},
		Sort:  todo.SortConfig{Key: todo.SortTitle, Direction: todo.Descending},
		Query: url.Values{ParamSort: {"title"}, ParamDir: {"desc"}},
	})
	if strings.Contains(html, "<script>x</script>") {
		t.Fatal("title must be escaped")
	}
	for _, want := range []string{"&lt;script&gt;", "Title ▼", "a, b", `action="/todos/1/toggle"`, "New todo"} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestTodosPageEditingForm(t *testing.T) {
	html := renderString(t, TodosView{
		Mode:      form.Editing,
		EditID:    "9",
		Fields:    form.Fields{Title: "Pay rent", Completed: true, Status: todo.StatusDone, Priority: todo.PriorityMedium},
		FormError: "Title is required",
	})
	for _, want := range []string{`action="/todos/9"`, "Edit todo", `value="Pay rent"`, "checked", "Title is required", `value="MEDIUM" selected`} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestLayoutShowsUserAndLiveFlag(t *testing.T) {
	rec := httptest.NewRecorder()
	user := &contracts.User{ID: "1", FullName: "Ada Lovelace"}
	page := Layout(Chrome{Title: "Todos", User: user, Live: true}, ErrorPage("boom"))
	if err := page.Render(context.Background(), rec); err != nil {
		t.Fatalf("render error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`data-live="true"`, "Ada Lovelace", "boom", `action="/logout"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("layout missing %q", want)
		}
	}
}

func TestLoginPageNeverEchoesPassword(t *testing.T) {
	var buf bytes.Buffer
	v := LoginView{Email: "ada@example.com", Errors: account.FieldErrors{account.FieldPassword: "Password is required"}}
	if err := LoginPage(v).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render error: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, `value="ada@example.com"`) || !strings.Contains(html, "Password is required") {
		t.Fatalf("unexpected login page: %s", html)
	}
}

func TestStaticHandlerServesStylesheet(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/styles.css", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "--accent") {
		t.Fatalf("unexpected static response %d", rec.Code)
	}
}
