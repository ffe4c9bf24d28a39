package form

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/todo-1m/webclient/internal/todo"
)

var istanbul = time.FixedZone("TRT", 3*60*60)

func TestNewStartsCreatingWithDefaults(t *testing.T) {
	r := New(istanbul)
	if r.Mode() != Creating {
		t.Fatalf("expected Creating, got %s", r.Mode())
	}
	if r.Fields() != DefaultFields() {
		t.Fatalf("unexpected fields: %+v", r.Fields())
	}
	if _, ok := r.Target(); ok {
		t.Fatal("no target expected while creating")
	}
}

func TestEnterEditPopulatesFields(t *testing.T) {
	rec := todo.Normalize(todo.Record{
		ID:          "5",
		Title:       "Write report",
		Description: "quarterly",
		Status:      "completed",
		Priority:    "medium",
		Deadline:    "2026-03-01T09:30:00Z",
		Tag:         []string{"work", "urgent"},
	}, istanbul)

	r := New(istanbul)
	r.EnterEdit(rec)

	want := Fields{
		Title:       "Write report",
		Description: "quarterly",
		Completed:   true,
		Status:      todo.StatusDone,
		Priority:    todo.PriorityMedium,
		Deadline:    "2026-03-01T12:30",
		Tags:        "work, urgent",
	}
	if got := r.Fields(); got != want {
		t.Fatalf("fields = %+v, want %+v", got, want)
	}
	if target, ok := r.Target(); !ok || target.ID != "5" {
		t.Fatalf("unexpected target: %+v %v", target, ok)
	}
}

func TestEnterEditUnparsableDeadlineIsEmpty(t *testing.T) {
	rec := todo.Normalize(todo.Record{ID: "1", Title: "x", Deadline: "soon"}, istanbul)
	r := New(istanbul)
	r.EnterEdit(rec)
	if r.Fields().Deadline != "" {
		t.Fatalf("expected empty deadline, got %q", r.Fields().Deadline)
	}
	if r.Fields().Tags != "" {
		t.Fatalf("expected empty tags, got %q", r.Fields().Tags)
	}
}

func TestEnterEditThenCancelRestoresDefaults(t *testing.T) {
	r := New(istanbul)
	r.EnterEdit(todo.Normalize(todo.Record{ID: "9", Title: "t", Priority: "HIGH"}, istanbul))
	r.SetTitle("changed")
	r.CancelEdit()

	fresh := New(istanbul)
	if r.Mode() != fresh.Mode() || r.Fields() != fresh.Fields() {
		t.Fatalf("cancel did not restore defaults: %s %+v", r.Mode(), r.Fields())
	}
}

func TestSubmitBlankTitleIsBlocked(t *testing.T) {
	r := New(istanbul)
	r.SetTitle("   ")
	calls := 0
	sub, err := r.Submit()
	if err == nil {
		calls++
	}
	if !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v (%+v)", err, sub)
	}
	if calls != 0 {
		t.Fatal("collaborator must not be reached")
	}
}

func TestSubmitCreatePayload(t *testing.T) {
	r := New(istanbul)
	r.SetTitle("Buy milk")
	r.SetDescription("2 litres")
	r.SetStatus("not_done")
	r.SetPriority("high")
	r.SetDeadline("2026-03-01T12:30")
	r.SetTags(" home, ,errands ,")

	sub, err := r.Submit()
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if sub.Mode != Creating || sub.TargetID != "" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	want := Payload{
		Title:       "Buy milk",
		Description: "2 litres",
		Status:      "NOT_DONE",
		Priority:    "HIGH",
		Deadline:    "2026-03-01T09:30:00.000Z",
		Tag:         []string{"home", "errands"},
	}
	if !reflect.DeepEqual(sub.Payload, want) {
		t.Fatalf("payload = %+v, want %+v", sub.Payload, want)
	}
}

func TestSubmitCreateWithoutDeadlineOmitsIt(t *testing.T) {
	r := New(istanbul)
	r.SetTitle("x")
	sub, err := r.Submit()
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if sub.Payload.Deadline != "" || sub.Payload.Completed != nil {
		t.Fatalf("unexpected payload: %+v", sub.Payload)
	}
	if sub.Payload.Tag == nil || len(sub.Payload.Tag) != 0 {
		t.Fatalf("expected empty tag list, got %#v", sub.Payload.Tag)
	}
}

func TestCreateSuccessResetsAndFailureKeepsInput(t *testing.T) {
	r := New(istanbul)
	r.SetTitle("keep me")
	r.SetTags("a")
	if _, err := r.Submit(); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	r.Complete(errors.New("backend down"))
	if r.Fields().Title != "keep me" || r.Fields().Tags != "a" {
		t.Fatalf("failure must keep input, got %+v", r.Fields())
	}

	r.Complete(nil)
	if r.Mode() != Creating || r.Fields() != DefaultFields() {
		t.Fatalf("success must reset fields, got %s %+v", r.Mode(), r.Fields())
	}
}

func TestSubmitUpdateRoundTripsTags(t *testing.T) {
	rec := todo.Normalize(todo.Record{ID: "5", Title: "t", Tag: []string{"work", "urgent"}}, istanbul)
	r := New(istanbul)
	r.EnterEdit(rec)

	sub, err := r.Submit()
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if sub.Mode != Editing || sub.TargetID != "5" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	if !reflect.DeepEqual(sub.Payload.Tag, []string{"work", "urgent"}) {
		t.Fatalf("tags = %#v", sub.Payload.Tag)
	}
	if sub.Payload.Completed == nil || *sub.Payload.Completed {
		t.Fatalf("update must always carry completed=false here, got %v", sub.Payload.Completed)
	}
}

func TestUpdateTargetIgnoresFieldEdits(t *testing.T) {
	r := New(istanbul)
	r.EnterEdit(todo.Normalize(todo.Record{ID: "7", Title: "t"}, istanbul))
	r.SetFields(Fields{Title: "renamed", Completed: true})

	sub, err := r.Submit()
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if sub.TargetID != "7" || *sub.Payload.Completed != true {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	if sub.Payload.Status != "NOT_DONE" || sub.Payload.Priority != "LOW" {
		t.Fatalf("blank enums should default, got %+v", sub.Payload)
	}
}

func TestUpdateOutcome(t *testing.T) {
	r := New(istanbul)
	r.EnterEdit(todo.Normalize(todo.Record{ID: "7", Title: "t"}, istanbul))
	r.SetTitle("edited")

	r.Complete(errors.New("conflict"))
	if r.Mode() != Editing || r.Fields().Title != "edited" {
		t.Fatalf("failure must stay in edit mode, got %s %+v", r.Mode(), r.Fields())
	}

	r.Complete(nil)
	if r.Mode() != Creating || r.Fields() != DefaultFields() {
		t.Fatalf("success must end the edit session, got %s %+v", r.Mode(), r.Fields())
	}
}

func TestSetStatusAndPriorityFallBack(t *testing.T) {
	r := New(istanbul)
	r.SetStatus("paused")
	r.SetPriority("critical")
	if r.Fields().Status != todo.StatusNotDone || r.Fields().Priority != todo.PriorityLow {
		t.Fatalf("unexpected fallback: %+v", r.Fields())
	}
}

func TestDeadlineToISO(t *testing.T) {
	if got, ok := DeadlineToISO("2026-01-01T00:15", istanbul); !ok || got != "2025-12-31T21:15:00.000Z" {
		t.Fatalf("DeadlineToISO = %q %v", got, ok)
	}
	if _, ok := DeadlineToISO("", istanbul); ok {
		t.Fatal("empty input must be absent")
	}
	if _, ok := DeadlineToISO("garbage", istanbul); ok {
		t.Fatal("garbage input must be absent")
	}
}
