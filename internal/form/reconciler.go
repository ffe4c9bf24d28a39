// Package form maps between a todo being edited and the values of the todo
// form, and turns submitted values into create or update payloads.
package form

import (
	"errors"
	"strings"
	"time"

	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/todo"
)

var ErrTitleRequired = errors.New("title is required")

// DeadlineInputLayout matches a datetime-local input at minute precision.
const DeadlineInputLayout = "2006-01-02T15:04"

// PayloadDeadlineLayout is the ISO-8601 form sent to the API, always UTC.
const PayloadDeadlineLayout = "2006-01-02T15:04:05.000Z"

type Mode int

const (
	Creating Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "creating"
}

// Fields is the draft held by the form while the user types.
type Fields struct {
	Title       string
	Description string
	Completed   bool
	Status      todo.Status
	Priority    todo.Priority
	Deadline    string
	Tags        string
}

// DefaultFields are the values of an empty creation form.
func DefaultFields() Fields {
	return Fields{
		Status:   todo.StatusNotDone,
		Priority: todo.PriorityLow,
	}
}

// Payload is the body of create and update requests.
type Payload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Deadline    string   `json:"deadline,omitempty"`
	Tag         []string `json:"tag"`
	Completed   *bool    `json:"completed,omitempty"`
}

// Submission tells the caller which remote operation to run.
type Submission struct {
	Mode     Mode
	TargetID contracts.ID
	Payload  Payload
}

// Reconciler is a two-mode form state machine. It is not safe for
// concurrent use; create one per form.
type Reconciler struct {
	mode     Mode
	target   todo.Todo
	fields   Fields
	location *time.Location
}

// New returns a reconciler in Creating mode. Deadlines are shown and read in loc.
func New(loc *time.Location) *Reconciler {
	if loc == nil {
		loc = time.Local
	}
	return &Reconciler{
		mode:     Creating,
		fields:   DefaultFields(),
		location: loc,
	}
}

func (r *Reconciler) Mode() Mode { return r.mode }

func (r *Reconciler) Fields() Fields { return r.fields }

// Target returns the record under edit; ok is false while creating.
func (r *Reconciler) Target() (todo.Todo, bool) {
	if r.mode != Editing {
		return todo.Todo{}, false
	}
	return r.target, true
}

// EnterEdit switches to Editing and populates the fields from t.
func (r *Reconciler) EnterEdit(t todo.Todo) {
	r.mode = Editing
	r.target = t
	r.fields = FieldsFromTodo(t, r.location)
}

// CancelEdit discards the draft and returns to an empty creation form.
func (r *Reconciler) CancelEdit() {
	r.mode = Creating
	r.target = todo.Todo{}
	r.fields = DefaultFields()
}

func (r *Reconciler) SetFields(f Fields) { r.fields = f }

func (r *Reconciler) SetTitle(v string)       { r.fields.Title = v }
func (r *Reconciler) SetDescription(v string) { r.fields.Description = v }
func (r *Reconciler) SetCompleted(v bool)     { r.fields.Completed = v }
func (r *Reconciler) SetDeadline(v string)    { r.fields.Deadline = v }
func (r *Reconciler) SetTags(v string)        { r.fields.Tags = v }

func (r *Reconciler) SetStatus(v string) {
	if s, ok := todo.ParseStatus(v); ok {
		r.fields.Status = s
		return
	}
	r.fields.Status = todo.StatusNotDone
}

func (r *Reconciler) SetPriority(v string) {
	if p, ok := todo.ParsePriority(v); ok {
		r.fields.Priority = p
		return
	}
	r.fields.Priority = todo.PriorityLow
}

// Submit validates the draft and builds the payload for the current mode.
// A blank title blocks submission before any remote call.
func (r *Reconciler) Submit() (Submission, error) {
	if strings.TrimSpace(r.fields.Title) == "" {
		return Submission{}, ErrTitleRequired
	}
	payload := BuildPayload(r.fields, r.location)
	if r.mode == Editing {
		completed := r.fields.Completed
		payload.Completed = &completed
		return Submission{Mode: Editing, TargetID: r.target.ID, Payload: payload}, nil
	}
	return Submission{Mode: Creating, Payload: payload}, nil
}

// Complete records the outcome of the remote call for the last submission.
// Success clears a create form and ends an edit session; failure keeps
// everything as typed.
func (r *Reconciler) Complete(err error) {
	if err != nil {
		return
	}
	if r.mode == Editing {
		r.CancelEdit()
		return
	}
	r.fields = DefaultFields()
}

// FieldsFromTodo derives form values from a stored record.
func FieldsFromTodo(t todo.Todo, loc *time.Location) Fields {
	if loc == nil {
		loc = time.Local
	}
	f := Fields{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Complete,
		Status:      t.Status,
		Priority:    t.Priority,
	}
	if f.Status == "" {
		f.Status = todo.StatusNotDone
	}
	if f.Priority == "" {
		f.Priority = todo.PriorityLow
	}
	if t.HasDeadline {
		f.Deadline = t.Deadline.In(loc).Format(DeadlineInputLayout)
	}
	if len(t.Tags) > 0 {
		f.Tags = strings.Join(t.Tags, ", ")
	}
	return f
}

// BuildPayload normalizes form values into the request body shape.
func BuildPayload(f Fields, loc *time.Location) Payload {
	p := Payload{
		Title:       f.Title,
		Description: f.Description,
		Status:      string(f.Status),
		Priority:    string(f.Priority),
		Tag:         SplitTags(f.Tags),
	}
	if p.Status == "" {
		p.Status = string(todo.StatusNotDone)
	}
	if p.Priority == "" {
		p.Priority = string(todo.PriorityLow)
	}
	if deadline, ok := DeadlineToISO(f.Deadline, loc); ok {
		p.Deadline = deadline
	}
	return p
}

// SplitTags splits a comma separated tag input, dropping blank entries.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// DeadlineToISO converts a datetime-local value to UTC ISO-8601.
func DeadlineToISO(input string, loc *time.Location) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	ts, ok := todo.ParseTimestamp(input, loc)
	if !ok {
		return "", false
	}
	return ts.UTC().Format(PayloadDeadlineLayout), true
}
