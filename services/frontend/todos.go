package frontend

import (
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/form"
	"github.com/todo-1m/webclient/internal/todo"
)

// Query parameters understood by the todos page.
const (
	ParamSort     = "sort"
	ParamDir      = "dir"
	ParamStatus   = "status"
	ParamPriority = "priority"
	ParamStart    = "start"
	ParamEnd      = "end"
	ParamEdit     = "edit"
	ParamLocation = "location"
	ParamReturn   = "return"
)

const deadlineDisplayLayout = "2006-01-02 15:04"

type FilterValues struct {
	Status   string
	Priority string
	Start    string
	End      string
}

type TodosView struct {
	Todos  []todo.Todo
	Sort   todo.SortConfig
	Filter FilterValues
	// Query is the listing state (sort, filter, location) carried across
	// links and posts. It never contains edit.
	Query url.Values

	Mode      form.Mode
	EditID    contracts.ID
	Fields    form.Fields
	FormError string

	Error  string
	Notice string

	Location     string
	Weather      string
	WeatherError string

	Loc *time.Location
}

// ListingHref links back to /todos with query, overriding the given pairs.
func ListingHref(query url.Values, pairs ...string) string {
	q := url.Values{}
	for k, vs := range query {
		if k == ParamEdit {
			continue
		}
		q[k] = append([]string(nil), vs...)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			q.Del(pairs[i])
			continue
		}
		q.Set(pairs[i], pairs[i+1])
	}
	if len(q) == 0 {
		return "/todos"
	}
	return "/todos?" + q.Encode()
}

// SortHref is the header link for key: it applies SortConfig.Toggle to
// the current order.
func SortHref(query url.Values, current todo.SortConfig, key todo.SortKey) string {
	next := current.Toggle(key)
	return ListingHref(query, ParamSort, string(next.Key), ParamDir, string(next.Direction))
}

var columnLabels = map[todo.SortKey]string{
	todo.SortTitle:       "Title",
	todo.SortDescription: "Description",
	todo.SortStatus:      "Status",
	todo.SortPriority:    "Priority",
	todo.SortDeadline:    "Deadline",
	todo.SortTag:         "Tags",
}

func TodosPage(v TodosView) templ.Component {
	return component(func(p *page) {
		p.raw(`<div id="stale-banner" class="alert notice" hidden>Todos changed elsewhere. <a href="">Reload</a></div>`)
		p.alert("notice", v.Notice)
		p.alert("error", v.Error)
		todoForm(p, v)
		filterForm(p, v)
		todoTable(p, v)
		weatherWidget(p, v)
	})
}

func hiddenQuery(p *page, query url.Values, skip ...string) {
	for k, vs := range query {
		if k == ParamEdit || contains(skip, k) {
			continue
		}
		for _, value := range vs {
			p.raw(`<input type="hidden"`)
			p.attr("name", k)
			p.attr("value", value)
			p.raw(">")
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func todoForm(p *page, v TodosView) {
	editing := v.Mode == form.Editing
	action := "/todos"
	heading := "New todo"
	submit := "Create"
	if editing {
		action = "/todos/" + url.PathEscape(v.EditID.String())
		heading = "Edit todo"
		submit = "Save"
	}

	p.raw(`<section class="panel"><h2>`)
	p.text(heading)
	p.raw("</h2>")
	p.alert("error", v.FormError)
	p.raw(`<form method="post"`)
	p.attr("action", action)
	p.raw(">")
	p.raw(`<input type="hidden"`)
	p.attr("name", ParamReturn)
	p.attr("value", v.Query.Encode())
	p.raw(">")

	f := v.Fields
	p.raw(`<div class="row">`)
	p.input("Title", "text", "title", f.Title, "")
	p.input("Description", "text", "description", f.Description, "")
	p.raw("</div>")

	p.raw(`<div class="row"><div class="field"><label for="status">Status</label><select id="status" name="status">`)
	p.option(string(todo.StatusNotDone), "Not done", string(f.Status))
	p.option(string(todo.StatusDone), "Done", string(f.Status))
	p.raw(`</select></div><div class="field"><label for="priority">Priority</label><select id="priority" name="priority">`)
	for _, pr := range []todo.Priority{todo.PriorityLow, todo.PriorityMedium, todo.PriorityHigh} {
		p.option(string(pr), titleCase(string(pr)), string(f.Priority))
	}
	p.raw("</select></div>")
	p.input("Deadline", "datetime-local", "deadline", f.Deadline, "")
	p.input("Tags", "text", "tags", f.Tags, "")
	p.raw("</div>")

	if editing {
		p.raw(`<div class="field"><label><input type="checkbox" name="completed" value="true"`)
		p.boolAttr("checked", f.Completed)
		p.raw("> Completed</label></div>")
	}

	p.raw(`<button type="submit">`)
	p.text(submit)
	p.raw("</button>")
	if editing {
		p.raw(` <a class="button secondary"`)
		p.attr("href", ListingHref(v.Query))
		p.raw(">Cancel</a>")
	}
	p.raw("</form></section>")
}

func filterForm(p *page, v TodosView) {
	p.raw(`<section class="panel"><h2>Filter</h2><form method="get" action="/todos"><div class="row">`)
	hiddenQuery(p, v.Query, ParamStatus, ParamPriority, ParamStart, ParamEnd)

	p.raw(`<div class="field"><label for="filter-status">Status</label><select id="filter-status" name="status">`)
	p.option("", "Any", v.Filter.Status)
	p.option(string(todo.StatusNotDone), "Not done", v.Filter.Status)
	p.option(string(todo.StatusDone), "Done", v.Filter.Status)
	p.raw(`</select></div><div class="field"><label for="filter-priority">Priority</label><select id="filter-priority" name="priority">`)
	p.option("", "Any", v.Filter.Priority)
	for _, pr := range []todo.Priority{todo.PriorityLow, todo.PriorityMedium, todo.PriorityHigh} {
		p.option(string(pr), titleCase(string(pr)), v.Filter.Priority)
	}
	p.raw("</select></div>")
	p.input("From", "date", ParamStart, v.Filter.Start, "")
	p.input("To", "date", ParamEnd, v.Filter.End, "")
	p.raw(`<div class="field"><button type="submit">Apply</button> <a class="button secondary"`)
	p.attr("href", ListingHref(v.Query, ParamStatus, "", ParamPriority, "", ParamStart, "", ParamEnd, ""))
	p.raw(">Clear</a></div></div></form></section>")
}

func todoTable(p *page, v TodosView) {
	p.raw(`<section class="panel"><h2>Todos</h2>`)
	if len(v.Todos) == 0 {
		p.raw(`<p class="empty">No todos to show.</p></section>`)
		return
	}

	p.raw("<table><thead><tr>")
	for _, key := range todo.SortKeys() {
		p.raw("<th><a")
		p.attr("href", SortHref(v.Query, v.Sort, key))
		if v.Sort.Key == key {
			p.attr("class", "active")
		}
		p.raw(">")
		p.text(columnLabels[key])
		if v.Sort.Key == key {
			if v.Sort.Direction == todo.Descending {
				p.raw(" ▼")
			} else {
				p.raw(" ▲")
			}
		}
		p.raw("</a></th>")
	}
	p.raw("<th></th></tr></thead><tbody>")

	for _, t := range v.Todos {
		todoRow(p, v, t)
	}
	p.raw("</tbody></table></section>")
}

func todoRow(p *page, v TodosView, t todo.Todo) {
	id := url.PathEscape(t.ID.String())
	if t.Complete {
		p.raw(`<tr class="done">`)
	} else {
		p.raw("<tr>")
	}
	p.raw(`<td class="title">`)
	p.text(t.Title)
	p.raw("</td><td>")
	p.text(t.Description)
	p.raw("</td><td>")
	if t.Complete {
		p.raw("Done")
	} else {
		p.raw("Not done")
	}
	p.raw(`</td><td><span`)
	p.attr("class", "badge "+string(t.Priority))
	p.raw(">")
	p.text(titleCase(string(t.Priority)))
	p.raw("</span></td><td>")
	p.text(DeadlineText(t, v.Loc))
	p.raw("</td><td>")
	p.text(strings.Join(t.Tags, ", "))
	p.raw(`</td><td class="actions"><a class="button secondary"`)
	p.attr("href", ListingHref(v.Query, ParamEdit, t.ID.String()))
	p.raw(">Edit</a> ")

	toggleLabel := "Mark done"
	if t.Complete {
		toggleLabel = "Reopen"
	}
	rowAction(p, v, "/todos/"+id+"/toggle", toggleLabel, "secondary")
	rowAction(p, v, "/todos/"+id+"/delete", "Delete", "danger")
	p.raw("</td></tr>")
}

func rowAction(p *page, v TodosView, action, label, class string) {
	p.raw(`<form method="post"`)
	p.attr("action", action)
	p.raw(`><input type="hidden"`)
	p.attr("name", ParamReturn)
	p.attr("value", v.Query.Encode())
	p.raw("><button")
	p.attr("class", class)
	p.raw(` type="submit">`)
	p.text(label)
	p.raw("</button></form> ")
}

func weatherWidget(p *page, v TodosView) {
	p.raw(`<section class="panel"><h2>Weather</h2><form method="get" action="/todos"><div class="row">`)
	hiddenQuery(p, v.Query, ParamLocation)
	p.input("Location", "text", ParamLocation, v.Location, "")
	p.raw(`<div class="field"><button type="submit">Check</button></div></div></form>`)
	p.alert("error", v.WeatherError)
	if v.Weather != "" {
		p.raw(`<p class="weather">`)
		p.text(v.Location + ": " + v.Weather)
		p.raw("</p>")
	}
	p.raw("</section>")
}

// DeadlineText renders a deadline in loc, the raw value when it did not
// parse, or "-" when absent.
func DeadlineText(t todo.Todo, loc *time.Location) string {
	if !t.HasDeadline {
		if strings.TrimSpace(t.DeadlineRaw) != "" {
			return t.DeadlineRaw
		}
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.Deadline.In(loc).Format(deadlineDisplayLayout)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}
