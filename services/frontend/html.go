package frontend

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// page accumulates the first write error so components can emit markup
// without checking every call.
type page struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newPage(ctx context.Context, w io.Writer) *page {
	return &page{ctx: ctx, w: w}
}

func (p *page) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (p *page) attr(name, value string) {
	p.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (p *page) boolAttr(name string, on bool) {
	if on {
		p.raw(" " + name)
	}
}

func (p *page) render(c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

func (p *page) option(value, label, selected string) {
	p.raw("<option")
	p.attr("value", value)
	p.boolAttr("selected", value == selected)
	p.raw(">")
	p.text(label)
	p.raw("</option>")
}

func (p *page) alert(kind, message string) {
	if message == "" {
		return
	}
	p.raw(`<div class="alert ` + kind + `" role="alert">`)
	p.text(message)
	p.raw("</div>")
}

// input renders a labelled input with an optional inline hint.
func (p *page) input(label, typ, name, value, hint string) {
	p.raw(`<div class="field"><label`)
	p.attr("for", name)
	p.raw(">")
	p.text(label)
	p.raw("</label><input")
	p.attr("id", name)
	p.attr("type", typ)
	p.attr("name", name)
	if typ != "password" {
		p.attr("value", value)
	}
	p.raw(">")
	if hint != "" {
		p.raw(`<div class="hint">`)
		p.text(hint)
		p.raw("</div>")
	}
	p.raw("</div>")
}

func component(fn func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		fn(p)
		return p.err
	})
}
