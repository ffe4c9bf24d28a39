// Package frontend renders the HTML pages of the todo web client.
package frontend

import (
	"github.com/a-h/templ"

	"github.com/todo-1m/webclient/internal/app/account"
	"github.com/todo-1m/webclient/internal/contracts"
)

// Chrome is what every page shares: the signed-in user and whether the
// live refresh script should connect.
type Chrome struct {
	Title string
	User  *contracts.User
	Live  bool
}

func Layout(chrome Chrome, body templ.Component) templ.Component {
	return component(func(p *page) {
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw("<title>")
		p.text(chrome.Title)
		p.raw(` · Todo</title><link rel="stylesheet" href="/static/styles.css"></head>`)

		p.raw("<body")
		if chrome.Live {
			p.attr("data-live", "true")
		}
		p.raw(">")
		navbar(p, chrome.User)
		p.raw("<main>")
		p.render(body)
		p.raw(`</main><script src="/static/app.js" defer></script></body></html>`)
	})
}

func navbar(p *page, user *contracts.User) {
	p.raw(`<header class="topbar"><nav><a href="/todos">Todos</a>`)
	if user == nil {
		p.raw(`<a href="/login">Login</a><a href="/register">Register</a></nav>`)
		p.raw("</header>")
		return
	}
	p.raw(`<a href="/users">Users</a><a href="/profile">Profile</a></nav><div>`)
	p.text(account.DisplayName(*user))
	p.raw(` <form method="post" action="/logout"><button class="secondary" type="submit">Logout</button></form>`)
	p.raw("</div></header>")
}
