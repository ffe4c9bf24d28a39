package frontend

import (
	"github.com/a-h/templ"

	"github.com/todo-1m/webclient/internal/app/account"
	"github.com/todo-1m/webclient/internal/contracts"
)

type LoginView struct {
	Email  string
	Errors account.FieldErrors
	Error  string
	Notice string
}

func LoginPage(v LoginView) templ.Component {
	return component(func(p *page) {
		p.raw(`<section class="panel"><h1>Login</h1>`)
		p.alert("notice", v.Notice)
		p.alert("error", v.Error)
		p.raw(`<form method="post" action="/login" novalidate>`)
		p.input("Email", "email", account.FieldEmail, v.Email, v.Errors[account.FieldEmail])
		p.input("Password", "password", account.FieldPassword, "", v.Errors[account.FieldPassword])
		p.raw(`<button type="submit">Login</button> <a class="button secondary" href="/register">Create an account</a>`)
		p.raw("</form></section>")
	})
}

type RegisterView struct {
	Name   string
	Email  string
	Errors account.FieldErrors
	Error  string
}

func RegisterPage(v RegisterView) templ.Component {
	return component(func(p *page) {
		p.raw(`<section class="panel"><h1>Register</h1>`)
		p.alert("error", v.Error)
		p.raw(`<form method="post" action="/register" novalidate>`)
		p.input("Name", "text", account.FieldName, v.Name, v.Errors[account.FieldName])
		p.input("Email", "email", account.FieldEmail, v.Email, v.Errors[account.FieldEmail])
		p.input("Password", "password", account.FieldPassword, "", v.Errors[account.FieldPassword])
		p.raw(`<button type="submit">Register</button> <a class="button secondary" href="/login">Back to login</a>`)
		p.raw("</form></section>")
	})
}

func ProfilePage(user contracts.User) templ.Component {
	return component(func(p *page) {
		p.raw(`<section class="panel"><h1>Profile</h1><table><tbody>`)
		profileRow(p, "Name", account.DisplayName(user))
		profileRow(p, "Email", orDash(user.Email))
		profileRow(p, "User ID", orDash(user.ID.String()))
		p.raw("</tbody></table></section>")
	})
}

func profileRow(p *page, label, value string) {
	p.raw("<tr><th>")
	p.text(label)
	p.raw("</th><td>")
	p.text(value)
	p.raw("</td></tr>")
}

type UsersView struct {
	Users []contracts.User
	Error string
}

func UsersPage(v UsersView) templ.Component {
	return component(func(p *page) {
		p.raw(`<section class="panel"><h1>Users</h1>`)
		p.alert("error", v.Error)
		if len(v.Users) == 0 && v.Error == "" {
			p.raw(`<p class="empty">No users yet.</p></section>`)
			return
		}
		p.raw("<table><thead><tr><th>ID</th><th>Name</th><th>Email</th></tr></thead><tbody>")
		for _, u := range v.Users {
			p.raw("<tr><td>")
			p.text(orDash(u.ID.String()))
			p.raw("</td><td>")
			p.text(account.DisplayName(u))
			p.raw("</td><td>")
			p.text(orDash(u.Email))
			p.raw("</td></tr>")
		}
		p.raw("</tbody></table></section>")
	})
}

// ErrorPage is used for failures that leave nothing else to render.
func ErrorPage(message string) templ.Component {
	return component(func(p *page) {
		p.raw(`<section class="panel">`)
		p.alert("error", message)
		p.raw(`<a class="button secondary" href="/todos">Back to todos</a></section>`)
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
