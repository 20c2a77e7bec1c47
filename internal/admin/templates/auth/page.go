package auth

import (
	"context"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// LoginPage renders the sign-in card.
func LoginPage(data LoginPageData) templ.Component {
	return helpers.Component(func(_ context.Context, b *helpers.Writer) {
		b.Open("div", "card login-card w-full max-w-sm space-y-4", "data-login", "")
		b.Element("h1", "text-xl font-semibold", data.Title)
		if data.Message != "" {
			b.Element("p", "alert alert-info", data.Message, "role", "status", "data-login-message", "")
		}
		if data.Error != "" {
			b.Element("p", "alert alert-danger", data.Error, "role", "alert", "data-login-error", "")
		}

		b.Open("form", "space-y-3", "method", "post", "action", data.LoginPath)
		hidden(b, "_csrf", data.CSRFToken)
		hidden(b, "next", data.Next)
		if data.IDTokenLogin {
			field(b, "id_token", "ID token", "password", "", "current-password")
		} else {
			field(b, "username", "Username", "text", data.Username, "username")
			field(b, "password", "Password", "password", "", "current-password")
		}
		b.Open("label", "flex items-center gap-2 text-sm")
		b.Raw(`<input type="checkbox" name="remember" value="1"`)
		b.AttrIf("checked", data.Remember)
		b.Raw(">")
		b.Text("Keep me signed in")
		b.Close("label")
		b.Element("button", "button button-primary w-full", "Sign in", "type", "submit")
		b.Close("form")
		b.Close("div")
	})
}

// OTPPage renders the verification code step.
func OTPPage(data OTPPageData) templ.Component {
	return helpers.Component(func(_ context.Context, b *helpers.Writer) {
		b.Open("div", "card login-card w-full max-w-sm space-y-4", "data-otp", "")
		b.Element("h1", "text-xl font-semibold", data.Title)
		b.Element("p", "text-sm text-slate-600", "Enter the 6-digit code from your authenticator app.")
		if data.Error != "" {
			b.Element("p", "alert alert-danger", data.Error, "role", "alert", "data-login-error", "")
		}
		b.Open("form", "space-y-3", "method", "post", "action", data.Action)
		hidden(b, "_csrf", data.CSRFToken)
		hidden(b, "next", data.Next)
		field(b, "code", "Verification code", "text", "", "one-time-code")
		b.Element("button", "button button-primary w-full", "Verify", "type", "submit")
		b.Close("form")
		b.Close("div")
	})
}

func hidden(b *helpers.Writer, name, value string) {
	b.Raw(`<input type="hidden"`)
	b.Attr("name", name)
	b.Attr("value", value)
	b.Raw(">")
}

func field(b *helpers.Writer, name, label, kind, value, autocomplete string) {
	b.Open("label", "field block")
	b.Element("span", "field-label", label)
	b.Raw("<input")
	b.Attr("class", "input w-full")
	b.Attr("type", kind)
	b.Attr("name", name)
	b.Attr("value", value)
	b.Attr("autocomplete", autocomplete)
	b.Raw(" required>")
	b.Close("label")
}
