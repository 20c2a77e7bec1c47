package ui

import (
	"time"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/account"
	profiletpl "finitefield.org/admin-console/internal/admin/templates/profile"
)

// profile renders the signed-in operator's account summary.
func (h *Handlers) profile(v *view) templ.Component {
	var (
		info       account.UserInfo
		tokenUntil time.Time
		remembered bool
	)
	if v.user != nil {
		info = v.user.UserInfo
	}
	if v.sess != nil {
		tokenUntil = v.sess.TokenUntil()
		remembered = v.sess.RememberMe()
	}
	return profiletpl.Index(profiletpl.BuildPageData(info, tokenUntil, remembered))
}
