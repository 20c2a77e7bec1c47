package navigation

import (
	"github.com/samber/lo"
)

// UserMenuItem is an entry of the account dropdown.
type UserMenuItem struct {
	Key       string
	Label     string
	Icon      string
	Route     string
	Action    string
	Separator bool
	Hidden    bool
}

// ActionLogout marks the sign-out entry.
const ActionLogout = "logout"

func defaultUserMenu() []UserMenuItem {
	return []UserMenuItem{
		{Key: "profile", Label: "Profile", Icon: "pi pi-user", Route: "/profile"},
		{Key: "settings", Label: "Account Settings", Icon: "pi pi-cog", Route: "/settings"},
		{Key: "preferences", Label: "Preferences", Icon: "pi pi-sliders-h", Route: "/preferences"},
		{Key: "help", Label: "Help Center", Icon: "pi pi-question-circle", Route: "/help"},
		{Key: "feedback", Label: "Feedback", Icon: "pi pi-comment", Route: "/feedback"},
		{Key: "separator2", Separator: true},
		{Key: "logout", Label: "Sign out", Icon: "pi pi-sign-out", Action: ActionLogout},
	}
}

// UserMenuItems returns the dropdown for role. Admins get the admin panel
// entry and a separator ahead of the help entry.
func UserMenuItems(role string) []UserMenuItem {
	items := defaultUserMenu()
	if role == "admin" {
		extra := []UserMenuItem{
			{Key: "admin-panel", Label: "Admin Panel", Icon: "pi pi-shield", Route: "/admin"},
			{Key: "separator-admin", Separator: true},
		}
		_, at, ok := lo.FindIndexOf(items, func(item UserMenuItem) bool { return item.Key == "help" })
		if !ok {
			at = len(items)
		}
		items = append(items[:at], append(extra, items[at:]...)...)
	}
	return lo.Reject(items, func(item UserMenuItem, _ int) bool { return item.Hidden })
}
