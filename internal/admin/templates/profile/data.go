package profile

import (
	"sort"
	"strings"
	"time"

	"finitefield.org/admin-console/internal/admin/account"
	"finitefield.org/admin-console/internal/admin/rbac"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// PageData drives the profile page.
type PageData struct {
	DisplayName  string
	Username     string
	Email        string
	Role         string
	Status       string
	Avatar       string
	Initial      string
	Permissions  []string
	Capabilities []string
	SessionUntil string
	Remembered   bool
}

// BuildPageData derives the profile view for user.
func BuildPageData(user account.UserInfo, tokenUntil time.Time, remembered bool) PageData {
	caps := make([]string, 0)
	for capability := range rbac.CapabilitiesFor(user.Subject()) {
		caps = append(caps, string(capability))
	}
	sort.Strings(caps)

	until := "-"
	if !tokenUntil.IsZero() {
		until = helpers.Date(tokenUntil, "")
	}
	status := user.Status
	if status == "" {
		status = "active"
	}
	return PageData{
		DisplayName:  user.DisplayName(),
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		Status:       status,
		Avatar:       user.Avatar,
		Initial:      AvatarInitial(user.Name, user.Email, string(user.ID)),
		Permissions:  append([]string(nil), user.Permissions...),
		Capabilities: caps,
		SessionUntil: until,
		Remembered:   remembered,
	}
}

// AvatarInitial derives the initial used for avatar placeholders.
func AvatarInitial(name, email, fallback string) string {
	candidate := strings.TrimSpace(name)
	if candidate == "" {
		candidate = strings.TrimSpace(email)
	}
	if candidate == "" {
		candidate = strings.TrimSpace(fallback)
	}
	if candidate == "" {
		return "?"
	}
	runes := []rune(strings.ToUpper(candidate))
	return string(runes[0])
}
