// Package rbac maps operator roles and explicit permissions onto the
// capabilities that gate console routes.
package rbac

import (
	"strings"

	"github.com/samber/lo"
)

// Role is an operator access tier.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
	RoleGuest     Role = "guest"
)

// Capability is a named permission checked by handlers and the menu.
type Capability string

const (
	CapDashboardView     Capability = "dashboard.view"
	CapCustomersView     Capability = "customers.view"
	CapAnalyticsView     Capability = "analytics.view"
	CapSettingsManage    Capability = "settings.manage"
	CapNotificationsView Capability = "notifications.view"
	CapAdminPanel        Capability = "admin.panel"
)

// WildcardPermission grants every capability when present in a user's
// explicit permission list.
const WildcardPermission = "*"

var capabilityRoles = map[Capability]Roles{
	CapDashboardView:     {RoleAdmin, RoleModerator, RoleUser, RoleGuest},
	CapCustomersView:     {RoleAdmin, RoleModerator, RoleUser},
	CapAnalyticsView:     {RoleAdmin, RoleModerator},
	CapSettingsManage:    {RoleAdmin},
	CapNotificationsView: {RoleAdmin, RoleModerator, RoleUser},
	CapAdminPanel:        {RoleAdmin},
}

// Roles is a list of roles.
type Roles []Role

// Has reports whether role is present.
func (rs Roles) Has(role Role) bool {
	return lo.Contains(rs, role)
}

// Intersects reports whether any candidate role is present.
func (rs Roles) Intersects(candidate Roles) bool {
	return lo.SomeBy(candidate, rs.Has)
}

// NormaliseRoles lowercases, trims and de-duplicates raw role strings.
func NormaliseRoles(raw []string) Roles {
	roles := lo.FilterMap(raw, func(val string, _ int) (Role, bool) {
		role := Role(strings.ToLower(strings.TrimSpace(val)))
		return role, role != ""
	})
	if len(roles) == 0 {
		return nil
	}
	return lo.Uniq(roles)
}

// RolesForCapability returns the roles that hold capability.
func RolesForCapability(capability Capability) Roles {
	return capabilityRoles[capability]
}

// Subject is whoever a check is made for.
type Subject struct {
	Roles       []string
	Permissions []string
}

// Can reports whether the subject holds capability. An empty capability is
// always granted. Admins hold every known capability; explicit permissions
// grant a capability directly.
func (s Subject) Can(capability Capability) bool {
	if capability == "" {
		return true
	}
	if lo.Contains(s.Permissions, WildcardPermission) || lo.Contains(s.Permissions, string(capability)) {
		return true
	}
	allowed := RolesForCapability(capability)
	if len(allowed) == 0 {
		return false
	}
	roles := NormaliseRoles(s.Roles)
	if roles.Has(RoleAdmin) {
		return true
	}
	return allowed.Intersects(roles)
}

// HasRole reports whether the user roles include required. Admins always do.
func HasRole(userRoles []string, required Role) bool {
	roles := NormaliseRoles(userRoles)
	return roles.Has(RoleAdmin) || roles.Has(required)
}

// HasAnyRole reports whether the user holds any of required.
func HasAnyRole(userRoles []string, required Roles) bool {
	roles := NormaliseRoles(userRoles)
	return roles.Has(RoleAdmin) || required.Intersects(roles)
}

// HasCapability is Can for a roles-only subject.
func HasCapability(userRoles []string, capability Capability) bool {
	return Subject{Roles: userRoles}.Can(capability)
}

// CapabilitiesFor lists every capability the subject holds.
func CapabilitiesFor(s Subject) map[Capability]bool {
	caps := make(map[Capability]bool, len(capabilityRoles))
	for capability := range capabilityRoles {
		if s.Can(capability) {
			caps[capability] = true
		}
	}
	return caps
}
