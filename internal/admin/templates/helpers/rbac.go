package helpers

import (
	"context"

	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/rbac"
)

// HasCapability reports whether the authenticated user possesses the capability.
// Empty capability strings default to true to avoid guarding unconstrained actions.
func HasCapability(ctx context.Context, capability string) bool {
	if capability == "" {
		return true
	}
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return false
	}
	return user.Can(rbac.Capability(capability))
}
