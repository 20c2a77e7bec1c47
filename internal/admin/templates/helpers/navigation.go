package helpers

import (
	"context"
	"strings"

	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/routes"
)

// RequestPath returns the current request URL path for template helpers.
func RequestPath(ctx context.Context) string {
	return routes.NormalizePath(middleware.RequestPathFromContext(ctx))
}

// BasePath returns the configured admin base path.
func BasePath(ctx context.Context) string {
	return routes.NormalizePath(middleware.BasePathFromContext(ctx))
}

// URL joins an application path onto the base path.
func URL(ctx context.Context, appPath string) string {
	return JoinBase(BasePath(ctx), appPath)
}

// JoinBase joins an application path onto base.
func JoinBase(base, appPath string) string {
	if base == "" || base == "/" {
		return routes.NormalizePath(appPath)
	}
	return routes.JoinPath(base, appPath)
}

// AppPath strips the base path from a request path.
func AppPath(base, requestPath string) string {
	return middleware.AppPath(base, requestPath)
}

// NavActive reports whether the current request should highlight the link.
func NavActive(ctx context.Context, pattern string, prefix bool) bool {
	current := RequestPath(ctx)
	target := routes.NormalizePath(pattern)

	if prefix {
		if target == "/" {
			return current == "/"
		}
		if current == target {
			return true
		}
		return strings.HasPrefix(current, target+"/")
	}

	return current == target
}
