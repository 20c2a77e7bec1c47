package middleware

import (
	"context"
	"net/http"
	"strings"
)

type environmentContextKey struct{}

const defaultEnvironment = "Development"

// Deployment describes the environment the console runs in, as shown in the
// topbar badge.
type Deployment struct {
	Name       string
	Short      string
	Production bool
}

// NewDeployment derives the badge details from an environment label.
// Empty labels mean development.
func NewDeployment(label string) Deployment {
	label = strings.TrimSpace(label)
	if label == "" {
		label = defaultEnvironment
	}
	d := Deployment{Name: label}
	switch strings.ToLower(label) {
	case "production", "prod":
		d.Short, d.Production = "PRD", true
	case "staging", "stg":
		d.Short = "STG"
	case "development", "dev":
		d.Short = "DEV"
	default:
		d.Short = strings.ToUpper(label)
		if len(d.Short) > 3 {
			d.Short = d.Short[:3]
		}
	}
	return d
}

// Environment attaches the deployment to the request context.
func Environment(value string) func(http.Handler) http.Handler {
	d := NewDeployment(value)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), environmentContextKey{}, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeploymentFromContext returns the deployment registered for the request,
// or the development default.
func DeploymentFromContext(ctx context.Context) Deployment {
	if ctx != nil {
		if d, ok := ctx.Value(environmentContextKey{}).(Deployment); ok {
			return d
		}
	}
	return NewDeployment("")
}
