package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const htmxContextKey contextKey = "htmx.info"

// HTMXInfo captures the HX-* request headers the console reacts to.
type HTMXInfo struct {
	IsHTMX     bool
	Boosted    bool
	CurrentURL string
	Target     string
	Trigger    string
}

// Targets reports whether an htmx request swaps into the element with id.
func (i HTMXInfo) Targets(id string) bool {
	return i.IsHTMX && id != "" && strings.TrimPrefix(i.Target, "#") == id
}

// HTMX returns middleware that inspects HX-* headers and annotates the context.
func HTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := HTMXInfo{
				IsHTMX:     strings.EqualFold(r.Header.Get("HX-Request"), "true"),
				Boosted:    strings.EqualFold(r.Header.Get("HX-Boosted"), "true"),
				CurrentURL: r.Header.Get("HX-Current-URL"),
				Target:     r.Header.Get("HX-Target"),
				Trigger:    r.Header.Get("HX-Trigger"),
			}
			w.Header().Add("Vary", "HX-Request")
			ctx := context.WithValue(r.Context(), htmxContextKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HTMXInfoFromContext retrieves HTMX metadata; returns zero value if absent.
func HTMXInfoFromContext(ctx context.Context) HTMXInfo {
	val, _ := ctx.Value(htmxContextKey).(HTMXInfo)
	return val
}

// IsHTMXRequest returns true when the current request was initiated by htmx.
func IsHTMXRequest(ctx context.Context) bool {
	return HTMXInfoFromContext(ctx).IsHTMX
}

// Redirect sends the browser to target: HX-Redirect with 204 for htmx,
// a plain redirect with status otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, target string, status int) {
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, status)
}

// Refresh asks htmx to reload the whole page.
func Refresh(w http.ResponseWriter) {
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusNoContent)
}

// RequireHTMX answers 404 to anything but htmx so fragment routes stay
// out of direct navigation.
func RequireHTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
