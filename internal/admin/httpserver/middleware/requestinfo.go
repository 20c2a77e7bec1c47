package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"finitefield.org/admin-console/internal/admin/routes"
)

type requestInfoKeyType int

const requestInfoKey requestInfoKeyType = iota

// RequestInfo is the console's view of where a request is: the raw path,
// the mount point and the application location below it.
type RequestInfo struct {
	Path     string
	BasePath string
	// Location is Path with BasePath stripped, e.g. "/orders/42".
	Location string
	// Origin is the application location of the page that issued the
	// request (HX-Current-URL, else Referer). Empty when it is unknown or
	// lies outside BasePath.
	Origin string
}

// RequestInfoMiddleware resolves RequestInfo for every request mounted below
// basePath.
func RequestInfoMiddleware(basePath string) func(http.Handler) http.Handler {
	base := routes.NormalizePath(basePath)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &RequestInfo{
				Path:     r.URL.Path,
				BasePath: base,
				Location: AppPath(base, r.URL.Path),
				Origin:   originLocation(r, base),
			}
			ctx := context.WithValue(r.Context(), requestInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestInfoFromContext returns the request metadata stored by RequestInfoMiddleware.
func RequestInfoFromContext(ctx context.Context) (*RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey).(*RequestInfo)
	return info, ok && info != nil
}

// RequestPathFromContext returns the request path or empty string when unavailable.
func RequestPathFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok {
		return info.Path
	}
	return ""
}

// BasePathFromContext returns the resolved admin base path or "/" when unavailable.
func BasePathFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok && info.BasePath != "" {
		return info.BasePath
	}
	return "/"
}

// LocationFromContext returns the application location of the request.
func LocationFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok {
		return info.Location
	}
	return ""
}

// OriginFromContext returns the application location of the page that
// issued the request, or "".
func OriginFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok {
		return info.Origin
	}
	return ""
}

// AppPath strips base from a request path. Paths outside base are returned
// normalised but otherwise unchanged.
func AppPath(base, requestPath string) string {
	requestPath = routes.NormalizePath(requestPath)
	base = routes.NormalizePath(base)
	if base == "/" {
		return requestPath
	}
	if requestPath == base {
		return "/"
	}
	if strings.HasPrefix(requestPath, base+"/") {
		return requestPath[len(base):]
	}
	return requestPath
}

func originLocation(r *http.Request, base string) string {
	raw := r.Header.Get("HX-Current-URL")
	if raw == "" {
		raw = r.Referer()
	}
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Host != "" && parsed.Host != r.Host) {
		return ""
	}
	p := routes.NormalizePath(parsed.Path)
	if base != "/" && p != base && !strings.HasPrefix(p, base+"/") {
		return ""
	}
	return AppPath(base, p)
}
