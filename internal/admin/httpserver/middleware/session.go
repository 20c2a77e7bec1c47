package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/admin-console/internal/admin/logging"
	appsession "finitefield.org/admin-console/internal/admin/session"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "admin.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
	Destroy(http.ResponseWriter)
}

// Session attaches the decoded session to the request context and persists
// changes back to the client cookie.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context())
			sess, err := store.Load(r)
			if errors.Is(err, appsession.ErrExpired) {
				logger.Debug("session expired: resetting")
				store.Destroy(w)
				sess = store.New()
			} else if err != nil || sess == nil {
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			rr := r.WithContext(ctx)

			sw := &sessionWriter{ResponseWriter: w, store: store, sess: sess, logger: logger}
			next.ServeHTTP(sw, rr)
			sw.save()
		})
	}
}

// sessionWriter saves the session before the response header goes out.
type sessionWriter struct {
	http.ResponseWriter
	store  SessionStore
	sess   *appsession.Session
	logger *zap.Logger
	saved  bool
}

func (w *sessionWriter) save() {
	if w.saved {
		return
	}
	w.saved = true
	if err := w.store.Save(w.ResponseWriter, w.sess); err != nil {
		w.logger.Warn("session save failed", zap.Error(err))
	}
}

func (w *sessionWriter) WriteHeader(status int) {
	w.save()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.save()
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher.
func (w *sessionWriter) Flush() {
	w.save()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}
