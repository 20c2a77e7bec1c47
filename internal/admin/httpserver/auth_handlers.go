package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/admin-console/internal/admin/account"
	custommw "finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/logging"
	"finitefield.org/admin-console/internal/admin/preferences"
	appsession "finitefield.org/admin-console/internal/admin/session"
	"finitefield.org/admin-console/internal/admin/templates/auth"
	"finitefield.org/admin-console/internal/admin/templates/layouts"
)

const (
	msgFormError       = "The form could not be submitted. Please try again."
	msgMissingFields   = "Enter your username and password."
	msgMissingIDToken  = "Paste an ID token to sign in."
	msgInvalidLogin    = "Invalid username or password."
	msgInvalidCode     = "The verification code is not valid."
	msgBackendDown     = "Sign-in failed. Please try again later."
	msgSessionExpired  = "Your session has expired. Please sign in again."
	msgLoggedOut       = "You have been signed out."
	msgLoginRequired   = "Please sign in to continue."
	msgInvalidIdentity = "Your sign-in is no longer valid. Please sign in again."
)

type authHandlers struct {
	accounts     account.Service
	prefs        *preferences.Store
	basePath     string
	loginPath    string
	appTitle     string
	idTokenLogin bool
}

func newAuthHandlers(accounts account.Service, prefs *preferences.Store, basePath, loginPath, appTitle string, idTokenLogin bool) *authHandlers {
	if accounts == nil {
		panic("auth: account service is required")
	}
	if strings.TrimSpace(basePath) == "" {
		basePath = "/"
	}
	if strings.TrimSpace(loginPath) == "" {
		if basePath == "/" {
			loginPath = "/login"
		} else {
			loginPath = strings.TrimRight(basePath, "/") + "/login"
		}
	}
	return &authHandlers{
		accounts:     accounts,
		prefs:        prefs,
		basePath:     basePath,
		loginPath:    loginPath,
		appTitle:     appTitle,
		idTokenLogin: idTokenLogin,
	}
}

func (h *authHandlers) otpPath() string {
	return strings.TrimRight(h.loginPath, "/") + "/otp"
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) && !forceLogin(r) {
		http.Redirect(w, r, h.redirectTarget(r.URL.Query().Get("next")), http.StatusFound)
		return
	}
	h.renderLoginPage(w, r, h.buildLoginPageData(r, nil), http.StatusOK)
}

func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderLoginPage(w, r, h.buildLoginPageData(r, &loginFormState{Error: msgFormError}), http.StatusBadRequest)
		return
	}

	state := &loginFormState{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Remember: parseCheckbox(r.PostFormValue("remember")),
		Next:     r.PostFormValue("next"),
	}
	creds := account.Credentials{
		Username: state.Username,
		Password: r.PostFormValue("password"),
		IDToken:  strings.TrimSpace(r.PostFormValue("id_token")),
	}
	switch {
	case h.idTokenLogin && creds.IDToken == "":
		state.Error = msgMissingIDToken
	case !h.idTokenLogin && (creds.Username == "" || creds.Password == ""):
		state.Error = msgMissingFields
	}
	if state.Error != "" {
		h.renderLoginPage(w, r, h.buildLoginPageData(r, state), http.StatusBadRequest)
		return
	}

	result, err := h.accounts.Login(r.Context(), creds)
	if err != nil {
		logger.Info("admin login failed", zap.String("username", creds.Username), zap.Error(err))
		status := http.StatusUnauthorized
		state.Error = msgInvalidLogin
		if !errors.Is(err, account.ErrInvalidCredentials) && !errors.Is(err, account.ErrUnauthorized) && !errors.Is(err, account.ErrTokenExpired) {
			status = http.StatusBadGateway
			state.Error = msgBackendDown
		}
		h.renderLoginPage(w, r, h.buildLoginPageData(r, state), status)
		return
	}

	sess, _ := custommw.SessionFromContext(r.Context())
	if sess != nil {
		sess.SetRememberMe(state.Remember)
	}

	if result.NeedOTP {
		if sess == nil {
			h.renderLoginPage(w, r, h.buildLoginPageData(r, &loginFormState{Error: msgBackendDown}), http.StatusInternalServerError)
			return
		}
		sess.SetPendingOTP(result.OTPKey)
		target := h.otpPath()
		if next := h.normalizeNext(state.Next); next != "" {
			target += "?" + url.Values{"next": {next}}.Encode()
		}
		h.redirect(w, r, target)
		return
	}

	h.completeLogin(w, r, sess, result.Session, state.Next)
}

func (h *authHandlers) OTPForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok || sess.PendingOTP() == "" {
		http.Redirect(w, r, h.loginPath, http.StatusFound)
		return
	}
	h.renderOTPPage(w, r, r.URL.Query().Get("next"), "", http.StatusOK)
}

func (h *authHandlers) OTPSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok || sess.PendingOTP() == "" {
		h.redirect(w, r, h.loginPath)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderOTPPage(w, r, "", msgFormError, http.StatusBadRequest)
		return
	}
	next := r.PostFormValue("next")
	code := strings.TrimSpace(r.PostFormValue("code"))
	if code == "" {
		h.renderOTPPage(w, r, next, msgInvalidCode, http.StatusBadRequest)
		return
	}

	issued, err := h.accounts.VerifyOTP(r.Context(), sess.PendingOTP(), code)
	if err != nil {
		logging.FromContext(r.Context()).Info("admin otp failed", zap.Error(err))
		if errors.Is(err, account.ErrOTPRequired) || errors.Is(err, account.ErrInvalidCredentials) {
			h.renderOTPPage(w, r, next, msgInvalidCode, http.StatusUnauthorized)
			return
		}
		h.renderOTPPage(w, r, next, msgBackendDown, http.StatusBadGateway)
		return
	}
	h.completeLogin(w, r, sess, issued, next)
}

// completeLogin stores the issued backend session and leaves the login flow.
func (h *authHandlers) completeLogin(w http.ResponseWriter, r *http.Request, sess *appsession.Session, issued account.Session, next string) {
	if sess != nil {
		sess.SetUser(custommw.SessionUser(issued.User, issued.Token), issued.ExpiresAt)
	}
	logging.FromContext(r.Context()).Info("admin login succeeded", zap.String("user_id", string(issued.User.ID)))
	h.redirect(w, r, h.redirectTarget(next))
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if user := sess.User(); user != nil && user.Token != "" {
			if err := h.accounts.Logout(r.Context(), user.Token); err != nil && !errors.Is(err, account.ErrUnsupported) {
				logging.FromContext(r.Context()).Warn("admin logout: revoke token failed", zap.Error(err))
			}
		}
		sess.Destroy()
	}
	h.redirect(w, r, h.loginURLWithParams(map[string]string{"status": "logged_out"}))
}

func (h *authHandlers) redirect(w http.ResponseWriter, r *http.Request, target string) {
	custommw.Redirect(w, r, target, http.StatusSeeOther)
}

type loginFormState struct {
	Username string
	Remember bool
	Next     string
	Error    string
	Message  string
}

func (h *authHandlers) buildLoginPageData(r *http.Request, state *loginFormState) auth.LoginPageData {
	q := url.Values{}
	if r.URL != nil {
		q = r.URL.Query()
	}
	if state == nil {
		state = &loginFormState{
			Username: strings.TrimSpace(q.Get("username")),
			Next:     q.Get("next"),
		}
		if sess, ok := custommw.SessionFromContext(r.Context()); ok {
			state.Remember = sess.RememberMe()
		}
	}

	message := state.Message
	if strings.TrimSpace(message) == "" && state.Error == "" {
		message = h.messageForQuery(q)
	}

	return auth.LoginPageData{
		Title:        "Sign in",
		Username:     state.Username,
		Message:      message,
		Error:        state.Error,
		Remember:     state.Remember,
		Next:         h.normalizeNext(state.Next),
		LoginPath:    h.loginPath,
		CSRFToken:    custommw.CSRFTokenFromContext(r.Context()),
		IDTokenLogin: h.idTokenLogin,
	}
}

func (h *authHandlers) renderLoginPage(w http.ResponseWriter, r *http.Request, data auth.LoginPageData, status int) {
	h.renderBare(w, r, data.Title, auth.LoginPage(data), status)
}

func (h *authHandlers) renderOTPPage(w http.ResponseWriter, r *http.Request, next, errMsg string, status int) {
	data := auth.OTPPageData{
		Title:     "Verify sign-in",
		Error:     errMsg,
		Next:      h.normalizeNext(next),
		Action:    h.otpPath(),
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
	}
	h.renderBare(w, r, data.Title, auth.OTPPage(data), status)
}

func (h *authHandlers) renderBare(w http.ResponseWriter, r *http.Request, title string, body templ.Component, status int) {
	theme := preferences.DefaultTheme()
	if h.prefs != nil {
		prefs, _ := h.prefs.Load(r)
		theme = prefs.Theme
	}
	if h.appTitle != "" {
		title += " - " + h.appTitle
	}
	templ.Handler(layouts.Bare(title, theme, body), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *authHandlers) isAuthenticated(r *http.Request) bool {
	sess, ok := custommw.SessionFromContext(r.Context())
	return ok && sess.LoggedIn(timeNow())
}

func (h *authHandlers) messageForQuery(q url.Values) string {
	if q.Get("status") == "logged_out" {
		return msgLoggedOut
	}
	switch q.Get("reason") {
	case custommw.ReasonTokenExpired, "expired":
		return msgSessionExpired
	case custommw.ReasonMissingToken:
		return msgLoginRequired
	case custommw.ReasonTokenInvalid:
		return msgInvalidIdentity
	default:
		return ""
	}
}

func (h *authHandlers) redirectTarget(raw string) string {
	if next := h.normalizeNext(raw); next != "" {
		return next
	}
	if strings.TrimSpace(h.basePath) == "" {
		return "/"
	}
	return h.basePath
}

func (h *authHandlers) loginURLWithParams(params map[string]string) string {
	parsed, err := url.Parse(h.loginPath)
	if err != nil {
		return h.loginPath
	}
	q := parsed.Query()
	for key, val := range params {
		if strings.TrimSpace(val) == "" {
			continue
		}
		q.Set(key, val)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func parseCheckbox(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

func forceLogin(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("force"))) {
	case "1", "true", "yes", "force":
		return true
	default:
		return false
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	trim := func(p string) string {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		for len(p) > 1 && strings.HasSuffix(p, "/") {
			p = strings.TrimSuffix(p, "/")
		}
		return p
	}
	return trim(a) == trim(b)
}

// normalizeNext drops unsafe targets and targets inside the login flow.
func (h *authHandlers) normalizeNext(raw string) string {
	sanitized := sanitizeNextTarget(h.basePath, raw)
	if sanitized == "" {
		return ""
	}
	p := pathOnly(sanitized)
	if samePath(p, h.loginPath) || samePath(p, h.otpPath()) {
		return ""
	}
	return sanitized
}

// sanitizeNextTarget accepts only local paths below basePath, so a next
// parameter can never redirect off-site.
func sanitizeNextTarget(basePath, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}

	pathValue := parsed.Path
	if pathValue == "" {
		pathValue = "/"
	}

	unescaped, err := url.PathUnescape(pathValue)
	if err != nil {
		return ""
	}
	if strings.Contains(unescaped, "\\") {
		return ""
	}

	cleaned := path.Clean(unescaped)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if strings.HasPrefix(cleaned, "//") {
		return ""
	}

	base := normalizeBasePath(basePath)
	if base != "/" && !hasSafePrefix(cleaned, base) {
		return ""
	}

	target := cleaned
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		target += "#" + parsed.Fragment
	}
	return target
}

func hasSafePrefix(pathValue, base string) bool {
	if base == "/" {
		return strings.HasPrefix(pathValue, "/")
	}
	if !strings.HasPrefix(pathValue, base) {
		return false
	}
	if len(pathValue) == len(base) {
		return true
	}
	return pathValue[len(base)] == '/'
}

func pathOnly(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Path
}
