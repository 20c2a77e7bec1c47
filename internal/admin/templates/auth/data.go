package auth

// LoginPageData encapsulates rendering state for the console login screen.
type LoginPageData struct {
	Title     string
	Username  string
	Message   string
	Error     string
	Remember  bool
	Next      string
	LoginPath string
	CSRFToken string
	// IDTokenLogin switches the form to accept a Firebase ID token instead of
	// a password.
	IDTokenLogin bool
}

// OTPPageData drives the one-time-password step.
type OTPPageData struct {
	Title     string
	Error     string
	Next      string
	Action    string
	CSRFToken string
}
