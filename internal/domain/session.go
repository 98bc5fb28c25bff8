package domain

// AuthMode selects which password endpoint the auth form submits to.
type AuthMode string

const (
	AuthLogin    AuthMode = "login"
	AuthRegister AuthMode = "register"
)

// Path returns the backend path for the mode.
func (m AuthMode) Path() string {
	if m == AuthRegister {
		return "/auth/register"
	}
	return "/auth/login"
}

// Title is the label shown on the auth modal and its submit button.
func (m AuthMode) Title() string {
	if m == AuthRegister {
		return "Register"
	}
	return "Login"
}

// SuccessText is the notification shown after the mode succeeds.
func (m AuthMode) SuccessText() string {
	if m == AuthRegister {
		return "Registered successfully!"
	}
	return "Logged in successfully!"
}

// Section is one of the mutually exclusive top-level views.
type Section string

const (
	SectionAuth Section = "auth"
	SectionMain Section = "main"
)

// NotificationKind picks the colour of a toast.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification texts.
const (
	NoteGoogleSuccess    = "Google login successful!"
	NoteGoogleFailedPfx  = "Google login failed: "
	NoteLoggedOut        = "Logged out successfully"
	NoteSessionExpired   = "Session expired. Please log in again."
	NotePleaseLogInAgain = "Please log in again."
)

// NoteStorageError is shown when the token cannot be persisted locally.
const NoteStorageError = "Could not save your session. Please try again."

// NoteCredentialsRequired is shown when the auth form is submitted incomplete.
const NoteCredentialsRequired = "Email and password are required"
