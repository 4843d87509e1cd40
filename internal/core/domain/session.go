package domain

// SessionState is the lifecycle state of a Session Controller.
type SessionState string

const (
	StateInitializing  SessionState = "initializing"
	StateAnonymous     SessionState = "anonymous"
	StateAuthenticated SessionState = "authenticated"
)

// Session is the durable pair kept by the Token Store.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// HasToken reports whether a bearer token is present.
func (s Session) HasToken() bool {
	return s.Token != ""
}
