// Package session models the session state the web client keeps in local
// storage: the bearer token, the signed-in user, and the login timestamp.
// The client treats a session as authenticated purely by the presence of a
// token and a login timestamp younger than seven days; no server round-trip
// confirms the token on page loads. The server-signed token has its own
// expiry, so the two cutoffs can disagree — the client-side one wins here.
package session

import "time"

// MaxAge is how long a stored login is trusted before the client
// considers itself logged out, independent of token expiry.
const MaxAge = 7 * 24 * time.Hour

// User is the subset of account data the client keeps alongside the token
type User struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the client-held authentication state
type Session struct {
	Token   string
	LoginAt time.Time

	user *User
}

// New records a fresh login
func New(token string, user User) *Session {
	return &Session{
		Token:   token,
		LoginAt: time.Now(),
		user:    &user,
	}
}

// IsAuthenticated reports whether the session is still trusted: a token is
// present and the recorded login is younger than MaxAge.
func (s *Session) IsAuthenticated() bool {
	if s == nil || s.Token == "" || s.user == nil {
		return false
	}
	return time.Since(s.LoginAt) < MaxAge
}

// User returns the stored user, or nil once the session is no longer
// authenticated.
func (s *Session) User() *User {
	if !s.IsAuthenticated() {
		return nil
	}
	return s.user
}

// Logout clears all session state
func (s *Session) Logout() {
	s.Token = ""
	s.user = nil
	s.LoginAt = time.Time{}
}
