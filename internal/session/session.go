// Package session defines the authenticated session handle that every operation against the remote service takes
// as an explicit argument.
package session

import "time"

// Session represents an authenticated session at the remote service.
// A session never expires by itself; it is replaced by the next successful login for the same endpoint.
type Session struct {
	// Token is the opaque session cookie value
	Token string

	// Endpoint is the base address of the service the session belongs to
	Endpoint string

	// Username is the user the session was established for
	Username string

	// EstablishedAt is the time the login exchange completed
	EstablishedAt time.Time

	// Reused reports whether the login response carried no new cookie and the token of the prior session was kept
	Reused bool
}

// Authenticated reports whether the session carries a token
func (ses *Session) Authenticated() bool {
	return ses != nil && ses.Token != ""
}
