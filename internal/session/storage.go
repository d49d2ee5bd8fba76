package session

import "context"

// Storage defines the session storage API.
// Implementations must be safe for concurrent use; concurrent writers for the same endpoint follow last-writer-wins.
type Storage interface {
	// GetByEndpoint retrieves the current session of an endpoint
	GetByEndpoint(ctx context.Context, endpoint string) (*Session, error)

	// GetByUsername retrieves all current sessions established for a specific username
	GetByUsername(ctx context.Context, username string) ([]*Session, error)

	// Save stores a session, replacing the current session of its endpoint
	Save(ctx context.Context, ses *Session) error

	// TerminateByEndpoint removes the current session of an endpoint
	TerminateByEndpoint(ctx context.Context, endpoint string) error
}
