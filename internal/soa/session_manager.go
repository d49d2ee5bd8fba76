package soa

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/failure"
	"github.com/skybi/soa-bridge/internal/session"
)

// SessionManager establishes sessions through a client and keeps the current one in a session storage
type SessionManager struct {
	client  *Client
	storage session.Storage
}

// NewSessionManager creates a new session manager
func NewSessionManager(client *Client, storage session.Storage) *SessionManager {
	return &SessionManager{
		client:  client,
		storage: storage,
	}
}

// Client returns the client the manager authenticates against
func (manager *SessionManager) Client() *Client {
	return manager.client
}

// Authenticate logs in with the given credentials and stores the resulting session.
// The stored session is only replaced on success; a failed login leaves it untouched.
func (manager *SessionManager) Authenticate(ctx context.Context, credentials Credentials) (*session.Session, error) {
	prior, err := manager.storage.GetByEndpoint(ctx, manager.client.BaseAddress())
	if err != nil {
		return nil, err
	}

	ses, err := manager.client.Login(ctx, credentials, prior)
	if err != nil {
		log.Warn().Err(err).Str("username", credentials.User).Msg("login failed")
		return nil, err
	}

	if err := manager.storage.Save(ctx, ses); err != nil {
		return nil, err
	}
	log.Info().
		Str("endpoint", ses.Endpoint).
		Str("username", ses.Username).
		Bool("reused", ses.Reused).
		Msg("session established")
	return ses, nil
}

// Current returns the current session or nil
func (manager *SessionManager) Current(ctx context.Context) (*session.Session, error) {
	return manager.storage.GetByEndpoint(ctx, manager.client.BaseAddress())
}

// Require returns the current session or a failure.KindNotAuthenticated
func (manager *SessionManager) Require(ctx context.Context) (*session.Session, error) {
	ses, err := manager.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !ses.Authenticated() {
		return nil, &failure.Error{Kind: failure.KindNotAuthenticated, Message: "no session has been established"}
	}
	return ses, nil
}

// Forget drops the current session locally; the server is not notified
func (manager *SessionManager) Forget(ctx context.Context) error {
	return manager.storage.TerminateByEndpoint(ctx, manager.client.BaseAddress())
}
