package soa

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/envelope"
	"github.com/skybi/soa-bridge/internal/failure"
	"github.com/skybi/soa-bridge/internal/session"
	"net/http"
	"strings"
	"time"
)

// Credentials represents the login credentials of a user
type Credentials struct {
	User          string `json:"user"`
	Password      string `json:"password"`
	Group         string `json:"group"`
	Role          string `json:"role"`
	Locale        string `json:"locale"`
	Discriminator string `json:"descrimator"`
}

type loginBody struct {
	Credentials *Credentials `json:"credentials"`
}

// Login performs the login exchange and returns the established session.
//
// The response is accepted only if its qualified name contains the login marker and it carries no message field.
// The token is read from the session cookie of the response. If the response sets no such cookie and a prior session
// for the same endpoint is given, the prior token is kept (if allowed by the options) and the session is marked as
// reused. Without both, the call fails with failure.KindSessionNotEstablished.
func (client *Client) Login(ctx context.Context, credentials Credentials, prior *session.Session) (*session.Session, error) {
	usablePrior := prior.Authenticated() && prior.Endpoint == client.BaseAddress()

	// Present the prior cookie so the server can keep its session affinity
	priorToken := ""
	if usablePrior {
		priorToken = prior.Token
	}
	response, err := client.post(ctx, EndpointLogin, &loginBody{Credentials: &credentials}, nil, priorToken)
	if err != nil {
		return nil, err
	}

	peek, err := envelope.PeekQName(response.Body)
	if err != nil {
		return nil, annotate(err, EndpointLogin, response.Status)
	}
	if peek.Message != "" || !peek.HasMarker(client.options.LoginMarker) {
		return nil, annotate(peek.ServerFailure(), EndpointLogin, response.Status)
	}

	ses := &session.Session{
		Endpoint:      client.BaseAddress(),
		Username:      credentials.User,
		EstablishedAt: time.Now(),
	}
	if token := tokenFromSetCookie(response.Header, client.transport.CookieName()); token != "" {
		ses.Token = token
		return ses, nil
	}

	if usablePrior && !client.options.DisablePriorSessionReuse {
		log.Warn().
			Str("endpoint", ses.Endpoint).
			Str("username", credentials.User).
			Msg("login response carried no session cookie; keeping the prior session token")
		ses.Token = prior.Token
		ses.Reused = true
		return ses, nil
	}

	return nil, &failure.Error{
		Kind:     failure.KindSessionNotEstablished,
		Endpoint: EndpointLogin.Path(),
		Status:   response.Status,
		Message:  "the login response carried no '" + client.transport.CookieName() + "' cookie",
	}
}

// tokenFromSetCookie scans the semicolon-delimited attributes of every Set-Cookie header for the session cookie.
// Headers folded into one line by intermediaries are split at commas as well.
func tokenFromSetCookie(header http.Header, cookieName string) string {
	prefix := cookieName + "="
	for _, line := range header.Values("Set-Cookie") {
		for _, attribute := range strings.Split(line, ";") {
			for _, part := range strings.Split(attribute, ",") {
				part = strings.TrimSpace(part)
				if !strings.HasPrefix(part, prefix) {
					continue
				}
				if token := strings.Trim(strings.TrimPrefix(part, prefix), `"`); token != "" {
					return token
				}
			}
		}
	}
	return ""
}
