// Package soa implements the session-scoped request/response engine for the remote service.
// Every operation takes the session it runs in as an explicit argument.
package soa

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/envelope"
	"github.com/skybi/soa-bridge/internal/exchange"
	"github.com/skybi/soa-bridge/internal/failure"
	"github.com/skybi/soa-bridge/internal/jsonvalue"
	"github.com/skybi/soa-bridge/internal/session"
	"net/http"
	"net/url"
	"unicode/utf8"
)

// DefaultLoginMarker identifies the response type of a successful login
const DefaultLoginMarker = "LoginResponse"

// maxStatusMessageLength limits how much of a non-2xx response body is kept in the failure message
const maxStatusMessageLength = 512

// Options configures a Client
type Options struct {
	// BaseAddress is the address every operation path is appended to, e.g. 'http://plm:7001/tc/JsonRestServices'
	BaseAddress string

	// CookieName is the session cookie name; DefaultCookieName if empty
	CookieName string

	// LoginMarker must be contained in the qualified name of a successful login response; DefaultLoginMarker if empty
	LoginMarker string

	// DisablePriorSessionReuse makes a login response without a new cookie fail instead of keeping the token of
	// the prior session
	DisablePriorSessionReuse bool

	// FanOutParallelism caps the amount of concurrent child calls of fan-out operations
	FanOutParallelism int

	// State holds the default header state directives sent with every call
	State *envelope.StateOptions

	// HTTPClient is used for all calls; its redirect policy is overridden
	HTTPClient *http.Client
}

// Client executes operations against a single remote service
type Client struct {
	base      *url.URL
	transport *Transport
	options   Options
}

// New creates a new client.
// A malformed base address results in a failure.KindInvalidEndpoint.
func New(options Options) (*Client, error) {
	base, err := ParseBaseAddress(options.BaseAddress)
	if err != nil {
		return nil, err
	}
	if options.LoginMarker == "" {
		options.LoginMarker = DefaultLoginMarker
	}
	return &Client{
		base:      base,
		transport: NewTransport(options.HTTPClient, options.CookieName),
		options:   options,
	}, nil
}

// BaseAddress returns the normalized base address; sessions are bound to it
func (client *Client) BaseAddress() string {
	return client.base.String()
}

// Subscribe registers a diagnostics subscriber notified after every exchange
func (client *Client) Subscribe(subscriber exchange.Subscriber) {
	client.transport.Subscribe(subscriber)
}

// LastExchange returns the most recent exchange or nil
func (client *Client) LastExchange() *exchange.Exchange {
	return client.transport.Last()
}

// post wraps the body, sends it and validates the HTTP status
func (client *Client) post(ctx context.Context, endpoint Endpoint, body any, policy map[string]jsonvalue.Value, token string) (*RawResponse, error) {
	target, err := resolve(client.base, endpoint)
	if err != nil {
		return nil, err
	}

	raw, err := envelope.Wrap(body, client.options.State.Build(), policy).Marshal()
	if err != nil {
		return nil, fmt.Errorf("could not encode the request envelope of %s: %w", endpoint.Path(), err)
	}

	response, err := client.transport.Send(ctx, endpoint.Path(), target, raw, token)
	if err != nil {
		return nil, err
	}
	if response.Status < 200 || response.Status > 299 {
		return nil, &failure.Error{
			Kind:     failure.KindHTTPStatus,
			Endpoint: endpoint.Path(),
			Status:   response.Status,
			Message:  truncate(string(response.Body), maxStatusMessageLength),
		}
	}
	return response, nil
}

// call runs an authenticated operation and strictly decodes its response into T
func call[T any](ctx context.Context, client *Client, ses *session.Session, endpoint Endpoint, body any, policy map[string]jsonvalue.Value) (*T, error) {
	if err := client.checkSession(ses, endpoint); err != nil {
		return nil, err
	}

	response, err := client.post(ctx, endpoint, body, policy, ses.Token)
	if err != nil {
		return nil, err
	}

	decoded, err := envelope.Decode[T](response.Body)
	if err != nil {
		return nil, annotate(err, endpoint, response.Status)
	}
	return decoded, nil
}

func (client *Client) checkSession(ses *session.Session, endpoint Endpoint) error {
	if !ses.Authenticated() {
		return &failure.Error{Kind: failure.KindNotAuthenticated, Endpoint: endpoint.Path(), Message: "no session has been established"}
	}
	if ses.Endpoint != "" && ses.Endpoint != client.BaseAddress() {
		return &failure.Error{Kind: failure.KindNotAuthenticated, Endpoint: endpoint.Path(), Message: "the session belongs to " + ses.Endpoint}
	}
	return nil
}

// annotate attaches the endpoint and status to failures created without that context
func annotate(err error, endpoint Endpoint, status int) error {
	var typed *failure.Error
	if !errors.As(err, &typed) {
		return failure.Wrap(failure.KindDecode, endpoint.Path(), err)
	}
	annotated := *typed
	if annotated.Endpoint == "" {
		annotated.Endpoint = endpoint.Path()
	}
	if annotated.Status == 0 {
		annotated.Status = status
	}
	return &annotated
}

func logPartialErrors(endpoint Endpoint, data *envelope.ServiceData) {
	if data == nil {
		return
	}
	for _, partial := range data.PartialErrors {
		for _, val := range partial.ErrorValues {
			log.Warn().
				Str("operation", endpoint.Path()).
				Str("uid", partial.UID).
				Str("client_id", partial.ClientID).
				Str("code", val.Code.String()).
				Msg(val.Message)
		}
	}
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
