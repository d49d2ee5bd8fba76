package soa

import (
	"bytes"
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/exchange"
	"github.com/skybi/soa-bridge/internal/failure"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCookieName is the session cookie issued by the remote service
const DefaultCookieName = "JSESSIONID"

// maxResponseSize limits response body reads
const maxResponseSize = 32 * 1024 * 1024

// RawResponse represents a received HTTP response
type RawResponse struct {
	Status   int
	Header   http.Header
	Body     []byte
	Exchange *exchange.Exchange
}

// Transport issues exactly one POST per call and mirrors every exchange to its subscribers
type Transport struct {
	httpClient *http.Client
	cookieName string

	last        atomic.Pointer[exchange.Exchange]
	mtx         sync.RWMutex
	subscribers []exchange.Subscriber
}

// NewTransport creates a new transport.
// The given HTTP client is copied and configured to never follow redirects; a nil client uses the defaults.
func NewTransport(httpClient *http.Client, cookieName string) *Transport {
	client := &http.Client{}
	if httpClient != nil {
		copied := *httpClient
		client = &copied
	}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Transport{
		httpClient: client,
		cookieName: cookieName,
	}
}

// CookieName returns the name of the session cookie
func (transport *Transport) CookieName() string {
	return transport.cookieName
}

// Subscribe registers a subscriber notified after every exchange
func (transport *Transport) Subscribe(subscriber exchange.Subscriber) {
	transport.mtx.Lock()
	defer transport.mtx.Unlock()
	transport.subscribers = append(transport.subscribers, subscriber)
}

// Last returns the most recent exchange or nil.
// It is overwritten by every call.
func (transport *Transport) Last() *exchange.Exchange {
	return transport.last.Load()
}

// Send posts the given envelope to the URL and returns the raw response.
// Success is transport-level only: any received response is returned, the status is validated by the caller.
func (transport *Transport) Send(ctx context.Context, operation, url string, body []byte, token string) (*RawResponse, error) {
	record := &exchange.Exchange{
		ID:        uuid.New(),
		Operation: operation,
		Endpoint:  url,
		StartedAt: time.Now(),
	}
	defer transport.publish(record)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		record.Error = err.Error()
		return nil, failure.Wrap(failure.KindInvalidEndpoint, operation, err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	if token != "" {
		request.AddCookie(&http.Cookie{Name: transport.cookieName, Value: token})
	}

	response, err := transport.httpClient.Do(request)
	record.Duration = time.Since(record.StartedAt)
	if err != nil {
		record.Error = err.Error()
		return nil, failure.Wrap(failure.KindTransport, operation, err)
	}
	defer response.Body.Close()
	record.HTTPStatus = response.StatusCode

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize+1))
	record.Duration = time.Since(record.StartedAt)
	if err != nil {
		record.Error = err.Error()
		return nil, &failure.Error{Kind: failure.KindTransport, Endpoint: operation, Status: response.StatusCode, Message: "could not read the response body", Wrapping: err}
	}
	if len(raw) > maxResponseSize {
		record.Error = "response too large"
		return nil, &failure.Error{Kind: failure.KindTransport, Endpoint: operation, Status: response.StatusCode, Wrapping: fmt.Errorf("response exceeds maximum size of %d bytes", maxResponseSize)}
	}
	record.RawBody = string(raw)

	return &RawResponse{
		Status:   response.StatusCode,
		Header:   response.Header,
		Body:     raw,
		Exchange: record,
	}, nil
}

func (transport *Transport) publish(record *exchange.Exchange) {
	transport.last.Store(record)

	log.Debug().
		Str("exchange_id", record.ID.String()).
		Str("operation", record.Operation).
		Int("status", record.HTTPStatus).
		Dur("duration", record.Duration).
		Msg("exchange completed")

	transport.mtx.RLock()
	subscribers := make([]exchange.Subscriber, len(transport.subscribers))
	copy(subscribers, transport.subscribers)
	transport.mtx.RUnlock()
	for _, subscriber := range subscribers {
		subscriber.Observe(record)
	}
}
