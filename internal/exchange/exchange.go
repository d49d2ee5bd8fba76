// Package exchange defines the raw request/response record captured for every call against the remote service
package exchange

import (
	"github.com/google/uuid"
	"time"
)

// Exchange represents a single observed HTTP exchange.
// It is purely observational and not part of the domain model.
type Exchange struct {
	ID         uuid.UUID     `json:"id"`
	Operation  string        `json:"operation"`
	Endpoint   string        `json:"endpoint"`
	HTTPStatus int           `json:"http_status"`
	RawBody    string        `json:"raw_body"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// Succeeded reports whether a response was received and its status is in the 2xx range
func (exchange *Exchange) Succeeded() bool {
	return exchange.Error == "" && exchange.HTTPStatus >= 200 && exchange.HTTPStatus <= 299
}

// Subscriber is notified after every exchange, regardless of its outcome.
// Subscribers must not block and must not modify the exchange.
type Subscriber interface {
	Observe(exchange *Exchange)
}

// SubscriberFunc adapts a plain function to the Subscriber interface
type SubscriberFunc func(exchange *Exchange)

// Observe calls the function itself
func (fn SubscriberFunc) Observe(exchange *Exchange) {
	fn(exchange)
}
