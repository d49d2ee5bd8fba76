// Package diagnostics provides the exchange subscribers used to observe the traffic to the remote service
package diagnostics

import (
	"github.com/rs/zerolog"
	"github.com/skybi/soa-bridge/internal/exchange"
)

// maxLoggedBodyLength limits the raw body written into log events
const maxLoggedBodyLength = 2048

// Logger writes every exchange into a zerolog logger.
// Successful exchanges are logged on debug level, failed ones on warn level.
type Logger struct {
	logger   zerolog.Logger
	withBody bool
}

var _ exchange.Subscriber = (*Logger)(nil)

// NewLogger creates a new logging subscriber; withBody defines whether raw response bodies are logged
func NewLogger(logger zerolog.Logger, withBody bool) *Logger {
	return &Logger{
		logger:   logger,
		withBody: withBody,
	}
}

// Observe logs a single exchange
func (logger *Logger) Observe(record *exchange.Exchange) {
	event := logger.logger.Debug()
	if !record.Succeeded() {
		event = logger.logger.Warn()
	}

	event = event.
		Str("exchange_id", record.ID.String()).
		Str("operation", record.Operation).
		Str("endpoint", record.Endpoint).
		Int("status", record.HTTPStatus).
		Dur("duration", record.Duration)
	if record.Error != "" {
		event = event.Str("error", record.Error)
	}
	if logger.withBody && record.RawBody != "" {
		body := record.RawBody
		if len(body) > maxLoggedBodyLength {
			body = body[:maxLoggedBodyLength] + "..."
		}
		event = event.Str("body", body)
	}
	event.Msg("observed exchange")
}
