package bridge

import (
	"context"
	"errors"
	"github.com/skybi/soa-bridge/internal/api/schema"
	"github.com/skybi/soa-bridge/internal/failure"
	"github.com/skybi/soa-bridge/internal/session"
	"net/http"
)

type contextKey string

var contextValueSession = contextKey("session")

// MiddlewareRequireSession makes sure that a session with the remote service has been established.
// Additionally, it injects the session itself into the request context.
func (service *Service) MiddlewareRequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		ses, err := service.Sessions.Require(request.Context())
		if err != nil {
			service.writeFailure(writer, err)
			return
		}

		ctx := context.WithValue(request.Context(), contextValueSession, ses)
		next.ServeHTTP(writer, request.WithContext(ctx))
	}
}

func sessionOf(request *http.Request) *session.Session {
	ses, _ := request.Context().Value(contextValueSession).(*session.Session)
	return ses
}

var failureStatuses = map[failure.Kind]int{
	failure.KindInvalidEndpoint:       http.StatusInternalServerError,
	failure.KindNotAuthenticated:      http.StatusUnauthorized,
	failure.KindTransport:             http.StatusBadGateway,
	failure.KindHTTPStatus:            http.StatusBadGateway,
	failure.KindDecode:                http.StatusBadGateway,
	failure.KindServerReported:        http.StatusUnprocessableEntity,
	failure.KindSessionNotEstablished: http.StatusBadGateway,
}

// writeFailure maps a failed call against the remote service to an error response.
// Errors that are no failures of the remote service are treated as internal errors.
func (service *Service) writeFailure(writer http.ResponseWriter, err error) {
	var typed *failure.Error
	if !errors.As(err, &typed) {
		service.writer.WriteInternalError(writer, err)
		return
	}
	status, ok := failureStatuses[typed.Kind]
	if !ok {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteErrors(writer, status, schema.FromFailure(typed))
}
