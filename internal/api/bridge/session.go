package bridge

import (
	"errors"
	"github.com/skybi/soa-bridge/internal/api/schema"
	"github.com/skybi/soa-bridge/internal/failure"
	"github.com/skybi/soa-bridge/internal/session"
	"github.com/skybi/soa-bridge/internal/soa"
	"net/http"
	"time"
)

type endpointCreateSessionRequestPayload struct {
	Username *string `json:"username" required:"true"`
	Password *string `json:"password" required:"true"`
	Group    *string `json:"group"`
	Role     *string `json:"role"`
	Locale   *string `json:"locale"`
}

type sessionView struct {
	Username      string           `json:"username"`
	Endpoint      string           `json:"endpoint"`
	EstablishedAt time.Time        `json:"established_at"`
	Reused        bool             `json:"reused"`
	Info          *soa.SessionInfo `json:"info,omitempty"`
}

func viewOf(ses *session.Session) *sessionView {
	return &sessionView{
		Username:      ses.Username,
		Endpoint:      ses.Endpoint,
		EstablishedAt: ses.EstablishedAt,
		Reused:        ses.Reused,
	}
}

// EndpointCreateSession handles the 'POST /v1/session' endpoint
func (service *Service) EndpointCreateSession(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := schema.UnmarshalBody[endpointCreateSessionRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	credentials := soa.Credentials{
		User:     *payload.Username,
		Password: *payload.Password,
		Group:    valueOr(payload.Group, service.Config.Group),
		Role:     valueOr(payload.Role, service.Config.Role),
		Locale:   valueOr(payload.Locale, service.Config.Locale),
	}
	ses, err := service.Sessions.Authenticate(request.Context(), credentials)
	if err != nil {
		var typed *failure.Error
		if errors.As(err, &typed) && typed.Kind == failure.KindServerReported {
			service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrLoginRejected(typed.Message))
			return
		}
		service.writeFailure(writer, err)
		return
	}

	service.writer.WriteJSONCode(writer, http.StatusCreated, viewOf(ses))
}

// EndpointGetSession handles the 'GET /v1/session' endpoint
func (service *Service) EndpointGetSession(writer http.ResponseWriter, request *http.Request) {
	ses := sessionOf(request)

	info, err := service.Sessions.Client().GetSessionInfo(request.Context(), ses)
	if err != nil {
		service.writeFailure(writer, err)
		return
	}

	view := viewOf(ses)
	view.Info = info
	service.writer.WriteJSON(writer, view)
}

// EndpointDeleteSession handles the 'DELETE /v1/session' endpoint
func (service *Service) EndpointDeleteSession(writer http.ResponseWriter, request *http.Request) {
	if err := service.Sessions.Forget(request.Context()); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteNoContent(writer)
}

func valueOr(value *string, def string) string {
	if value == nil {
		return def
	}
	return *value
}
