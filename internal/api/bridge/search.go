package bridge

import (
	"github.com/skybi/soa-bridge/internal/api/schema"
	"github.com/skybi/soa-bridge/internal/jsonvalue"
	"github.com/skybi/soa-bridge/internal/soa"
	"net/http"
)

type endpointSearchRequestPayload struct {
	Provider    *string                    `json:"provider"`
	Criteria    map[string]string          `json:"criteria" required:"true" max_items:"32"`
	Filters     map[string]jsonvalue.Value `json:"filters"`
	StartIndex  *int                       `json:"start_index" min:"0"`
	MaxToLoad   *int                       `json:"max_to_load" min:"0" max:"1000"`
	MaxToReturn *int                       `json:"max_to_return" min:"0" max:"1000"`
	Attributes  []string                   `json:"attributes" max_items:"64"`
}

// EndpointSearch handles the 'POST /v1/search' endpoint
func (service *Service) EndpointSearch(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := schema.UnmarshalBody[endpointSearchRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	query := soa.SearchQuery{
		ProviderName: valueOr(payload.Provider, ""),
		Criteria:     payload.Criteria,
		Filters:      payload.Filters,
		StartIndex:   intOr(payload.StartIndex, 0),
		MaxToLoad:    intOr(payload.MaxToLoad, 50),
		MaxToReturn:  intOr(payload.MaxToReturn, 50),
		Attributes:   payload.Attributes,
	}
	result, err := service.Sessions.Client().Search(request.Context(), sessionOf(request), query)
	if err != nil {
		service.writeFailure(writer, err)
		return
	}

	service.writer.WriteJSON(writer, result)
}

func intOr(value *int, def int) int {
	if value == nil {
		return def
	}
	return *value
}
