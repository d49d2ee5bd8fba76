package bridge

import (
	"github.com/skybi/soa-bridge/internal/api/schema"
	"github.com/skybi/soa-bridge/internal/exchange"
	"math"
	"net/http"
	"strings"
	"time"
)

// EndpointGetLastExchange handles the 'GET /v1/exchanges/last' endpoint
func (service *Service) EndpointGetLastExchange(writer http.ResponseWriter, _ *http.Request) {
	last := service.Sessions.Client().LastExchange()
	if last == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}
	service.writer.WriteJSON(writer, last)
}

// EndpointGetExchanges handles the 'GET /v1/exchanges?operation={string?}&failed={bool?:false}&before={unix_millis?}&after={unix_millis?}&limit={number?:10}' endpoint
func (service *Service) EndpointGetExchanges(writer http.ResponseWriter, request *http.Request) {
	var validationErrs []*schema.Error

	operation := strings.TrimSpace(request.URL.Query().Get("operation"))

	failedOnly, validationErr := schema.QueryBool(request, "failed", false)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	before, validationErr := schema.QueryNumber(request, "before", false, -1, 0, math.MaxInt64)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	after, validationErr := schema.QueryNumber(request, "after", false, -1, 0, math.MaxInt64)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	limit, validationErr := schema.QueryNumber(request, "limit", false, 10, 1, 100)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	filter := &exchange.Filter{FailedOnly: failedOnly}
	if operation != "" {
		filter.Operation = &operation
	}
	if before > 0 {
		startedBefore := time.UnixMilli(before)
		filter.StartedBefore = &startedBefore
	}
	if after > 0 {
		startedAfter := time.UnixMilli(after)
		filter.StartedAfter = &startedAfter
	}

	exchanges, n, err := service.Storage.Exchanges().GetByFilter(request.Context(), filter, uint64(limit))
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSON(writer, schema.BuildPaginatedResponse(uint64(limit), n, exchanges, func(ex *exchange.Exchange) int64 {
		return ex.StartedAt.UnixMilli()
	}))
}
