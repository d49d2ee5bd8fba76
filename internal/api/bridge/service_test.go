package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/skybi/soa-bridge/internal/api/schema"
	"github.com/skybi/soa-bridge/internal/config"
	"github.com/skybi/soa-bridge/internal/diagnostics"
	sessionstore "github.com/skybi/soa-bridge/internal/session/storage/inmem"
	"github.com/skybi/soa-bridge/internal/soa"
	"github.com/skybi/soa-bridge/internal/storage/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remoteBasePath = "/tc/JsonRestServices"

// remoteResponses maps operation paths to canned responses of the remote service
type remoteResponses map[string]func(writer http.ResponseWriter, request *http.Request)

func canned(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = io.WriteString(writer, body)
	}
}

type fixture struct {
	remote  *httptest.Server
	bridge  *httptest.Server
	storage *inmem.Driver
}

func newFixture(t *testing.T, responses remoteResponses) *fixture {
	remote := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		handler, ok := responses[strings.TrimPrefix(request.URL.Path, remoteBasePath+"/")]
		if !ok {
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		handler(writer, request)
	}))
	t.Cleanup(remote.Close)

	cfg := &config.Config{
		BaseAddress:       remote.URL + remoteBasePath,
		Locale:            "en_US",
		ReusePriorSession: true,
		FanOutParallelism: 2,
		AllowedOrigin:     []string{"*"},
	}
	client, err := soa.New(soa.Options{
		BaseAddress:              cfg.BaseAddress,
		DisablePriorSessionReuse: !cfg.ReusePriorSession,
		FanOutParallelism:        cfg.FanOutParallelism,
	})
	require.NoError(t, err)

	sessions, err := sessionstore.New()
	require.NoError(t, err)
	driver := inmem.New()
	require.NoError(t, driver.Initialize(context.Background()))

	registry := prometheus.NewRegistry()
	metrics, err := diagnostics.NewMetrics(registry)
	require.NoError(t, err)
	client.Subscribe(metrics)
	journal := diagnostics.NewJournal(driver.Exchanges(), diagnostics.JournalOptions{})
	journal.Start()
	client.Subscribe(journal)
	t.Cleanup(journal.Close)

	service := &Service{
		Config:   cfg,
		Sessions: soa.NewSessionManager(client, sessions),
		Storage:  driver,
		Metrics:  registry,
	}
	server := httptest.NewServer(service.Handler())
	t.Cleanup(server.Close)

	return &fixture{remote: remote, bridge: server, storage: driver}
}

func (fixture *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request, err := http.NewRequest(method, fixture.bridge.URL+path, reader)
	require.NoError(t, err)
	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response, raw
}

func loginSuccess(writer http.ResponseWriter, _ *http.Request) {
	http.SetCookie(writer, &http.Cookie{Name: soa.DefaultCookieName, Value: "T1", Path: "/tc"})
	writer.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(writer, `{".QName": "http://teamcenter.com/Schemas/Core/2011-06/Session.LoginResponse"}`)
}

func decodeErrors(t *testing.T, raw []byte) *schema.ErrorResponse {
	response := new(schema.ErrorResponse)
	require.NoError(t, json.Unmarshal(raw, response))
	return response
}

func TestSessionLifecycle(t *testing.T) {
	fixture := newFixture(t, remoteResponses{
		soa.EndpointLogin.Path(): loginSuccess,
		soa.EndpointSessionInfo.Path(): canned(http.StatusOK, `{
			".QName": "http://teamcenter.com/Schemas/Core/2007-01/Session.GetTCSessionInfoResponse",
			"serverVersion": "V13000.3.0",
			"user": {"uid": "U0", "type": "User"}
		}`),
	})

	response, raw := fixture.do(t, http.MethodGet, "/v1/session", "")
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "soa.notAuthenticated", decodeErrors(t, raw).Errors[0].Type)

	response, raw = fixture.do(t, http.MethodPost, "/v1/session", `{"username": "infodba", "password": "infodba"}`)
	require.Equal(t, http.StatusCreated, response.StatusCode, string(raw))
	assert.NotContains(t, string(raw), "T1")

	response, raw = fixture.do(t, http.MethodGet, "/v1/session", "")
	require.Equal(t, http.StatusOK, response.StatusCode, string(raw))
	var view map[string]any
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.Equal(t, "infodba", view["username"])
	assert.Equal(t, "V13000.3.0", view["info"].(map[string]any)["server_version"])

	response, _ = fixture.do(t, http.MethodDelete, "/v1/session", "")
	assert.Equal(t, http.StatusNoContent, response.StatusCode)
	response, _ = fixture.do(t, http.MethodGet, "/v1/session", "")
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func TestCreateSessionValidation(t *testing.T) {
	fixture := newFixture(t, remoteResponses{})

	response, raw := fixture.do(t, http.MethodPost, "/v1/session", `{"username": "infodba"}`)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	errs := decodeErrors(t, raw)
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, "validation.requestBody.parameter.missing", errs.Errors[0].Type)
	assert.Equal(t, "password", errs.Errors[0].Details["parameter"])
}

func TestCreateSessionRejected(t *testing.T) {
	fixture := newFixture(t, remoteResponses{
		soa.EndpointLogin.Path(): canned(http.StatusOK, `{".QName": "x.InvalidCredentialsException", "code": 515143, "message": "invalid password"}`),
	})

	response, raw := fixture.do(t, http.MethodPost, "/v1/session", `{"username": "infodba", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	errs := decodeErrors(t, raw)
	assert.Equal(t, "bridge.session.loginRejected", errs.Errors[0].Type)
	assert.Equal(t, "invalid password", errs.Errors[0].Details["reason"])
}

func TestObjectEndpoints(t *testing.T) {
	fixture := newFixture(t, remoteResponses{
		soa.EndpointLogin.Path(): loginSuccess,
		soa.EndpointGetProperties.Path(): canned(http.StatusOK, `{
			".QName": "x.ServiceData",
			"ServiceData": {"modelObjects": {"X1": {"uid": "X1", "props": {"object_name": {"uiValues": ["Bracket"]}}}}}
		}`),
	})
	response, raw := fixture.do(t, http.MethodPost, "/v1/session", `{"username": "infodba", "password": "infodba"}`)
	require.Equal(t, http.StatusCreated, response.StatusCode, string(raw))

	response, raw = fixture.do(t, http.MethodGet, "/v1/objects/X1/properties?attrs=object_name,object_desc", "")
	require.Equal(t, http.StatusOK, response.StatusCode, string(raw))
	assert.JSONEq(t, `{"uid": "X1", "properties": {"object_name": "Bracket", "object_desc": ""}}`, string(raw))

	response, raw = fixture.do(t, http.MethodGet, "/v1/objects/X1/properties", "")
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Equal(t, "validation.query.parameter.missing", decodeErrors(t, raw).Errors[0].Type)

	// Relation expansion is not served by the remote fixture
	response, raw = fixture.do(t, http.MethodGet, "/v1/objects/X1/children?relation=contents", "")
	assert.Equal(t, http.StatusBadGateway, response.StatusCode)
	errs := decodeErrors(t, raw)
	assert.Equal(t, "soa.httpStatus", errs.Errors[0].Type)
	assert.Equal(t, float64(http.StatusNotFound), errs.Errors[0].Details["status"])
}

func TestCreateItemNotCreated(t *testing.T) {
	fixture := newFixture(t, remoteResponses{
		soa.EndpointLogin.Path():       loginSuccess,
		soa.EndpointCreateItems.Path(): canned(http.StatusOK, `{".QName": "x.CreateItemsResponse", "output": []}`),
	})
	response, _ := fixture.do(t, http.MethodPost, "/v1/session", `{"username": "infodba", "password": "infodba"}`)
	require.Equal(t, http.StatusCreated, response.StatusCode)

	response, raw := fixture.do(t, http.MethodPost, "/v1/items", `{"name": "Bracket", "type": "Item"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, response.StatusCode)
	assert.Equal(t, "bridge.item.notCreated", decodeErrors(t, raw).Errors[0].Type)
}

func TestSearchEndpoint(t *testing.T) {
	fixture := newFixture(t, remoteResponses{
		soa.EndpointLogin.Path(): loginSuccess,
		soa.EndpointPerformSearch.Path(): canned(http.StatusOK, `{
			".QName": "x.PerformSearchResponse",
			"totalFound": 1,
			"searchResults": [{"uid": "U1", "objectID": "000123"}],
			"ServiceData": {"modelObjects": {"U1": {"uid": "U1", "type": "Item", "props": {"object_name": {"uiValues": ["one"]}}}}}
		}`),
	})
	response, _ := fixture.do(t, http.MethodPost, "/v1/session", `{"username": "infodba", "password": "infodba"}`)
	require.Equal(t, http.StatusCreated, response.StatusCode)

	response, raw := fixture.do(t, http.MethodPost, "/v1/search", `{"criteria": {"Name": "*"}, "max_to_return": 5000}`)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Equal(t, "validation.requestBody.parameter.number.outOfRange", decodeErrors(t, raw).Errors[0].Type)

	response, raw = fixture.do(t, http.MethodPost, "/v1/search", `{"criteria": {"Name": "*"}}`)
	require.Equal(t, http.StatusOK, response.StatusCode, string(raw))
	var result soa.SearchResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, 1, result.TotalFound)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "000123", result.Results[0].ID)
}

func TestExchangeEndpoints(t *testing.T) {
	fixture := newFixture(t, remoteResponses{
		soa.EndpointLogin.Path(): canned(http.StatusServiceUnavailable, "maintenance"),
	})

	response, _ := fixture.do(t, http.MethodGet, "/v1/exchanges/last", "")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	response, raw := fixture.do(t, http.MethodPost, "/v1/session", `{"username": "infodba", "password": "infodba"}`)
	assert.Equal(t, http.StatusBadGateway, response.StatusCode)
	assert.Equal(t, "soa.httpStatus", decodeErrors(t, raw).Errors[0].Type)

	response, raw = fixture.do(t, http.MethodGet, "/v1/exchanges/last", "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	var last map[string]any
	require.NoError(t, json.Unmarshal(raw, &last))
	assert.Equal(t, "maintenance", last["raw_body"])
	assert.Equal(t, float64(http.StatusServiceUnavailable), last["http_status"])

	assert.Eventually(t, func() bool {
		response, raw := fixture.do(t, http.MethodGet, "/v1/exchanges?failed=true&operation="+soa.EndpointLogin.Path(), "")
		if response.StatusCode != http.StatusOK {
			return false
		}
		var page schema.PaginatedResponse[map[string]any]
		return json.Unmarshal(raw, &page) == nil && page.Pagination.TotalCount == 1
	}, time.Second, 10*time.Millisecond)

	response, _ = fixture.do(t, http.MethodGet, "/v1/exchanges?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)

	response, raw = fixture.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(raw), `soa_bridge_exchanges_total{operation="Core-2011-06-Session/login",outcome="503"} 1`)
}

func TestNotFound(t *testing.T) {
	fixture := newFixture(t, remoteResponses{})

	response, raw := fixture.do(t, http.MethodGet, "/v1/nothing", "")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, schema.ErrNotFound.Type, decodeErrors(t, raw).Errors[0].Type)

	response, _ = fixture.do(t, http.MethodPut, "/v1/session", "")
	assert.Equal(t, http.StatusMethodNotAllowed, response.StatusCode)
}
