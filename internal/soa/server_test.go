package soa

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/skybi/soa-bridge/internal/jsonvalue"
	"github.com/stretchr/testify/assert"
)

const basePath = "/tc/JsonRestServices"

// recordedRequest holds what the fake service received
type recordedRequest struct {
	Path     string
	Cookie   string
	Envelope jsonvalue.Value
}

type handlerFunc func(writer http.ResponseWriter, request *recordedRequest)

// fakeService emulates the remote service; handlers are registered per operation path
type fakeService struct {
	t        *testing.T
	server   *httptest.Server
	mtx      sync.Mutex
	handlers map[string]handlerFunc
	requests []*recordedRequest
}

func newFakeService(t *testing.T) *fakeService {
	service := &fakeService{
		t:        t,
		handlers: map[string]handlerFunc{},
	}
	service.server = httptest.NewServer(http.HandlerFunc(service.serve))
	t.Cleanup(service.server.Close)
	return service
}

func (service *fakeService) baseAddress() string {
	return service.server.URL + basePath
}

func (service *fakeService) handle(endpoint Endpoint, handler handlerFunc) {
	service.mtx.Lock()
	defer service.mtx.Unlock()
	service.handlers[basePath+"/"+endpoint.Path()] = handler
}

func (service *fakeService) handleJSON(endpoint Endpoint, status int, body string) {
	service.handle(endpoint, func(writer http.ResponseWriter, _ *recordedRequest) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = io.WriteString(writer, body)
	})
}

func (service *fakeService) received() []*recordedRequest {
	service.mtx.Lock()
	defer service.mtx.Unlock()
	return append([]*recordedRequest{}, service.requests...)
}

func (service *fakeService) serve(writer http.ResponseWriter, request *http.Request) {
	raw, err := io.ReadAll(request.Body)
	assert.NoError(service.t, err)

	record := &recordedRequest{Path: request.URL.Path}
	if cookie, err := request.Cookie(DefaultCookieName); err == nil {
		record.Cookie = cookie.Value
	}
	if doc, err := jsonvalue.Parse(raw); err == nil {
		record.Envelope = doc
	}

	service.mtx.Lock()
	service.requests = append(service.requests, record)
	handler, ok := service.handlers[request.URL.Path]
	service.mtx.Unlock()

	if request.Method != http.MethodPost || !strings.HasPrefix(request.Header.Get("Content-Type"), "application/json") {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	if !ok {
		writer.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(writer, "no such operation")
		return
	}
	handler(writer, record)
}

// loginWithCookie answers login requests with a success payload and the given session cookie
func loginWithCookie(token string) handlerFunc {
	return func(writer http.ResponseWriter, _ *recordedRequest) {
		if token != "" {
			http.SetCookie(writer, &http.Cookie{Name: DefaultCookieName, Value: token, Path: "/tc", HttpOnly: true})
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(writer, `{".QName": "http://teamcenter.com/Schemas/Core/2011-06/Session.LoginResponse", "serverInfo": {"Version": "V13000"}}`)
	}
}
