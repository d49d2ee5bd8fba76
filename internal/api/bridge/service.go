package bridge

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/api/schema"
	"github.com/skybi/soa-bridge/internal/config"
	"github.com/skybi/soa-bridge/internal/function"
	"github.com/skybi/soa-bridge/internal/soa"
	"github.com/skybi/soa-bridge/internal/storage"
	"net/http"
)

// Service represents the local bridge API service
type Service struct {
	server *http.Server

	Config   *config.Config
	Sessions *soa.SessionManager
	Storage  storage.Driver
	Metrics  prometheus.Gatherer

	writer *schema.Writer
}

// Startup starts up the bridge API
func (service *Service) Startup() error {
	server := &http.Server{
		Addr:    service.Config.ListenAddress,
		Handler: service.Handler(),
	}
	service.server = server
	return server.ListenAndServe()
}

// Handler builds the HTTP router of the bridge API
func (service *Service) Handler() http.Handler {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the bridge API experienced an unexpected error")
		},
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.RedirectSlashes)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: service.Config.AllowedOrigin,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	service.registerEndpoints(router)
	return router
}

// Shutdown shuts down the bridge API
func (service *Service) Shutdown() {
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}

func (service *Service) registerEndpoints(router chi.Router) {
	// Register the session endpoints
	router.Post("/v1/session", service.EndpointCreateSession)
	router.Get("/v1/session", function.Nest[http.HandlerFunc](
		service.EndpointGetSession,
		service.MiddlewareRequireSession,
	))
	router.Delete("/v1/session", service.EndpointDeleteSession)

	// Register the object endpoints
	router.Get("/v1/objects/{uid}/properties", function.Nest[http.HandlerFunc](
		service.EndpointGetProperties,
		service.MiddlewareRequireSession,
	))
	router.Get("/v1/objects/{uid}/children", function.Nest[http.HandlerFunc](
		service.EndpointGetChildren,
		service.MiddlewareRequireSession,
	))
	router.Post("/v1/items", function.Nest[http.HandlerFunc](
		service.EndpointCreateItem,
		service.MiddlewareRequireSession,
	))
	router.Post("/v1/search", function.Nest[http.HandlerFunc](
		service.EndpointSearch,
		service.MiddlewareRequireSession,
	))

	// Register the diagnostics endpoints
	router.Get("/v1/exchanges/last", service.EndpointGetLastExchange)
	router.Get("/v1/exchanges", service.EndpointGetExchanges)
	if service.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(service.Metrics, promhttp.HandlerOpts{}))
	}
}
