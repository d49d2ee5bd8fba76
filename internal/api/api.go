package api

import (
	"errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/skybi/soa-bridge/internal/api/bridge"
	"github.com/skybi/soa-bridge/internal/config"
	"github.com/skybi/soa-bridge/internal/soa"
	"github.com/skybi/soa-bridge/internal/storage"
	"net/http"
)

// Service represents the local bridge API service
type Service struct {
	Config   *config.Config
	Sessions *soa.SessionManager
	Storage  storage.Driver
	Metrics  prometheus.Gatherer
	bridge   *bridge.Service
}

// Startup starts up the bridge API
func (service *Service) Startup(errs chan<- error) {
	bridgeService := &bridge.Service{
		Config:   service.Config,
		Sessions: service.Sessions,
		Storage:  service.Storage,
		Metrics:  service.Metrics,
	}
	service.bridge = bridgeService
	go func() {
		if err := bridgeService.Startup(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
}

// Shutdown shuts down the bridge API
func (service *Service) Shutdown() {
	if service.bridge != nil {
		service.bridge.Shutdown()
		service.bridge = nil
	}
}
