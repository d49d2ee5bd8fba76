package main

import (
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/api"
	"github.com/skybi/soa-bridge/internal/config"
	"github.com/skybi/soa-bridge/internal/diagnostics"
	"github.com/skybi/soa-bridge/internal/envelope"
	sessionstore "github.com/skybi/soa-bridge/internal/session/storage/inmem"
	"github.com/skybi/soa-bridge/internal/soa"
	"github.com/skybi/soa-bridge/internal/storage"
	"github.com/skybi/soa-bridge/internal/storage/inmem"
	"github.com/skybi/soa-bridge/internal/storage/postgres"
	"net/http"
	"os"
	"os/signal"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("base_address", cfg.BaseAddress).Str("listen_address", cfg.ListenAddress).Msg("")

	// Initialize the storage driver; the exchange journal is kept in memory if no database is configured
	var driver storage.Driver
	if cfg.PostgresDSN != "" {
		log.Info().Msg("initializing database connection...")
		driver = postgres.New(cfg.PostgresDSN)
	} else {
		log.Warn().Msg("no database configured; the exchange journal is kept in memory")
		driver = inmem.New()
	}
	if err := driver.Initialize(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("could not initialize the storage driver")
	}
	defer driver.Close()

	// Create the client of the remote service
	client, err := soa.New(soa.Options{
		BaseAddress:              cfg.BaseAddress,
		CookieName:               cfg.SessionCookie,
		LoginMarker:              cfg.LoginMarker,
		DisablePriorSessionReuse: !cfg.ReusePriorSession,
		FanOutParallelism:        cfg.FanOutParallelism,
		State:                    &envelope.StateOptions{Locale: cfg.Locale},
		HTTPClient:               &http.Client{Timeout: cfg.HTTPTimeout},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("could not create the client of the remote service")
	}

	// Register the exchange subscribers
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := diagnostics.NewMetrics(registry)
	if err != nil {
		log.Fatal().Err(err).Msg("could not register the exchange metrics")
	}
	client.Subscribe(metrics)
	client.Subscribe(diagnostics.NewLogger(log.Logger, cfg.LogBodies))
	journal := diagnostics.NewJournal(driver.Exchanges(), diagnostics.JournalOptions{
		Retention:     cfg.JournalRetention,
		PruneInterval: cfg.JournalPruneInterval,
	})
	journal.Start()
	defer journal.Close()
	client.Subscribe(journal)

	// Create the session manager and establish the initial session if credentials are configured
	sessionStorage, err := sessionstore.New()
	if err != nil {
		log.Fatal().Err(err).Msg("could not create the session storage")
	}
	sessions := soa.NewSessionManager(client, sessionStorage)
	if cfg.Username != "" {
		_, err := sessions.Authenticate(context.Background(), soa.Credentials{
			User:     cfg.Username,
			Password: cfg.Password,
			Group:    cfg.Group,
			Role:     cfg.Role,
			Locale:   cfg.Locale,
		})
		if err != nil {
			log.Error().Err(err).Msg("could not establish the initial session")
		}
	}

	// Start up the bridge API
	log.Info().Str("address", cfg.ListenAddress).Msg("starting up the bridge API...")
	apis := &api.Service{
		Config:   cfg,
		Sessions: sessions,
		Storage:  driver,
		Metrics:  registry,
	}
	apiErrs := make(chan error, 1)
	apis.Startup(apiErrs)
	go func() {
		err := <-apiErrs
		log.Fatal().Err(err).Msg("the API service raised an unexpected error")
	}()
	defer func() {
		log.Info().Msg("shutting down the bridge API...")
		apis.Shutdown()
	}()

	log.Info().Str("base_address", client.BaseAddress()).Msg("done!")
	defer log.Info().Msg("shutting down...")

	// Wait for the application to be terminated
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)
	<-shutdown
}
