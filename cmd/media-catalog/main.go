package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-catalog/internal/audit"
	"media-catalog/internal/catalog"
	"media-catalog/internal/database"
	"media-catalog/internal/envelope"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/handlers"
	"media-catalog/internal/logging"
	"media-catalog/internal/memory"
	"media-catalog/internal/metrics"
	"media-catalog/internal/middleware"
	"media-catalog/internal/startup"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 30 * time.Second

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// MEMORY_LIMIT and MEMORY_RATIO may come from the env file
	memory.ConfigureFromEnv()

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion, config.StoreDriver)

	// Open the document store
	storeStart := time.Now()
	store, err := database.Open(context.Background(), config)
	if err != nil {
		startup.LogFatal("Failed to open %s store: %v", config.StoreDriver, err)
	}
	startup.LogStoreInit(config.StoreDriver, time.Since(storeStart))

	// Background catalog statistics
	collector := metrics.NewCollector(catalog.NewStatsSource(store), config.StatsInterval, config.StoreTimeout)
	collector.Start()
	startup.LogCollectorInit(config.StatsInterval)

	h := handlers.New(store, config)

	// Background asset audit
	var auditor *audit.Auditor
	if config.AuditInterval > 0 {
		locator := filesystem.NewLocator(config.AssetDir, filesystem.DefaultRetryConfig())
		auditor = audit.New(store, locator, config.AuditInterval, config.AuditTimeout)
		auditor.Start()
		h.SetAuditor(auditor)
	}
	startup.LogAuditorInit(config.AuditInterval, audit.DefaultConfig().NumWorkers)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           buildHandler(router, config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(srv, metricsSrv, collector, auditor, store, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	<-done
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Index).Methods("GET")

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Playlists
	r.HandleFunc("/playlists", h.ListPlaylists).Methods("GET")
	r.HandleFunc("/playlist", h.ListPlaylists).Methods("GET")
	r.HandleFunc("/playlist/{identifier}/content", h.GetPlaylistContent).Methods("GET")

	// Content
	r.HandleFunc("/content/{id}/hash", h.GetContentHash).Methods("GET")
	r.HandleFunc("/content/{id}/download", h.DownloadContent).Methods("GET")

	// Asset audit
	r.HandleFunc("/audit", h.GetAuditReport).Methods("GET")
	r.HandleFunc("/audit", h.TriggerAudit).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		envelope.Fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		envelope.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	return r
}

// buildHandler wraps the router with access logging and request ids. The
// request id is outermost so the access log line can carry it.
func buildHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	return middleware.RequestID(middleware.Logger(loggingConfig)(router))
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	sm := http.NewServeMux()
	sm.Handle("/metrics", h.MetricsHandler())
	sm.HandleFunc("/health", h.LivenessCheck)

	return &http.Server{
		Addr:              ":" + port,
		Handler:           sm,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, auditor *audit.Auditor, store catalog.Store, done chan<- struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	shutdown(srv, metricsSrv, collector, auditor, store)
	close(done)
}

func shutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, auditor *audit.Auditor, store catalog.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if auditor != nil {
		startup.LogShutdownStep("Stopping asset audit")
		auditor.Stop()
		startup.LogShutdownStepComplete("Asset audit stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Closing store")
	if err := store.Close(ctx); err != nil {
		logging.Warn("Store close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Store closed")
	}

	startup.LogShutdownComplete()
}
