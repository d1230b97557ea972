// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads an optional env file (ENV_FILE, default .env) and then
// the process environment. Variables already set in the environment win
// over the file. Supported variables:
//
//   - STORE_DRIVER: mongo or sqlite (default: mongo)
//   - MONGO_HOST: MongoDB host (default: 127.0.0.1)
//   - MONGO_PORT: MongoDB port (default: 27017)
//   - STORE_DATABASE: database name (default: guava)
//   - STORE_ENSURE_INDEXES: create unique indexes on startup (default: true)
//   - STORE_TIMEOUT: per-query timeout as Go duration (default: 5s)
//   - SQLITE_PATH: database file for the sqlite driver (default: ./catalog.db)
//   - ASSET_DIR: directory holding asset files named by hash (default: content)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
//   - LISTING_ALLOW_PARTIAL: return partial listings on store errors (default: false)
//   - STATS_INTERVAL: catalog gauge refresh interval (default: 5m)
//   - LOG_LEVEL, DEBUG, LOG_FORMAT: see package logging
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	store, err := database.Open(ctx, config)
//	startup.LogStoreInit(config.StoreDriver, time.Since(start))
//
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
package startup
