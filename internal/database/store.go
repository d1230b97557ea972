package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/metrics"
	"media-catalog/internal/startup"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Second

// Supported values of STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown store driver")

// Open connects to the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *startup.Config) (catalog.Store, error) {
	switch cfg.StoreDriver {
	case DriverMongo, "":
		return NewMongo(ctx, MongoOptions{
			URI:           cfg.ConnectionString(),
			Database:      cfg.StoreDatabase,
			Timeout:       cfg.StoreTimeout,
			EnsureIndexes: cfg.EnsureIndexes,
		})
	case DriverSQLite:
		return NewSQLite(ctx, cfg.SQLitePath, cfg.StoreTimeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StoreDriver)
	}
}

// recordQuery records store query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrNotFound):
		status = "not_found"
	default:
		status = "error"
	}
	metrics.StoreQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.StoreQueryDuration.WithLabelValues(operation).Observe(duration)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
