package audit

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/workers"
)

// AssetChecker reports whether the asset stored under a hash is present.
// *filesystem.Locator satisfies it.
type AssetChecker interface {
	Exists(hash string) bool
}

// Config configures the parallel asset check
type Config struct {
	// NumWorkers is the number of parallel stat workers
	NumWorkers int
	// ChannelBuffer is the size of the job channel buffer
	ChannelBuffer int
}

// DefaultConfig sizes the pool for stat calls, which are I/O bound. The
// AUDIT_WORKERS environment variable overrides the count.
func DefaultConfig() Config {
	return Config{
		NumWorkers:    workers.ForIO(16, "AUDIT_WORKERS"),
		ChannelBuffer: 256,
	}
}

// Finding is a content record whose asset file is missing.
type Finding struct {
	ContentID   string              `json:"content_id"`
	ContentType catalog.ContentType `json:"content_type"`
	Hash        string              `json:"hash"`
}

// Report is the outcome of one audit.
type Report struct {
	Checked   int           `json:"checked"`
	Missing   []Finding     `json:"missing"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Run checks the asset of every content record in store and returns the
// records whose asset is missing, ordered by content id. A cancelled ctx
// stops the check early and returns ctx's error.
func Run(ctx context.Context, store catalog.Store, checker AssetChecker, cfg Config) (Report, error) {
	report := Report{StartedAt: time.Now()}

	records, err := store.ListContent(ctx)
	if err != nil {
		return report, err
	}

	numWorkers := cfg.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}
	metrics.AuditWorkers.Set(float64(numWorkers))

	jobs := make(chan catalog.ContentRecord, cfg.ChannelBuffer)
	results := make(chan Finding, cfg.ChannelBuffer)

	var checked atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				checked.Add(1)
				if checker.Exists(rec.Hash) {
					continue
				}
				select {
				case results <- Finding{ContentID: rec.ContentID, ContentType: rec.ContentType, Hash: rec.Hash}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for f := range results {
			report.Missing = append(report.Missing, f)
		}
	}()

	enqueueErr := enqueue(ctx, jobs, records)
	close(jobs)
	wg.Wait()
	close(results)
	collectorWg.Wait()

	sort.Slice(report.Missing, func(i, j int) bool {
		return report.Missing[i].ContentID < report.Missing[j].ContentID
	})
	report.Checked = int(checked.Load())
	report.Duration = time.Since(report.StartedAt)

	logging.Debug("Asset check: %d records with %d workers in %v, %d missing",
		report.Checked, numWorkers, report.Duration, len(report.Missing))

	if enqueueErr != nil {
		return report, enqueueErr
	}
	return report, ctx.Err()
}

func enqueue(ctx context.Context, jobs chan<- catalog.ContentRecord, records []catalog.ContentRecord) error {
	for _, rec := range records {
		select {
		case jobs <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
