package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// ErrNoReport is returned by LastReport before the first audit finishes.
var ErrNoReport = errors.New("no audit has completed")

// Auditor runs Run on an interval and keeps the last report.
type Auditor struct {
	store    catalog.Store
	checker  AssetChecker
	config   Config
	interval time.Duration
	timeout  time.Duration

	stopChan    chan struct{}
	done        chan struct{}
	triggerChan chan struct{}

	mu       sync.RWMutex
	last     Report
	lastErr  error
	hasRun   bool
	auditing bool
}

// New creates an Auditor. timeout bounds a single audit.
func New(store catalog.Store, checker AssetChecker, interval, timeout time.Duration) *Auditor {
	return &Auditor{
		store:       store,
		checker:     checker,
		config:      DefaultConfig(),
		interval:    interval,
		timeout:     timeout,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
		triggerChan: make(chan struct{}, 1),
	}
}

// SetConfig replaces the worker configuration. Call before Start.
func (a *Auditor) SetConfig(config Config) {
	a.config = config
}

// Start runs a first audit in the background and then one per interval.
func (a *Auditor) Start() {
	go a.loop()
}

// Stop ends the loop and waits for an audit in progress to finish.
func (a *Auditor) Stop() {
	close(a.stopChan)
	<-a.done
}

// TriggerAudit requests an audit outside the schedule. It never blocks;
// a request made while one is pending is dropped.
func (a *Auditor) TriggerAudit() {
	select {
	case a.triggerChan <- struct{}{}:
	default:
	}
}

// LastReport returns the most recent report and the error it ended with.
func (a *Auditor) LastReport() (Report, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.hasRun {
		return Report{}, ErrNoReport
	}
	return a.last, a.lastErr
}

// IsAuditing reports whether an audit is running.
func (a *Auditor) IsAuditing() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.auditing
}

func (a *Auditor) loop() {
	defer close(a.done)

	a.audit()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.audit()
		case <-a.triggerChan:
			a.audit()
		case <-a.stopChan:
			return
		}
	}
}

func (a *Auditor) audit() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	// stop cancels an audit in progress
	go func() {
		select {
		case <-a.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	a.mu.Lock()
	a.auditing = true
	a.mu.Unlock()

	report, err := Run(ctx, a.store, a.checker, a.config)

	a.mu.Lock()
	a.auditing = false
	a.last, a.lastErr, a.hasRun = report, err, true
	a.mu.Unlock()

	metrics.AuditDuration.Observe(report.Duration.Seconds())
	if err != nil {
		metrics.AuditRunsTotal.WithLabelValues("error").Inc()
		logging.Warn("Asset audit failed after %d records: %v", report.Checked, err)
		return
	}

	metrics.AuditRunsTotal.WithLabelValues("success").Inc()
	metrics.AuditRecordsChecked.Set(float64(report.Checked))
	metrics.AuditAssetsMissing.Set(float64(len(report.Missing)))
	metrics.AuditLastSuccessTimestamp.Set(float64(time.Now().Unix()))

	if len(report.Missing) > 0 {
		logging.Warn("Asset audit: %d of %d content records have no asset file", len(report.Missing), report.Checked)
		for _, f := range report.Missing {
			logging.Debug("  missing asset %s for content %s", f.Hash, f.ContentID)
		}
		return
	}
	logging.Info("Asset audit: all %d content records have their asset file (%v)", report.Checked, report.Duration.Round(time.Millisecond))
}
