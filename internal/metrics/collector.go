package metrics

import (
	"context"
	"time"

	"media-catalog/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats(ctx context.Context) (Stats, error)
}

// Stats holds the current catalog size
type Stats struct {
	Playlists     int
	ContentByType map[string]int // keyed by "none", "sound", "video"
	StoreUp       bool
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	timeout       time.Duration
	stopChan      chan struct{}
	done          chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval, timeout time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		timeout:       timeout,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection and waits for the loop to exit
func (c *Collector) Stop() {
	close(c.stopChan)
	<-c.done
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.statsProvider.GetStats(ctx)
	if stats.StoreUp {
		StoreUp.Set(1)
	} else {
		StoreUp.Set(0)
	}
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	CatalogPlaylists.Set(float64(stats.Playlists))
	for _, t := range []string{"none", "sound", "video"} {
		CatalogContent.WithLabelValues(t).Set(float64(stats.ContentByType[t]))
	}

	logging.Debug("Metrics collected: playlists=%d, content=%v", stats.Playlists, stats.ContentByType)
}
