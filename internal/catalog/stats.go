package catalog

import (
	"context"
	"strings"

	"media-catalog/internal/metrics"
)

// StatsSource reports catalog size to the metrics collector.
type StatsSource struct {
	store Store
}

// NewStatsSource creates a StatsSource reading from store.
func NewStatsSource(store Store) *StatsSource {
	return &StatsSource{store: store}
}

// GetStats implements metrics.StatsProvider.
func (s *StatsSource) GetStats(ctx context.Context) (metrics.Stats, error) {
	var stats metrics.Stats

	if err := s.store.Ping(ctx); err != nil {
		return stats, err
	}
	stats.StoreUp = true

	playlists, err := s.store.ListPlaylists(ctx)
	if err != nil {
		return stats, err
	}
	stats.Playlists = len(playlists)

	records, err := s.store.ListContent(ctx)
	if err != nil {
		return stats, err
	}
	stats.ContentByType = make(map[string]int, 3)
	for _, rec := range records {
		stats.ContentByType[strings.ToLower(rec.ContentType.String())]++
	}

	return stats, nil
}
