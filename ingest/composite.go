package ingest

import (
	"context"

	"clipbot/types"
)

// RSSBackedSource lists candidates from the channel RSS feeds but still
// fetches statistics from the Data API, which the feeds do not carry.
// Without an API source every candidate gets zero statistics, leaving only
// keyword and age signals to score on.
type RSSBackedSource struct {
	rss *RSSSource
	api *Source
}

func NewRSSBackedSource(rss *RSSSource, api *Source) *RSSBackedSource {
	return &RSSBackedSource{rss: rss, api: api}
}

func (s *RSSBackedSource) ListCandidates(ctx context.Context) ([]types.Candidate, error) {
	return s.rss.ListCandidates(ctx)
}

func (s *RSSBackedSource) FetchStatistics(ctx context.Context, ids []string) (map[string]types.Statistics, error) {
	if s.api == nil {
		stats := make(map[string]types.Statistics, len(ids))
		for _, id := range ids {
			stats[id] = types.Statistics{}
		}
		return stats, nil
	}
	return s.api.FetchStatistics(ctx, ids)
}
