package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"clipbot/types"
)

// RSSSource lists channel uploads through the public channel feeds instead
// of the Data API. It spends no API quota, which matters because statistics
// fetching already consumes it; the trade-off is feed metadata only.
type RSSSource struct {
	parser        *gofeed.Parser
	channelIDs    []string
	maxPerChannel int
}

// NewRSSSource builds a feed-backed candidate source
func NewRSSSource(channelIDs []string, maxPerChannel int) *RSSSource {
	return &RSSSource{
		parser:        gofeed.NewParser(),
		channelIDs:    channelIDs,
		maxPerChannel: maxPerChannel,
	}
}

func channelFeedURL(channelID string) string {
	return "https://www.youtube.com/feeds/videos.xml?channel_id=" + channelID
}

// ListCandidates fetches and parses each channel feed. A failing feed is
// logged and skipped.
func (s *RSSSource) ListCandidates(ctx context.Context) ([]types.Candidate, error) {
	var candidates []types.Candidate

	for _, channelID := range s.channelIDs {
		items, err := s.listFeed(ctx, channelID)
		if err != nil {
			log.Printf("[ingest] feed %s: %v (skipping)", channelID, err)
			continue
		}
		candidates = append(candidates, items...)
	}

	return candidates, nil
}

func (s *RSSSource) listFeed(ctx context.Context, channelID string) ([]types.Candidate, error) {
	feed, err := s.parser.ParseURLWithContext(channelFeedURL(channelID), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	count := min(len(feed.Items), s.maxPerChannel)
	now := time.Now()
	candidates := make([]types.Candidate, 0, count)

	for i := 0; i < count; i++ {
		item := feed.Items[i]

		videoID := types.ExtractVideoID(item.Link)
		if videoID == "" {
			continue
		}

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		candidates = append(candidates, types.Candidate{
			ID:           videoID,
			Title:        item.Title,
			Description:  item.Description,
			ChannelID:    channelID,
			ChannelTitle: feed.Title,
			URL:          item.Link,
			PublishedAt:  publishedAt,
			DiscoveredAt: now,
		})
	}

	return candidates, nil
}
