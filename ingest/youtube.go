package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"clipbot/config"
	"clipbot/types"
)

// Source discovers candidate videos and fetches their statistics from the
// YouTube Data API.
type Source struct {
	service       *youtube.Service
	channelIDs    []string
	maxPerChannel int64
}

// NewSource builds an API-key authenticated source
func NewSource(ctx context.Context, cfg config.YouTubeConfig) (*Source, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Source{
		service:       service,
		channelIDs:    cfg.ChannelIDs,
		maxPerChannel: cfg.MaxPerChannel,
	}, nil
}

// ListCandidates returns the newest uploads per configured channel. A single
// failing channel is logged and skipped; the poll still returns the rest.
func (s *Source) ListCandidates(ctx context.Context) ([]types.Candidate, error) {
	var candidates []types.Candidate

	for _, channelID := range s.channelIDs {
		items, err := s.listChannelUploads(ctx, channelID)
		if err != nil {
			log.Printf("[ingest] channel %s: %v (skipping)", channelID, err)
			continue
		}
		candidates = append(candidates, items...)
	}

	return candidates, nil
}

func (s *Source) listChannelUploads(ctx context.Context, channelID string) ([]types.Candidate, error) {
	chResp, err := s.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("resolve uploads playlist: %w", err)
	}
	if len(chResp.Items) == 0 {
		return nil, fmt.Errorf("channel not found")
	}

	playlistID := chResp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	plResp, err := s.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).MaxResults(s.maxPerChannel).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	now := time.Now()
	candidates := make([]types.Candidate, 0, len(plResp.Items))
	for _, item := range plResp.Items {
		videoID := item.ContentDetails.VideoId
		if videoID == "" {
			continue
		}

		var publishedAt time.Time
		if t, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt); err == nil {
			publishedAt = t
		}

		candidates = append(candidates, types.Candidate{
			ID:           videoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelID:    channelID,
			ChannelTitle: item.Snippet.ChannelTitle,
			URL:          types.WatchURL(videoID),
			PublishedAt:  publishedAt,
			DiscoveredAt: now,
		})
	}

	return candidates, nil
}

// FetchStatistics resolves view/like/comment counts for the given IDs in
// batches of at most StatsBatchSize per call. IDs absent from the response
// are simply absent from the returned map.
func (s *Source) FetchStatistics(ctx context.Context, ids []string) (map[string]types.Statistics, error) {
	stats := make(map[string]types.Statistics, len(ids))

	for _, batch := range batchIDs(ids, config.StatsBatchSize) {
		resp, err := s.service.Videos.List([]string{"statistics"}).
			Id(batch...).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("fetch statistics batch: %w", err)
		}

		for _, video := range resp.Items {
			if video.Statistics == nil {
				continue
			}
			stats[video.Id] = types.Statistics{
				Views:    video.Statistics.ViewCount,
				Likes:    video.Statistics.LikeCount,
				Comments: video.Statistics.CommentCount,
			}
		}
	}

	return stats, nil
}

// batchIDs partitions ids into slices of at most size elements. Every ID
// appears in exactly one batch and no batch exceeds the API limit.
func batchIDs(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}

	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}
