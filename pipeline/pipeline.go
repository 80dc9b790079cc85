package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"clipbot/config"
	"clipbot/ingest"
	"clipbot/render"
	"clipbot/scoring"
	"clipbot/storage"
	"clipbot/transcript"
	"clipbot/types"
)

// CandidateSource discovers recent uploads and their statistics.
type CandidateSource interface {
	ListCandidates(ctx context.Context) ([]types.Candidate, error)
	FetchStatistics(ctx context.Context, ids []string) (map[string]types.Statistics, error)
}

// TranscriptFetcher returns the transcript text for a video, or
// transcript.ErrNoTranscript when none exists.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// CommentaryGenerator turns a transcript into title, description and script.
type CommentaryGenerator interface {
	Generate(ctx context.Context, transcript string) (types.Commentary, error)
}

// Synthesizer converts script text to spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// StoryboardGenerator produces the slideshow's background images.
type StoryboardGenerator interface {
	GenerateStoryboard(ctx context.Context) ([][]byte, error)
}

// Uploader publishes a rendered video and returns its platform ID.
type Uploader interface {
	Upload(ctx context.Context, videoPath string, commentary types.Commentary) (string, error)
}

// Archiver copies run artifacts to durable storage.
type Archiver interface {
	Store(ctx context.Context, artifact types.Artifact) error
}

// Pipeline wires discovery, scoring and production into a single pass.
// Uploader and Archiver are optional; a nil value disables that stage.
type Pipeline struct {
	cfg         *config.Config
	source      CandidateSource
	scorer      *scoring.Scorer
	seen        storage.SeenStore
	transcripts TranscriptFetcher
	commentary  CommentaryGenerator
	tts         Synthesizer
	images      StoryboardGenerator
	renderer    render.Renderer
	uploader    Uploader
	archive     Archiver
	metadata    func(ctx context.Context, videoURL string) types.Candidate
}

// Deps collects the pipeline's collaborators.
type Deps struct {
	Source      CandidateSource
	Scorer      *scoring.Scorer
	Seen        storage.SeenStore
	Transcripts TranscriptFetcher
	Commentary  CommentaryGenerator
	TTS         Synthesizer
	Images      StoryboardGenerator
	Renderer    render.Renderer
	Uploader    Uploader
	Archive     Archiver

	// Metadata resolves display metadata for on-demand URLs. The oEmbed
	// lookup is used when nil.
	Metadata func(ctx context.Context, videoURL string) types.Candidate
}

func New(cfg *config.Config, deps Deps) *Pipeline {
	metadata := deps.Metadata
	if metadata == nil {
		metadata = ingest.LookupMetadata
	}
	return &Pipeline{
		cfg:         cfg,
		source:      deps.Source,
		scorer:      deps.Scorer,
		seen:        deps.Seen,
		transcripts: deps.Transcripts,
		commentary:  deps.Commentary,
		tts:         deps.TTS,
		images:      deps.Images,
		renderer:    deps.Renderer,
		uploader:    deps.Uploader,
		archive:     deps.Archive,
		metadata:    metadata,
	}
}

// Run executes one full pass: discover candidates, score them, and produce
// a video for each selected one. A failing candidate never aborts the pass;
// its error is logged and the loop moves on.
func (p *Pipeline) Run(ctx context.Context) (types.RunSummary, error) {
	summary := types.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	log.Printf("[pipeline] Starting run %s", summary.RunID)

	candidates, err := p.source.ListCandidates(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list candidates: %w", err)
	}
	summary.Discovered = len(candidates)
	log.Printf("[pipeline] Discovered %d candidates", len(candidates))

	fresh := p.filterSeen(ctx, candidates)
	if len(fresh) == 0 {
		log.Printf("[pipeline] Nothing new to score")
		summary.FinishedAt = time.Now()
		return summary, nil
	}

	ids := make([]string, len(fresh))
	for i, c := range fresh {
		ids[i] = c.ID
	}
	stats, err := p.source.FetchStatistics(ctx, ids)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch statistics: %w", err)
	}

	scored := p.scorer.ScoreAll(fresh, stats, time.Now())
	selected := scoring.Select(scored, p.cfg.Selection.Threshold, p.cfg.Selection.MaxResults)
	summary.Selected = len(selected)
	log.Printf("[pipeline] Selected %d of %d scored candidates (threshold %.1f)",
		len(selected), len(scored), p.cfg.Selection.Threshold)

	for i, sc := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		log.Printf("[pipeline] [%d/%d] Processing %q (score %.2f)", i+1, len(selected), sc.Candidate.Title, sc.Score)

		artifact, err := p.processCandidate(ctx, summary.RunID, sc.Candidate)
		if markErr := p.seen.Add(ctx, sc.Candidate.ID); markErr != nil {
			log.Printf("[pipeline] Failed to mark %s as seen: %v", sc.Candidate.ID, markErr)
		}
		if err != nil {
			log.Printf("[pipeline] [%d/%d] Failed: %v", i+1, len(selected), err)
			continue
		}
		if artifact == nil {
			summary.Skipped++
			continue
		}
		summary.Processed++
		summary.Artifacts = append(summary.Artifacts, artifact)
	}

	summary.FinishedAt = time.Now()
	log.Printf("[pipeline] Run %s complete: %d processed, %d skipped",
		summary.RunID, summary.Processed, summary.Skipped)
	return summary, nil
}

// ProcessURL produces a video for one explicitly requested URL, bypassing
// scoring and selection entirely.
func (p *Pipeline) ProcessURL(ctx context.Context, rawURL string) (*types.Artifact, error) {
	videoID := types.ExtractVideoID(rawURL)
	if videoID == "" {
		return nil, fmt.Errorf("not a recognizable YouTube URL: %s", rawURL)
	}

	candidate := p.metadata(ctx, rawURL)
	runID := uuid.New().String()
	log.Printf("[pipeline] Processing requested video %s (run %s)", videoID, runID)

	artifact, err := p.processCandidate(ctx, runID, candidate)
	if markErr := p.seen.Add(ctx, videoID); markErr != nil {
		log.Printf("[pipeline] Failed to mark %s as seen: %v", videoID, markErr)
	}
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, transcript.ErrNoTranscript
	}
	return artifact, nil
}

// filterSeen drops candidates the store already knows. A store read error
// is logged and the candidate kept; double work beats silently dropping it.
func (p *Pipeline) filterSeen(ctx context.Context, candidates []types.Candidate) []types.Candidate {
	fresh := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		seen, err := p.seen.Contains(ctx, c.ID)
		if err != nil {
			log.Printf("[pipeline] Seen check failed for %s: %v", c.ID, err)
		}
		if !seen {
			fresh = append(fresh, c)
		}
	}
	return fresh
}

// processCandidate runs the production stages for one video. A nil artifact
// with a nil error means the candidate was skipped for a business reason,
// currently only a missing transcript.
func (p *Pipeline) processCandidate(ctx context.Context, runID string, c types.Candidate) (*types.Artifact, error) {
	text, err := p.transcripts.Fetch(ctx, c.ID)
	if errors.Is(err, transcript.ErrNoTranscript) {
		log.Printf("[pipeline] No transcript for %s, skipping", c.ID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("transcript fetch for %s: %w", c.ID, err)
	}

	commentary, err := p.commentary.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("commentary for %s: %w", c.ID, err)
	}

	scratch := filepath.Join(p.cfg.Storage.OutputDir, runID, c.ID)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	audio, err := p.tts.Synthesize(ctx, commentary.Script)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis for %s: %w", c.ID, err)
	}
	audioPath := filepath.Join(scratch, "narration.mp3")
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write audio: %w", err)
	}

	images, err := p.images.GenerateStoryboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("storyboard for %s: %w", c.ID, err)
	}
	imagePaths := make([]string, 0, len(images))
	for i, img := range images {
		path := filepath.Join(scratch, fmt.Sprintf("slide_%02d.png", i+1))
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write image: %w", err)
		}
		imagePaths = append(imagePaths, path)
	}

	result, err := p.renderer.Render(ctx, render.Job{
		AudioPath:  audioPath,
		ImagePaths: imagePaths,
		Title:      commentary.Title,
		OutputPath: filepath.Join(scratch, "final.mp4"),
	})
	if err != nil {
		return nil, fmt.Errorf("render for %s: %w", c.ID, err)
	}

	artifact := &types.Artifact{
		RunID:      runID,
		VideoID:    c.ID,
		Transcript: text,
		Commentary: commentary,
		AudioPath:  audioPath,
		ImagePaths: imagePaths,
		VideoPath:  result.Path,
		VideoURL:   result.URL,
	}

	if p.uploader != nil {
		uploadID, err := p.uploader.Upload(ctx, result.Path, commentary)
		if err != nil {
			return nil, fmt.Errorf("upload for %s: %w", c.ID, err)
		}
		artifact.UploadID = uploadID
	}

	if p.archive != nil {
		if err := p.archive.Store(ctx, *artifact); err != nil {
			log.Printf("[pipeline] Archive failed for %s: %v", c.ID, err)
		}
	}

	return artifact, nil
}
