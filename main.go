package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"clipbot/api"
	"clipbot/bot"
	"clipbot/commentary"
	"clipbot/config"
	"clipbot/imagegen"
	"clipbot/ingest"
	"clipbot/pipeline"
	"clipbot/queue"
	"clipbot/render"
	"clipbot/scheduler"
	"clipbot/scoring"
	"clipbot/storage"
	"clipbot/transcript"
	"clipbot/tts"
	"clipbot/upload"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	mode := flag.String("mode", string(config.ModeLoop), "run mode: once, loop, bot, serve, consume")
	flag.Parse()

	cfg, err := config.Load(config.Mode(*mode))
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, source, err := buildPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}

	switch cfg.Mode {
	case config.ModeOnce:
		summary, err := p.Run(ctx)
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}
		log.Printf("Run %s finished: %d discovered, %d selected, %d produced",
			summary.RunID, summary.Discovered, summary.Selected, summary.Processed)

	case config.ModeLoop:
		sched := scheduler.New(cfg.Scheduler, scheduler.RunnerFunc(func(ctx context.Context) error {
			_, err := p.Run(ctx)
			return err
		}))
		sched.Loop(ctx)

	case config.ModeBot:
		b := bot.New(cfg.Bot, p)
		b.Poll(ctx)

	case config.ModeServe:
		server := api.NewServer(ctx, p, source, scoring.NewScorer(cfg.Scoring), cfg.Selection.Threshold)
		log.Printf("Starting API server on %s", cfg.HTTPAddr)
		if err := http.ListenAndServe(cfg.HTTPAddr, server.Router()); err != nil {
			log.Fatalf("server error: %v", err)
		}

	case config.ModeConsume:
		consumer, err := queue.NewConsumer(cfg.Kafka, p)
		if err != nil {
			log.Fatalf("failed to create consumer: %v", err)
		}
		if err := consumer.Start(ctx); err != nil {
			log.Fatalf("failed to start consumer: %v", err)
		}
		<-ctx.Done()
		if err := consumer.Close(); err != nil {
			log.Printf("consumer close error: %v", err)
		}

	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

// buildSource picks between Data API discovery and the RSS feed fallback.
func buildSource(ctx context.Context, cfg *config.Config) (pipeline.CandidateSource, error) {
	if cfg.YouTube.RSSFallback {
		rss := ingest.NewRSSSource(cfg.YouTube.ChannelIDs, int(cfg.YouTube.MaxPerChannel))
		var apiSource *ingest.Source
		if cfg.YouTube.APIKey != "" {
			s, err := ingest.NewSource(ctx, cfg.YouTube)
			if err != nil {
				return nil, err
			}
			apiSource = s
		}
		return ingest.NewRSSBackedSource(rss, apiSource), nil
	}
	return ingest.NewSource(ctx, cfg.YouTube)
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, pipeline.CandidateSource, error) {
	deps := pipeline.Deps{
		Scorer:      scoring.NewScorer(cfg.Scoring),
		Transcripts: transcript.NewClient(cfg.Transcript),
		Commentary:  commentary.NewGenerator(cfg.Commentary),
		TTS:         tts.NewClient(cfg.TTS),
		Images:      imagegen.NewGenerator(cfg.Images),
	}

	// bot and consume modes never discover candidates themselves
	if cfg.Mode != config.ModeBot && cfg.Mode != config.ModeConsume {
		source, err := buildSource(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		deps.Source = source
	}

	if cfg.Storage.RedisAddr != "" {
		seen, err := storage.NewRedisSeenStore(ctx, cfg.Storage.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		deps.Seen = seen
	} else {
		seen, err := storage.NewFileSeenStore(cfg.Storage.SeenPath)
		if err != nil {
			return nil, nil, err
		}
		deps.Seen = seen
	}

	if cfg.Render.ShotstackAPIKey != "" {
		deps.Renderer = render.NewShotstack(cfg.Render)
	} else {
		deps.Renderer = render.NewFFmpeg()
	}

	if cfg.Upload.Enabled {
		uploader, err := upload.NewUploader(ctx, cfg.Upload)
		if err != nil {
			return nil, nil, err
		}
		deps.Uploader = uploader
		log.Printf("Uploads enabled (privacy: %s)", cfg.Upload.PrivacyStatus)
	} else {
		log.Printf("Uploads disabled; rendered videos stay local")
	}

	if cfg.Storage.S3Bucket != "" {
		archive, err := storage.NewArchive(ctx, cfg.Storage.S3Bucket, cfg.Storage.S3Region, cfg.Storage.S3Prefix)
		if err != nil {
			return nil, nil, err
		}
		deps.Archive = archive
	}

	return pipeline.New(cfg, deps), deps.Source, nil
}
