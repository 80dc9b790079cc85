package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode selects which process surfaces are active; each mode pulls in a
// different set of required credentials.
type Mode string

const (
	ModeOnce    Mode = "once"
	ModeLoop    Mode = "loop"
	ModeBot     Mode = "bot"
	ModeServe   Mode = "serve"
	ModeConsume Mode = "consume"
)

// Weights are the virality scoring coefficients. All weights apply to
// non-negative terms, so raising any weight can only raise scores.
type Weights struct {
	Views        float64
	Velocity     float64
	LikeRatio    float64
	CommentRatio float64
	Keyword      float64
}

// ScoringConfig drives the virality scorer
type ScoringConfig struct {
	Weights                Weights
	HotKeywords            []string
	KeywordCap             int
	ScoreMax               float64
	MinAgeHours            float64
	MissingPublishAgeHours float64
}

// SelectionConfig bounds which scored candidates proceed
type SelectionConfig struct {
	Threshold  float64
	MaxResults int
}

// YouTubeConfig covers candidate discovery and stats fetching
type YouTubeConfig struct {
	APIKey        string
	ChannelIDs    []string
	MaxPerChannel int64
	// RSSFallback lists channel feeds directly instead of calling the Data API
	RSSFallback bool
}

// TranscriptConfig points at the transcript service
type TranscriptConfig struct {
	BaseURL string
	APIKey  string
}

// CommentaryConfig wires the LLM collaborator. The persona prompt is opaque
// configuration data and is passed through to the model verbatim.
type CommentaryConfig struct {
	APIKey        string
	Model         string
	PersonaPath   string
	personaPrompt string
	MaxTokens     int
	Temperature   float64
}

// PersonaPrompt returns the persona text loaded at startup
func (c CommentaryConfig) PersonaPrompt() string { return c.personaPrompt }

// TTSConfig wires the speech synthesizer
type TTSConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
	Speed   float64
}

// ImagesConfig wires storyboard image generation
type ImagesConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
}

// RenderConfig selects the renderer. With a Shotstack key set the hosted
// renderer is used, otherwise slideshows are assembled locally with ffmpeg.
type RenderConfig struct {
	ShotstackAPIKey string
	ShotstackURL    string
	PollInterval    time.Duration
	PollTimeout     time.Duration
}

// UploadConfig gates publishing. Enabled defaults to false so a fresh
// deployment can never upload by accident.
type UploadConfig struct {
	Enabled       bool
	ClientID      string
	ClientSecret  string
	RefreshToken  string
	PrivacyStatus string
	CategoryID    string
}

// SchedulerConfig drives the recurring loop
type SchedulerConfig struct {
	Interval  time.Duration
	StartHour int
	EndHour   int
	Timezone  string
	location  *time.Location
}

// Location resolves the configured timezone, defaulting to UTC
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// BotConfig wires the Telegram front-end
type BotConfig struct {
	Token       string
	PollTimeout int
}

// StorageConfig covers the seen-ID store and the optional artifact archive
type StorageConfig struct {
	SeenPath  string
	RedisAddr string
	S3Bucket  string
	S3Region  string
	S3Prefix  string
	OutputDir string
}

// KafkaConfig is only required in consume mode
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Config is built once at process start and passed by reference to every
// component. Nothing reads the environment after Load returns.
type Config struct {
	Mode       Mode
	YouTube    YouTubeConfig
	Scoring    ScoringConfig
	Selection  SelectionConfig
	Transcript TranscriptConfig
	Commentary CommentaryConfig
	TTS        TTSConfig
	Images     ImagesConfig
	Render     RenderConfig
	Upload     UploadConfig
	Scheduler  SchedulerConfig
	Bot        BotConfig
	Storage    StorageConfig
	Kafka      KafkaConfig
	HTTPAddr   string
}

// DefaultWeights is the documented, internally consistent weight set.
// Log-scaled views and velocity dominate; engagement ratios reward likes and
// comments relative to reach; keyword hits are capped so title stuffing
// cannot run away.
func DefaultWeights() Weights {
	return Weights{
		Views:        2.0,
		Velocity:     2.2,
		LikeRatio:    4.5,
		CommentRatio: 9.0,
		Keyword:      0.5,
	}
}

// Load reads the environment into a Config and validates everything the
// given mode needs. A missing required setting is returned as an error; the
// caller exits before any network call is attempted.
func Load(mode Mode) (*Config, error) {
	cfg := &Config{
		Mode: mode,
		YouTube: YouTubeConfig{
			APIKey:        os.Getenv("YOUTUBE_API_KEY"),
			ChannelIDs:    splitList(os.Getenv("YOUTUBE_CHANNEL_IDS")),
			MaxPerChannel: int64(envInt("YOUTUBE_MAX_PER_CHANNEL", 10)),
			RSSFallback:   envBool("YOUTUBE_RSS_FALLBACK", false),
		},
		Scoring: ScoringConfig{
			Weights:                DefaultWeights(),
			HotKeywords:            splitList(envOrDefault("HOT_KEYWORDS", "breaking,exposed,scandal,leaked,crisis")),
			KeywordCap:             envInt("KEYWORD_CAP", 5),
			ScoreMax:               envFloat("SCORE_MAX", 20.0),
			MinAgeHours:            envFloat("MIN_AGE_HOURS", 1.0),
			MissingPublishAgeHours: envFloat("MISSING_PUBLISH_AGE_HOURS", 168.0),
		},
		Selection: SelectionConfig{
			Threshold:  envFloat("VIRALITY_THRESHOLD", 5.0),
			MaxResults: envInt("MAX_VIDEOS_PER_RUN", 2),
		},
		Transcript: TranscriptConfig{
			BaseURL: envOrDefault("TRANSCRIPT_API_URL", "https://api.transcriptapi.com/api/v1/transcript"),
			APIKey:  os.Getenv("TRANSCRIPT_API_KEY"),
		},
		Commentary: CommentaryConfig{
			APIKey:      os.Getenv("COHERE_API_KEY"),
			Model:       envOrDefault("COMMENTARY_MODEL", "command-r-plus-08-2024"),
			PersonaPath: envOrDefault("PERSONA_PROMPT_PATH", "prompts/persona.txt"),
			MaxTokens:   envInt("COMMENTARY_MAX_TOKENS", 900),
			Temperature: envFloat("COMMENTARY_TEMPERATURE", 0.8),
		},
		TTS: TTSConfig{
			APIKey:  os.Getenv("TTS_API_KEY"),
			BaseURL: envOrDefault("TTS_API_URL", "https://api.openai.com/v1/audio/speech"),
			Model:   envOrDefault("TTS_MODEL", "gpt-4o-mini-tts"),
			Voice:   envOrDefault("TTS_VOICE", "nova"),
			Speed:   envFloat("TTS_SPEED", 1.2),
		},
		Images: ImagesConfig{
			APIKey:  envOrDefault("IMAGE_API_KEY", os.Getenv("TTS_API_KEY")),
			BaseURL: envOrDefault("IMAGE_API_URL", "https://api.openai.com/v1/images/generations"),
			Model:   envOrDefault("IMAGE_MODEL", "gpt-image-1"),
			Size:    envOrDefault("IMAGE_SIZE", "1024x1024"),
		},
		Render: RenderConfig{
			ShotstackAPIKey: os.Getenv("SHOTSTACK_API_KEY"),
			ShotstackURL:    envOrDefault("SHOTSTACK_API_URL", "https://api.shotstack.io/v1/render"),
			PollInterval:    envDuration("RENDER_POLL_INTERVAL", 5*time.Second),
			PollTimeout:     envDuration("RENDER_POLL_TIMEOUT", 5*time.Minute),
		},
		Upload: UploadConfig{
			Enabled:       envBool("UPLOAD_ENABLED", false),
			ClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
			RefreshToken:  os.Getenv("GOOGLE_REFRESH_TOKEN"),
			PrivacyStatus: envOrDefault("UPLOAD_PRIVACY_STATUS", "private"),
			CategoryID:    envOrDefault("UPLOAD_CATEGORY_ID", "25"),
		},
		Scheduler: SchedulerConfig{
			Interval:  envDuration("RUN_INTERVAL", 20*time.Minute),
			StartHour: envInt("ACTIVE_START_HOUR", 8),
			EndHour:   envInt("ACTIVE_END_HOUR", 23),
			Timezone:  envOrDefault("SCHEDULER_TIMEZONE", "UTC"),
		},
		Bot: BotConfig{
			Token:       os.Getenv("TELEGRAM_BOT_TOKEN"),
			PollTimeout: envInt("TELEGRAM_POLL_TIMEOUT", 30),
		},
		Storage: StorageConfig{
			SeenPath:  envOrDefault("SEEN_STORE_PATH", "data/seen_videos.json"),
			RedisAddr: os.Getenv("REDIS_ADDR"),
			S3Bucket:  os.Getenv("S3_BUCKET"),
			S3Region:  os.Getenv("S3_REGION"),
			S3Prefix:  strings.Trim(os.Getenv("S3_PREFIX"), "/"),
			OutputDir: envOrDefault("OUTPUT_DIR", "outputs"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
			Topic:   envOrDefault("KAFKA_TOPIC", "video-jobs"),
			GroupID: envOrDefault("KAFKA_GROUP_ID", "clipbot-workers"),
		},
		HTTPAddr: ":" + envOrDefault("PORT", "8080"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", cfg.Scheduler.Timezone, err)
	}
	cfg.Scheduler.location = loc

	persona, err := os.ReadFile(cfg.Commentary.PersonaPath)
	if err != nil {
		return nil, fmt.Errorf("persona prompt not readable at %s: %w", cfg.Commentary.PersonaPath, err)
	}
	cfg.Commentary.personaPrompt = strings.TrimSpace(string(persona))
	if cfg.Commentary.personaPrompt == "" {
		return nil, fmt.Errorf("persona prompt at %s is empty", cfg.Commentary.PersonaPath)
	}

	return cfg, nil
}

// validate enforces fail-fast on required credentials per mode. Never
// silently default a required secret.
func (c *Config) validate() error {
	required := map[string]string{
		"TRANSCRIPT_API_KEY": c.Transcript.APIKey,
		"COHERE_API_KEY":     c.Commentary.APIKey,
		"TTS_API_KEY":        c.TTS.APIKey,
	}

	switch c.Mode {
	case ModeOnce, ModeLoop, ModeServe:
		if !c.YouTube.RSSFallback {
			required["YOUTUBE_API_KEY"] = c.YouTube.APIKey
		}
		if len(c.YouTube.ChannelIDs) == 0 {
			return fmt.Errorf("missing required setting: YOUTUBE_CHANNEL_IDS")
		}
	case ModeBot:
		required["TELEGRAM_BOT_TOKEN"] = c.Bot.Token
	case ModeConsume:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("missing required setting: KAFKA_BROKERS")
		}
	}

	if c.Upload.Enabled {
		required["GOOGLE_CLIENT_ID"] = c.Upload.ClientID
		required["GOOGLE_CLIENT_SECRET"] = c.Upload.ClientSecret
		required["GOOGLE_REFRESH_TOKEN"] = c.Upload.RefreshToken
	}

	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("missing required environment variable: %s", name)
		}
	}

	if c.Scheduler.StartHour < 0 || c.Scheduler.StartHour > 23 ||
		c.Scheduler.EndHour < 0 || c.Scheduler.EndHour > 23 {
		return fmt.Errorf("active hours must be within 0-23 (got %d-%d)",
			c.Scheduler.StartHour, c.Scheduler.EndHour)
	}

	if c.Selection.MaxResults < 0 {
		return fmt.Errorf("MAX_VIDEOS_PER_RUN must not be negative")
	}

	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
