package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"clipbot/config"
	"clipbot/transcript"
	"clipbot/types"
)

const apiBase = "https://api.telegram.org/bot"

// Processor produces a finished video for one requested URL.
type Processor interface {
	ProcessURL(ctx context.Context, rawURL string) (*types.Artifact, error)
}

// Bot is a long-polling Telegram front end. Users send a YouTube link and
// the bot runs the production pipeline on it, replying with progress and
// the final result.
type Bot struct {
	token       string
	pollTimeout int
	client      *http.Client
	processor   Processor
}

func New(cfg config.BotConfig, processor Processor) *Bot {
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 30
	}
	return &Bot{
		token:       cfg.Token,
		pollTimeout: timeout,
		// long polls hold the connection open for pollTimeout seconds
		client:    &http.Client{Timeout: time.Duration(timeout+10) * time.Second},
		processor: processor,
	}
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// Poll blocks until ctx is cancelled, handling each incoming message in
// sequence. Handler errors are reported to the chat, never propagated.
func (b *Bot) Poll(ctx context.Context) {
	log.Printf("[bot] Polling for updates")
	var offset int64

	for {
		if ctx.Err() != nil {
			log.Printf("[bot] Shutting down")
			return
		}

		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[bot] Shutting down")
				return
			}
			log.Printf("[bot] getUpdates failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, u.Message.Chat.ID, u.Message.Text)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)

	switch {
	case text == "/start" || text == "/help":
		b.reply(ctx, chatID, "Send me a YouTube link and I'll turn it into a commentary short.")
		return
	case strings.HasPrefix(text, "/"):
		b.reply(ctx, chatID, "Unknown command. Send a YouTube link or /help.")
		return
	}

	videoURL := firstURL(text)
	if videoURL == "" || types.ExtractVideoID(videoURL) == "" {
		b.reply(ctx, chatID, "That doesn't look like a YouTube link. Try something like https://youtu.be/dQw4w9WgXcQ")
		return
	}

	b.reply(ctx, chatID, "On it. Fetching the transcript and writing commentary, this takes a few minutes...")

	artifact, err := b.processor.ProcessURL(ctx, videoURL)
	if err != nil {
		b.reply(ctx, chatID, b.errorMessage(err))
		return
	}

	msg := fmt.Sprintf("Done! %q\n\n%s", artifact.Commentary.Title, artifact.Commentary.Description)
	if artifact.UploadID != "" {
		msg += "\n\nUploaded: " + types.WatchURL(artifact.UploadID)
	} else if artifact.VideoURL != "" {
		msg += "\n\nRendered: " + artifact.VideoURL
	} else {
		msg += "\n\nRendered to " + artifact.VideoPath
	}
	b.reply(ctx, chatID, msg)
}

// errorMessage maps pipeline failures to something a chat user can act on.
func (b *Bot) errorMessage(err error) string {
	if errors.Is(err, transcript.ErrNoTranscript) {
		return "No transcript is available for that video, so I can't write commentary for it."
	}
	return "Something went wrong: " + err.Error()
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	form := url.Values{}
	form.Set("timeout", strconv.Itoa(b.pollTimeout))
	if offset > 0 {
		form.Set("offset", strconv.FormatInt(offset, 10))
	}

	endpoint := apiBase + b.token + "/getUpdates"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram error: %s", resp.Status)
	}

	var payload struct {
		OK     bool     `json:"ok"`
		Result []update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !payload.OK {
		return nil, fmt.Errorf("telegram responded not ok")
	}
	return payload.Result, nil
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)

	endpoint := apiBase + b.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("[bot] Failed to build reply: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		log.Printf("[bot] Failed to send reply: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[bot] Telegram rejected reply: %s", resp.Status)
	}
}

// firstURL pulls the first http(s) token out of a message.
func firstURL(text string) string {
	for _, field := range strings.Fields(text) {
		if strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") {
			return field
		}
	}
	return ""
}
