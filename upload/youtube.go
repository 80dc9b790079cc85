package upload

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"clipbot/config"
	"clipbot/types"
)

// Uploader publishes rendered videos to YouTube. Uploads need a channel
// OAuth refresh token; an API key is not enough.
type Uploader struct {
	service       *youtube.Service
	privacyStatus string
	categoryID    string
}

// NewUploader builds an authenticated uploader from the refresh-token
// credentials. Call only when uploads are enabled.
func NewUploader(ctx context.Context, cfg config.UploadConfig) (*Uploader, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	client := oauthCfg.Client(ctx, token)

	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	return &Uploader{
		service:       service,
		privacyStatus: cfg.PrivacyStatus,
		categoryID:    cfg.CategoryID,
	}, nil
}

// Upload pushes a local video file and returns the new video ID
func (u *Uploader) Upload(ctx context.Context, videoPath string, commentary types.Commentary) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}
	log.Printf("[upload] Uploading: %s (%.2f MB)", videoPath, float64(info.Size())/(1024*1024))

	title := truncateTitle(commentary.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: commentary.Description,
			CategoryId:  u.categoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.privacyStatus,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video).
		Context(ctx).Media(file)

	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	log.Printf("[upload] Uploaded! https://youtube.com/watch?v=%s", resp.Id)
	return resp.Id, nil
}

// truncateTitle caps a title at the YouTube limit, cutting on a rune
// boundary so multi-byte characters are never split.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= config.MaxTitleLength {
		return title
	}
	return string(runes[:config.MaxTitleLength-3]) + "..."
}
