package render

import (
	"context"
	"errors"
	"fmt"
	"math"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"clipbot/config"
)

// FFmpeg assembles the slideshow locally. Each image is looped for an equal
// share of the narration, scaled to the vertical output size, concatenated
// and muxed with the audio.
type FFmpeg struct {
	// SecondsPerImage overrides the slide length; zero means MaxVideoDuration
	// split evenly across the images, capped at the audio length by -shortest.
	SecondsPerImage float64
}

// NewFFmpeg builds the local renderer
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{}
}

// Render produces job.OutputPath. The audio track ends the video via the
// shortest flag, so overlong slideshows are trimmed rather than padded.
func (f *FFmpeg) Render(ctx context.Context, job Job) (Result, error) {
	if job.AudioPath == "" {
		return Result{}, errors.New("no audio provided for render")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	video := f.videoStream(job)
	audio := ffmpeg.Input(job.AudioPath)

	err := ffmpeg.Output([]*ffmpeg.Stream{video, audio}, job.OutputPath, ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"preset":   config.VideoPreset,
		"pix_fmt":  "yuv420p",
		"shortest": "",
	}).OverWriteOutput().Run()
	if err != nil {
		return Result{}, fmt.Errorf("ffmpeg failed: %w", err)
	}

	return Result{Path: job.OutputPath}, nil
}

// videoStream builds the slideshow track. With no images at all the video
// degrades to a black canvas under the narration instead of failing the
// candidate.
func (f *FFmpeg) videoStream(job Job) *ffmpeg.Stream {
	if len(job.ImagePaths) == 0 {
		canvas := fmt.Sprintf("color=c=black:s=%dx%d:r=25:d=%.0f",
			config.VideoWidth, config.VideoHeight, config.MaxVideoDuration)
		return ffmpeg.Input(canvas, ffmpeg.KwArgs{"f": "lavfi"})
	}

	perImage := f.SecondsPerImage
	if perImage <= 0 {
		perImage = math.Min(config.MaxVideoDuration/float64(len(job.ImagePaths)), 60)
	}

	scaleArg := fmt.Sprintf("%d:%d:force_original_aspect_ratio=decrease", config.VideoWidth, config.VideoHeight)
	padArg := fmt.Sprintf("%d:%d:(ow-iw)/2:(oh-ih)/2", config.VideoWidth, config.VideoHeight)

	slides := make([]*ffmpeg.Stream, 0, len(job.ImagePaths))
	for _, img := range job.ImagePaths {
		in := ffmpeg.Input(img, ffmpeg.KwArgs{
			"loop":      1,
			"t":         fmt.Sprintf("%.2f", perImage),
			"framerate": 25,
		})
		scaled := in.Filter("scale", ffmpeg.Args{scaleArg}).
			Filter("pad", ffmpeg.Args{padArg}).
			Filter("setsar", ffmpeg.Args{"1"})
		slides = append(slides, scaled)
	}

	return ffmpeg.Concat(slides)
}
