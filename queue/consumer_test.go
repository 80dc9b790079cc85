package queue

import (
	"context"
	"errors"
	"testing"

	"clipbot/transcript"
	"clipbot/types"
)

type stubProcessor struct {
	err   error
	calls int
	urls  []string
}

func (s *stubProcessor) ProcessURL(_ context.Context, rawURL string) (*types.Artifact, error) {
	s.calls++
	s.urls = append(s.urls, rawURL)
	if s.err != nil {
		return nil, s.err
	}
	return &types.Artifact{VideoID: "dQw4w9WgXcQ", VideoPath: "/tmp/out.mp4"}, nil
}

func TestHandleJobSuccess(t *testing.T) {
	p := &stubProcessor{}
	payload := []byte(`{"uuid":"job-1","video_url":"https://youtu.be/dQw4w9WgXcQ"}`)

	if !handleJob(context.Background(), p, payload) {
		t.Error("successful job should be marked")
	}
	if p.calls != 1 || p.urls[0] != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("unexpected processor calls: %+v", p.urls)
	}
}

func TestHandleJobMalformedPayloadIsDropped(t *testing.T) {
	p := &stubProcessor{}
	if !handleJob(context.Background(), p, []byte("{not json")) {
		t.Error("malformed payload should be marked so it is not redelivered")
	}
	if p.calls != 0 {
		t.Error("malformed payload must not reach the processor")
	}
}

func TestHandleJobEmptyURLIsDropped(t *testing.T) {
	p := &stubProcessor{}
	if !handleJob(context.Background(), p, []byte(`{"uuid":"job-2","video_url":""}`)) {
		t.Error("empty video_url should be marked")
	}
	if p.calls != 0 {
		t.Error("empty video_url must not reach the processor")
	}
}

func TestHandleJobMissingTranscriptIsDropped(t *testing.T) {
	p := &stubProcessor{err: transcript.ErrNoTranscript}
	payload := []byte(`{"uuid":"job-3","video_url":"https://youtu.be/dQw4w9WgXcQ"}`)

	if !handleJob(context.Background(), p, payload) {
		t.Error("missing transcript is a business outcome, not a retryable failure")
	}
}

func TestHandleJobTransientFailureIsRetried(t *testing.T) {
	p := &stubProcessor{err: errors.New("renderer timeout")}
	payload := []byte(`{"uuid":"job-4","video_url":"https://youtu.be/dQw4w9WgXcQ"}`)

	if handleJob(context.Background(), p, payload) {
		t.Error("transient failure should leave the message unmarked for retry")
	}
}
