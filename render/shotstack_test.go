package render

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipbot/config"
)

func shotstackTestServer(t *testing.T, submitted *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == "" {
			t.Error("expected x-api-key header on every request")
		}

		switch r.Method {
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(submitted); err != nil {
				t.Errorf("submit body is not JSON: %v", err)
			}
			fmt.Fprint(w, `{"response":{"id":"render-1"}}`)
		case http.MethodGet:
			fmt.Fprint(w, `{"response":{"status":"done","url":"https://cdn.example.com/out.mp4"}}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
}

func testShotstack(url string) *Shotstack {
	return NewShotstack(config.RenderConfig{
		ShotstackAPIKey: "test-key",
		ShotstackURL:    url,
		PollInterval:    5 * time.Millisecond,
		PollTimeout:     time.Second,
	})
}

func TestShotstackRenderSubmitAndPoll(t *testing.T) {
	var submitted map[string]interface{}
	server := shotstackTestServer(t, &submitted)
	defer server.Close()

	result, err := testShotstack(server.URL).Render(context.Background(), Job{
		AudioPath:  "https://assets.example.com/narration.mp3",
		ImagePaths: []string{"https://assets.example.com/slide_01.png"},
		Title:      "Hot take",
		OutputPath: "ignored-for-hosted-renders",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if result.URL != "https://cdn.example.com/out.mp4" {
		t.Errorf("URL = %q", result.URL)
	}
	if submitted == nil {
		t.Fatal("no edit was submitted")
	}
}

func TestShotstackRenderWithoutImagesDegradesToTitle(t *testing.T) {
	var submitted map[string]interface{}
	server := shotstackTestServer(t, &submitted)
	defer server.Close()

	_, err := testShotstack(server.URL).Render(context.Background(), Job{
		AudioPath: "https://assets.example.com/narration.mp3",
		Title:     "Audio only",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	timeline, ok := submitted["timeline"].(map[string]interface{})
	if !ok {
		t.Fatal("submitted edit has no timeline")
	}
	tracks, ok := timeline["tracks"].([]interface{})
	if !ok || len(tracks) != 1 {
		t.Fatalf("expected exactly the title track, got %v", timeline["tracks"])
	}
}

func TestShotstackRenderRejectsEmptyJob(t *testing.T) {
	if _, err := testShotstack("http://unused").Render(context.Background(), Job{
		AudioPath: "https://assets.example.com/narration.mp3",
	}); err == nil {
		t.Error("expected error for a job with no images and no title")
	}
}
