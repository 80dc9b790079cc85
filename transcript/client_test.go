package transcript

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipbot/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.TranscriptConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
	})
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header = %q", got)
		}
		if r.URL.Path != "/vid123" {
			t.Errorf("path = %q; want /vid123", r.URL.Path)
		}
		w.Write([]byte(`{"text": "  hello transcript  "}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Fetch(context.Background(), "vid123")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got != "hello transcript" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "vid123")
	if !errors.Is(err, ErrNoTranscript) {
		t.Fatalf("err = %v; want ErrNoTranscript", err)
	}
}

func TestFetchEmptyTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "   "}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "vid123")
	if !errors.Is(err, ErrNoTranscript) {
		t.Fatalf("err = %v; want ErrNoTranscript", err)
	}
}

func TestFetchNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "vid123")
	if err == nil || errors.Is(err, ErrNoTranscript) {
		t.Fatalf("err = %v; want a non-JSON service fault", err)
	}
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "vid123")
	if err == nil || errors.Is(err, ErrNoTranscript) {
		t.Fatalf("err = %v; want a service fault distinct from ErrNoTranscript", err)
	}
}

func TestFetchEmptyVideoID(t *testing.T) {
	if _, err := newTestClient("http://unused").Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty video ID")
	}
}
