package speech

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tsago2003/gpt/internal/llm"
	"github.com/tsago2003/gpt/internal/logger"
)

type fakeBackend struct {
	text     string
	err      error
	path     string
	language string
	content  string
}

func (f *fakeBackend) Model() string { return "fake" }

func (f *fakeBackend) Chat(context.Context, llm.ChatRequest) (string, error) { return "", nil }

func (f *fakeBackend) Transcribe(_ context.Context, path, language string) (string, error) {
	f.path = path
	f.language = language
	b, _ := os.ReadFile(path)
	f.content = string(b)
	return f.text, f.err
}

type fakeSource struct {
	backend llm.Backend
	err     error
}

func (s fakeSource) Backend(context.Context) (llm.Backend, error) { return s.backend, s.err }

func audioServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, source llm.Source, max int64) (*Client, string) {
	t.Helper()
	dir := t.TempDir()
	return New(Options{TempDir: dir, DownloadTimeout: time.Second, MaxDownloadBytes: max}, source, logger.Nop()), dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir not cleaned up: %d entries left", len(entries))
	}
}

func TestTranscribe_Success(t *testing.T) {
	srv := audioServer(t, "RIFF-audio-bytes", http.StatusOK)
	backend := &fakeBackend{text: "hola mundo"}
	c, dir := newClient(t, fakeSource{backend: backend}, 1<<20)

	text, err := c.Transcribe(context.Background(), srv.URL+"/notes/voice.mp3", "es")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hola mundo" {
		t.Fatalf("text = %q", text)
	}
	if backend.language != "es" {
		t.Fatalf("language = %q, want es", backend.language)
	}
	if backend.content != "RIFF-audio-bytes" {
		t.Fatalf("backend saw %q", backend.content)
	}
	if !strings.HasSuffix(backend.path, ".mp3") {
		t.Fatalf("temp file %q lost the extension", backend.path)
	}
	assertEmptyDir(t, dir)
}

func TestTranscribe_AutoOmitsLanguage(t *testing.T) {
	srv := audioServer(t, "x", http.StatusOK)
	backend := &fakeBackend{text: "ok"}
	c, _ := newClient(t, fakeSource{backend: backend}, 0)

	if _, err := c.Transcribe(context.Background(), srv.URL+"/a", AutoLanguage); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if backend.language != "" {
		t.Fatalf("language = %q, want none", backend.language)
	}
}

func TestTranscribe_ProviderFailureIsDistinguishable(t *testing.T) {
	srv := audioServer(t, "x", http.StatusOK)
	c, dir := newClient(t, fakeSource{backend: &fakeBackend{err: errors.New("413 file too large")}}, 0)

	_, err := c.Transcribe(context.Background(), srv.URL+"/a.m4a", "en")
	if !errors.Is(err, ErrTranscription) {
		t.Fatalf("want ErrTranscription, got %v", err)
	}
	if !strings.Contains(err.Error(), "413 file too large") {
		t.Fatalf("provider message lost: %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestTranscribe_DownloadFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		max    int64
	}{
		{name: "not found", body: "nope", status: http.StatusNotFound},
		{name: "too large", body: strings.Repeat("a", 64), status: http.StatusOK, max: 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := audioServer(t, tt.body, tt.status)
			backend := &fakeBackend{text: "never"}
			c, dir := newClient(t, fakeSource{backend: backend}, tt.max)

			if _, err := c.Transcribe(context.Background(), srv.URL+"/a.m4a", "en"); !errors.Is(err, ErrDownload) {
				t.Fatalf("want ErrDownload, got %v", err)
			}
			if backend.path != "" {
				t.Fatal("backend called after a failed download")
			}
			assertEmptyDir(t, dir)
		})
	}
}

func TestTranscribe_BackendUnavailable(t *testing.T) {
	c, _ := newClient(t, fakeSource{err: llm.ErrUnavailable}, 0)
	if _, err := c.Transcribe(context.Background(), "http://127.0.0.1:1/a.m4a", "en"); !errors.Is(err, ErrTranscription) {
		t.Fatalf("want ErrTranscription, got %v", err)
	}
}
