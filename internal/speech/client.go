package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/tsago2003/gpt/internal/llm"
	"github.com/tsago2003/gpt/internal/logger"
)

// AutoLanguage lets the provider detect the spoken language.
const AutoLanguage = "auto"

var (
	ErrDownload      = errors.New("audio download failed")
	ErrTranscription = errors.New("transcription failed")
)

type Options struct {
	TempDir          string
	DownloadTimeout  time.Duration
	MaxDownloadBytes int64
}

// Client downloads audio and hands it to the configured speech-to-text backend.
type Client struct {
	opts   Options
	http   *http.Client
	llm    llm.Source
	logger logger.Logger
}

func New(opts Options, source llm.Source, log logger.Logger) *Client {
	return &Client{
		opts:   opts,
		http:   &http.Client{Timeout: opts.DownloadTimeout},
		llm:    source,
		logger: log,
	}
}

// Transcribe downloads audioURL and returns its transcript. The temp file is removed on every path.
func (c *Client) Transcribe(ctx context.Context, audioURL, inputLanguage string) (string, error) {
	backend, err := c.llm.Backend(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	file, err := c.download(ctx, audioURL)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			c.logger.Warn(ctx, "Error deleting temporary file %s: %v", file, err)
		}
	}()

	language := inputLanguage
	if language == AutoLanguage {
		language = ""
	}

	text, err := backend.Transcribe(ctx, file, language)
	if err != nil {
		c.logger.Error(ctx, "Transcription error: %v", err)
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	return text, nil
}

func (c *Client) download(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	// The provider infers the format from the extension, so keep the source's.
	f, err := os.CreateTemp(c.opts.TempDir, "audio-*"+extension(audioURL))
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrDownload, err)
	}
	name := f.Name()

	var body io.Reader = resp.Body
	if c.opts.MaxDownloadBytes > 0 {
		body = io.LimitReader(resp.Body, c.opts.MaxDownloadBytes+1)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && c.opts.MaxDownloadBytes > 0 && n > c.opts.MaxDownloadBytes {
		err = fmt.Errorf("audio exceeds %d bytes", c.opts.MaxDownloadBytes)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	c.logger.Debug(ctx, "Downloaded %d bytes of audio to %s", n, name)
	return name, nil
}

func extension(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err != nil {
		return ".m4a"
	}
	ext := path.Ext(u.Path)
	if ext == "" || len(ext) > 6 {
		return ".m4a"
	}
	return ext
}
