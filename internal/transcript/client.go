package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tsago2003/gpt/internal/logger"
)

// ErrNoTranscript wraps every failure to produce usable transcript text.
var ErrNoTranscript = errors.New("no transcript")

const maxBodyBytes = 32 << 20

type Result struct {
	Text            string
	Title           string
	DurationSeconds *int
}

type Options struct {
	BaseURL string
	APIKey  string
	APIHost string
	Timeout time.Duration
}

// Client fetches transcripts from the RapidAPI youtube-transcriptor service.
type Client struct {
	opts   Options
	http   *http.Client
	logger logger.Logger
}

func New(opts Options, log logger.Logger) *Client {
	return &Client{
		opts:   opts,
		http:   &http.Client{Timeout: opts.Timeout},
		logger: log,
	}
}

// Fetch returns the transcript for sourceID. Every failure wraps ErrNoTranscript.
func (c *Client) Fetch(ctx context.Context, sourceID string) (Result, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: bad base url: %v", ErrNoTranscript, err)
	}
	q := u.Query()
	q.Set("video_id", sourceID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoTranscript, err)
	}
	req.Header.Set("X-RapidAPI-Key", c.opts.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.opts.APIHost)

	c.logger.Info(ctx, "Requesting transcript for video %s", sourceID)
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: request failed: %v", ErrNoTranscript, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%w: transcript extraction failed with status code %d", ErrNoTranscript, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read body: %v", ErrNoTranscript, err)
	}

	res, err := Decode(body)
	if err != nil {
		return Result{}, err
	}
	c.logger.Info(ctx, "Extracted transcript of length %d", len(res.Text))
	return res, nil
}

// payload is one transcript object. Text arrives either flat or as ordered subtitle fragments.
type payload struct {
	TranscriptionAsText *string         `json:"transcriptionAsText"`
	Transcription       []fragment      `json:"transcription"`
	Title               string          `json:"title"`
	LengthInSeconds     json.RawMessage `json:"lengthInSeconds"`
	Subtitle            string          `json:"subtitle"`
}

func (p payload) hasText() bool {
	return p.TranscriptionAsText != nil || p.Transcription != nil
}

type fragment struct {
	Subtitle string `json:"subtitle"`
}

// Decode normalises a provider response body. The body is one object, a list whose first element
// is used, or a bare list of subtitle fragments.
func Decode(body []byte) (Result, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Result{}, fmt.Errorf("%w: empty response", ErrNoTranscript)
	}

	var p payload
	switch body[0] {
	case '[':
		var list []payload
		if err := json.Unmarshal(body, &list); err != nil {
			return Result{}, fmt.Errorf("%w: decode list: %v", ErrNoTranscript, err)
		}
		if len(list) == 0 {
			return Result{}, fmt.Errorf("%w: empty list", ErrNoTranscript)
		}
		p = list[0]
		if !p.hasText() {
			p.Transcription = make([]fragment, 0, len(list))
			for _, item := range list {
				p.Transcription = append(p.Transcription, fragment{Subtitle: item.Subtitle})
			}
		}
	case '{':
		if err := json.Unmarshal(body, &p); err != nil {
			return Result{}, fmt.Errorf("%w: decode object: %v", ErrNoTranscript, err)
		}
	default:
		return Result{}, fmt.Errorf("%w: unexpected response shape", ErrNoTranscript)
	}

	res := Result{
		Title:           p.Title,
		DurationSeconds: parseSeconds(p.LengthInSeconds),
	}

	switch {
	case p.TranscriptionAsText != nil:
		res.Text = *p.TranscriptionAsText
	case p.Transcription != nil:
		parts := make([]string, 0, len(p.Transcription))
		for _, f := range p.Transcription {
			if f.Subtitle != "" {
				parts = append(parts, f.Subtitle)
			}
		}
		res.Text = strings.Join(parts, " ")
	}

	if strings.TrimSpace(res.Text) == "" {
		return Result{}, fmt.Errorf("%w: response carries no transcript text", ErrNoTranscript)
	}
	return res, nil
}

// parseSeconds accepts 212, "212" or "212.4"; anything else is dropped.
func parseSeconds(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return nil
	}
	n := int(f)
	return &n
}
