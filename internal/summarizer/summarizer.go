package summarizer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tsago2003/gpt/internal/llm"
	"github.com/tsago2003/gpt/internal/logger"
)

type SourceKind string

const (
	KindVideo SourceKind = "video"
	KindVoice SourceKind = "voice"
)

const (
	DefaultEmoji = "📝"
	UnknownEmoji = "❓"

	maxTokens   = 1500
	temperature = 0.5
)

const (
	markerTitle   = "TITLE:"
	markerEmoji   = "EMOJI:"
	markerSummary = "SUMMARY:"
)

type Result struct {
	Title   string
	Emoji   string
	Summary string
}

const videoPrompt = `You are a YouTube video summarizer. Complete the following two tasks:

1. Summarize the entire video transcript, providing the important points with proper sub-headings
   in a concise manner (within 500 words).

2. Choose a single emoji that best represents the main theme or topic of the video.

Format your response as follows:
EMOJI: [single emoji here]

SUMMARY:
[your summary here with proper formatting in %[1]s, do not forget to write it in %[1]s, it is the most important thing here.]

The transcript must be translated to %[1]s.

The transcript is: %[2]s`

const voicePrompt = `You are a voice sound summarizer. Complete the following tasks:

1. Summarize the entire sound transcript, providing the important points with proper sub-headings
   in a concise manner (within 250 words).

2. Choose a single emoji that best represents the main theme or topic of the audio.

3. Provide a clear and relevant title for the summary (maximum 50 characters).

Format your response as follows:
TITLE: [your title here, min 2 characters, max 50 characters]
EMOJI: [single emoji here]

SUMMARY:
[your summary here with proper formatting in %[1]s, do not forget to write it in %[1]s, it is the most important thing here.]

The transcript must be translated to %[1]s.

The transcript is: %[2]s`

// Summarizer turns transcripts into a titled, emoji-tagged summary.
type Summarizer struct {
	llm    llm.Source
	logger logger.Logger
}

func New(source llm.Source, log logger.Logger) *Summarizer {
	return &Summarizer{llm: source, logger: log}
}

// Messages builds the chat request for kind. Anything other than KindVideo uses the voice template.
func Messages(transcript, language string, kind SourceKind) []llm.Message {
	subject := "voice sound"
	prompt := voicePrompt
	if kind == KindVideo {
		subject = "youtube"
		prompt = videoPrompt
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf("You are a helpful assistant that summarizes %s transcripts.", subject)},
		{Role: llm.RoleUser, Content: fmt.Sprintf(prompt, language, transcript)},
	}
}

// Summarize never fails: an unavailable backend and a failed call both map to fallback results.
func (s *Summarizer) Summarize(ctx context.Context, transcript, language string, kind SourceKind) Result {
	backend, err := s.llm.Backend(ctx)
	if err != nil {
		s.logger.Warn(ctx, "LLM client not available, using fallback summary: %v", err)
		return Result{
			Emoji: DefaultEmoji,
			Summary: fmt.Sprintf("Summary not available - LLM API key not configured. Transcript length: %d characters.",
				utf8.RuneCountInString(transcript)),
		}
	}

	text, err := backend.Chat(ctx, llm.ChatRequest{
		Messages:    Messages(transcript, language, kind),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		s.logger.Error(ctx, "Error generating summary: %v", err)
		return Result{
			Emoji:   UnknownEmoji,
			Summary: fmt.Sprintf("Error generating summary: %v", err),
		}
	}

	res := Parse(text)
	s.logger.Debug(ctx, "Parsed summary: title=%q emoji=%s summary length=%d", res.Title, res.Emoji, len(res.Summary))
	return res
}

// Parse splits a completion on the literal TITLE:, EMOJI: and SUMMARY: markers.
func Parse(text string) Result {
	res := Result{Emoji: DefaultEmoji, Summary: text}

	if v, ok := section(text, markerTitle, markerEmoji); ok {
		res.Title = v
	}
	if v, ok := section(text, markerEmoji, markerSummary); ok {
		if fields := strings.Fields(v); len(fields) > 0 {
			res.Emoji = fields[0]
		}
	}
	if v, ok := section(text, markerSummary, ""); ok && v != "" {
		res.Summary = v
	}
	return res
}

// section returns the trimmed text after the first start marker, cut at the next end marker.
func section(text, start, end string) (string, bool) {
	_, after, found := strings.Cut(text, start)
	if !found {
		return "", false
	}
	if end != "" {
		after, _, _ = strings.Cut(after, end)
	}
	return strings.TrimSpace(after), true
}
