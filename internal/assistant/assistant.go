package assistant

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsago2003/gpt/internal/llm"
	"github.com/tsago2003/gpt/internal/logger"
)

const (
	maxTokens = 150

	// FallbackReply is returned when no LLM backend is configured.
	FallbackReply = "Chat not available right now. Please try again later."
)

const persona = `You are the note assistant of this summarization app. Your role is to:
1. Respond to the newest message.
2. Answer user questions about the note topic.
3. Engage in a discussion about the note content.
4. Keep every reply short enough to fit in 150 tokens.
You are always helpful, engaging, and informative.`

// History is a conversation shared across turns. Converse appends to it in place.
type History struct {
	mu       sync.Mutex
	messages []llm.Message
}

func NewHistory(messages []llm.Message) *History {
	return &History{messages: append([]llm.Message(nil), messages...)}
}

// Messages returns a copy of the conversation so far.
func (h *History) Messages() []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]llm.Message(nil), h.messages...)
}

func (h *History) append(m llm.Message) {
	h.mu.Lock()
	h.messages = append(h.messages, m)
	h.mu.Unlock()
}

type Assistant struct {
	llm    llm.Source
	logger logger.Logger
}

func New(source llm.Source, log logger.Logger) *Assistant {
	return &Assistant{llm: source, logger: log}
}

// Converse answers newMessage in the context of transcript. The user message and the reply are
// both appended to history.
func (a *Assistant) Converse(ctx context.Context, transcript string, history *History, newMessage string) (string, error) {
	backend, err := a.llm.Backend(ctx)
	if err != nil {
		a.logger.Warn(ctx, "LLM client not available for chat: %v", err)
		return FallbackReply, nil
	}

	history.append(llm.Message{Role: llm.RoleUser, Content: newMessage})

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: persona},
		{Role: llm.RoleSystem, Content: "The video transcript is: " + transcript},
	}
	messages = append(messages, history.Messages()...)

	reply, err := backend.Chat(ctx, llm.ChatRequest{Messages: messages, MaxTokens: maxTokens})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	history.append(llm.Message{Role: llm.RoleAssistant, Content: reply})
	return reply, nil
}
