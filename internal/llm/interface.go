package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means no backend could be built (missing credentials or remote config).
	ErrUnavailable = errors.New("llm backend not available")
	// ErrUnsupported is returned by backends that cannot serve an operation.
	ErrUnsupported = errors.New("operation not supported by llm backend")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Backend is one configured LLM provider.
type Backend interface {
	Model() string
	Chat(ctx context.Context, req ChatRequest) (string, error)
	// Transcribe turns the audio file at path into text. An empty language lets the provider detect it.
	Transcribe(ctx context.Context, path, language string) (string, error)
}

// Source hands out the current backend, building it on first use.
type Source interface {
	Backend(ctx context.Context) (Backend, error)
}
