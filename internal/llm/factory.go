package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/remoteconfig"
	"golang.org/x/sync/singleflight"
)

// BuildFunc turns remote config values into a backend.
type BuildFunc func(ctx context.Context, v remoteconfig.Values) (Backend, error)

// Factory builds the backend named by remote config once and shares it.
// Concurrent first callers wait on the same build; a failed build is retried by the next caller.
type Factory struct {
	provider remoteconfig.Provider
	build    BuildFunc
	logger   logger.Logger

	group singleflight.Group

	mu      sync.RWMutex
	backend Backend
}

var _ Source = (*Factory)(nil)

func NewFactory(provider remoteconfig.Provider, log logger.Logger) *Factory {
	return NewFactoryWithBuilder(provider, DefaultBuild, log)
}

func NewFactoryWithBuilder(provider remoteconfig.Provider, build BuildFunc, log logger.Logger) *Factory {
	return &Factory{provider: provider, build: build, logger: log}
}

func (f *Factory) Backend(ctx context.Context) (Backend, error) {
	f.mu.RLock()
	b := f.backend
	f.mu.RUnlock()
	if b != nil {
		return b, nil
	}

	res, err, _ := f.group.Do("backend", func() (interface{}, error) {
		f.mu.RLock()
		cached := f.backend
		f.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		values, err := f.provider.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: remote config: %v", ErrUnavailable, err)
		}
		backend, err := f.build(ctx, values)
		if err != nil {
			f.logger.Error(ctx, "Failed to initialize LLM client: %v", err)
			return nil, err
		}

		f.mu.Lock()
		f.backend = backend
		f.mu.Unlock()
		f.logger.Info(ctx, "LLM client initialized successfully (%s, model %s)", values.LLMProvider, backend.Model())
		return backend, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(Backend), nil
}

// Reset drops the cached backend so the next caller rebuilds it from fresh remote config.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backend = nil
}

// DefaultBuild creates the OpenAI or Gemini backend selected by v.LLMProvider.
func DefaultBuild(ctx context.Context, v remoteconfig.Values) (Backend, error) {
	switch v.LLMProvider {
	case remoteconfig.ProviderGemini:
		if v.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: geminiApiKey not found", ErrUnavailable)
		}
		return NewGemini(ctx, GeminiOptions{APIKey: v.GeminiAPIKey, Model: v.GeminiModel, UserAgent: v.UserAgent})
	default:
		if v.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: openAiApiKey not found", ErrUnavailable)
		}
		return NewOpenAI(OpenAIOptions{APIKey: v.OpenAIAPIKey, Model: v.OpenAIModel, UserAgent: v.UserAgent}), nil
	}
}
