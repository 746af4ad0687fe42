// Package remoteconfig supplies the runtime switches and LLM credentials that are managed outside the
// service config file: the auth toggle, the model name, api keys and the outbound user agent.
package remoteconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tsago2003/gpt/internal/logger"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Values struct {
	Auth         bool   `yaml:"auth"`
	OpenAIModel  string `yaml:"openAiModel"`
	OpenAIAPIKey string `yaml:"openAiApiKey"`
	UserAgent    string `yaml:"userAgent"`
	LLMProvider  string `yaml:"llmProvider"`
	GeminiAPIKey string `yaml:"geminiApiKey"`
	GeminiModel  string `yaml:"geminiModel"`
}

// Provider is a read-only source of Values.
type Provider interface {
	Get(ctx context.Context) (Values, error)
}

// Static always returns the same Values.
type Static Values

func (s Static) Get(context.Context) (Values, error) { return Values(s), nil }

// FileProvider loads Values from a yaml file on first use and keeps them for the process lifetime.
// Concurrent first callers share one load; a failed load is retried by the next caller.
type FileProvider struct {
	path   string
	logger logger.Logger

	group singleflight.Group

	mu       sync.RWMutex
	values   *Values
	onChange []func(Values)
}

func NewFileProvider(path string, log logger.Logger) *FileProvider {
	return &FileProvider{path: path, logger: log}
}

func (p *FileProvider) Get(ctx context.Context) (Values, error) {
	p.mu.RLock()
	v := p.values
	p.mu.RUnlock()
	if v != nil {
		return *v, nil
	}

	res, err, _ := p.group.Do("load", func() (interface{}, error) {
		p.mu.RLock()
		cached := p.values
		p.mu.RUnlock()
		if cached != nil {
			return *cached, nil
		}

		values, err := readValues(p.path)
		if err != nil {
			p.logger.Error(ctx, "Error fetching remote config: %v", err)
			return Values{}, err
		}
		p.store(values)
		p.logger.Info(ctx, "Remote config loaded from %s", p.path)
		return values, nil
	})
	if err != nil {
		return Values{}, err
	}
	return res.(Values), nil
}

// OnChange registers fn to run after every successful reload.
func (p *FileProvider) OnChange(fn func(Values)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

// Reload re-reads the file, replaces the cached values and notifies subscribers.
func (p *FileProvider) Reload(ctx context.Context) error {
	values, err := readValues(p.path)
	if err != nil {
		return err
	}
	p.store(values)

	p.mu.RLock()
	subs := append([]func(Values){}, p.onChange...)
	p.mu.RUnlock()
	for _, fn := range subs {
		fn(values)
	}
	p.logger.Info(ctx, "Remote config reloaded from %s", p.path)
	return nil
}

// Watch reloads on every write to the file until ctx is done.
// The parent directory is watched so editors that replace the file are picked up too.
func (p *FileProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}
	target := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := p.Reload(ctx); err != nil {
				p.logger.Warn(ctx, "Failed to reload remote config: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			p.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (p *FileProvider) store(v Values) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = &v
}

func readValues(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Values{}, fmt.Errorf("read remote config: %w", err)
	}

	var v Values
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Values{}, fmt.Errorf("parse remote config: %w", err)
	}
	if v.LLMProvider == "" {
		v.LLMProvider = ProviderOpenAI
	}
	if v.LLMProvider != ProviderOpenAI && v.LLMProvider != ProviderGemini {
		return Values{}, errors.New("remote config: llmProvider must be openai or gemini")
	}
	return v, nil
}
