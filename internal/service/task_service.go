package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tsago2003/gpt/internal/assistant"
	"github.com/tsago2003/gpt/internal/llm"
	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/model"
	"github.com/tsago2003/gpt/internal/orchestrator"
	"github.com/tsago2003/gpt/internal/remoteconfig"
	"github.com/tsago2003/gpt/internal/store"
	"github.com/tsago2003/gpt/internal/worker"
)

// ErrBusy means the task was created but no worker could take it.
var ErrBusy = errors.New("server busy, try again later")

// ValidationError rejects a request before any task is created.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

var videoIDPattern = regexp.MustCompile(`(?:v=|/)([A-Za-z0-9_-]{11})`)

type Runner interface {
	RunVideoJob(ctx context.Context, job orchestrator.VideoJob)
	RunVoiceJob(ctx context.Context, job orchestrator.VoiceJob)
}

type Dispatcher interface {
	Submit(job worker.Job) error
}

type Conversation interface {
	Converse(ctx context.Context, transcript string, history *assistant.History, newMessage string) (string, error)
}

type Defaults struct {
	Model           string
	SummaryLanguage string
}

// StatusView is what pollers see. Result fields are set only for completed tasks, Error only for failed ones.
type StatusView struct {
	TaskID          string           `json:"task_id"`
	Status          model.TaskStatus `json:"status"`
	Transcript      *string          `json:"transcript,omitempty"`
	Summary         *string          `json:"summary,omitempty"`
	Emoji           *string          `json:"emoji,omitempty"`
	Title           *string          `json:"title,omitempty"`
	LengthInSeconds *int             `json:"length_in_seconds,omitempty"`
	Error           *string          `json:"error,omitempty"`
}

type Service struct {
	store     store.Store
	runner    Runner
	pool      Dispatcher
	assistant Conversation
	remote    remoteconfig.Provider
	defaults  Defaults
	logger    logger.Logger
	newID     func() string
}

func New(s store.Store, runner Runner, pool Dispatcher, a Conversation, remote remoteconfig.Provider, defaults Defaults, log logger.Logger) *Service {
	return &Service{
		store:     s,
		runner:    runner,
		pool:      pool,
		assistant: a,
		remote:    remote,
		defaults:  defaults,
		logger:    log,
		newID:     func() string { return uuid.New().String() },
	}
}

// SubmitVideo registers a video task and dispatches its job. Empty model and language take the defaults.
func (s *Service) SubmitVideo(ctx context.Context, link, modelName, language string) (string, error) {
	s.logger.Info(ctx, "Received video submission: %s, model: %s, language: %s", link, modelName, language)

	if strings.TrimSpace(link) == "" {
		return "", invalid("No video link provided")
	}
	if _, err := parseLink(link); err != nil {
		return "", err
	}
	m := videoIDPattern.FindStringSubmatch(link)
	if m == nil {
		return "", invalid("Invalid YouTube URL format")
	}
	sourceID := m[1]

	if modelName == "" {
		modelName = s.defaults.Model
	}
	if language == "" {
		language = s.defaults.SummaryLanguage
	}

	taskID := s.newID()
	ctx = logger.WithTaskID(ctx, taskID)
	s.logger.Info(ctx, "Registering task for video %s", sourceID)

	if err := s.store.Create(ctx, store.CreateParams{
		TaskID:          taskID,
		SourceID:        sourceID,
		SourceLink:      link,
		Model:           modelName,
		SummaryLanguage: language,
	}); err != nil {
		return "", fmt.Errorf("register task: %w", err)
	}

	job := orchestrator.VideoJob{TaskID: taskID, SourceID: sourceID, Model: modelName, Language: language}
	err := s.pool.Submit(worker.Job{
		TaskID: taskID,
		Run:    func(ctx context.Context) { s.runner.RunVideoJob(ctx, job) },
	})
	if err != nil {
		return "", s.abandon(ctx, taskID, err)
	}
	return taskID, nil
}

// SubmitVoice registers a voice note task. All three arguments are required.
func (s *Service) SubmitVoice(ctx context.Context, link, outputLanguage, inputLanguage string) (string, error) {
	if link == "" || outputLanguage == "" || inputLanguage == "" {
		return "", invalid("wrong request body")
	}
	u, err := parseLink(link)
	if err != nil {
		return "", err
	}

	sourceID := ""
	if m := videoIDPattern.FindStringSubmatch(link); m != nil {
		sourceID = m[1]
	} else {
		base := path.Base(u.Path)
		sourceID = strings.TrimSuffix(base, path.Ext(base))
	}
	if sourceID == "" || sourceID == "." || sourceID == "/" {
		return "", invalid("Invalid audio URL format")
	}

	taskID := s.newID()
	ctx = logger.WithTaskID(ctx, taskID)

	if err := s.store.Create(ctx, store.CreateParams{
		TaskID:          taskID,
		SourceID:        sourceID,
		SourceLink:      link,
		Model:           s.voiceModel(ctx),
		SummaryLanguage: outputLanguage,
	}); err != nil {
		return "", fmt.Errorf("register task: %w", err)
	}

	job := orchestrator.VoiceJob{
		TaskID:         taskID,
		SourceID:       sourceID,
		AudioURL:       link,
		OutputLanguage: outputLanguage,
		InputLanguage:  inputLanguage,
	}
	err = s.pool.Submit(worker.Job{
		TaskID: taskID,
		Run:    func(ctx context.Context) { s.runner.RunVoiceJob(ctx, job) },
	})
	if err != nil {
		return "", s.abandon(ctx, taskID, err)
	}
	return taskID, nil
}

func (s *Service) GetTaskStatus(ctx context.Context, taskID string) (StatusView, error) {
	task, err := s.store.Get(ctx, taskID)
	if err != nil {
		return StatusView{}, err
	}
	s.logger.Debug(ctx, "Task %s status: %s", taskID, task.Status)

	view := StatusView{TaskID: task.TaskID, Status: task.Status}
	switch task.Status {
	case model.StatusCompleted:
		view.Transcript = task.Transcript
		view.Summary = task.Summary
		view.Emoji = task.Emoji
		view.Title = task.Title
		view.LengthInSeconds = task.LengthInSeconds
	case model.StatusFailed:
		view.Error = task.Error
		if view.Error == nil || *view.Error == "" {
			view.Error = model.String("Unknown error")
		}
	}
	return view, nil
}

func (s *Service) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	return s.store.Get(ctx, taskID)
}

// PostMessage runs one chat turn and returns the reply with the updated history.
func (s *Service) PostMessage(ctx context.Context, transcript string, history []llm.Message, newMessage string) (string, []llm.Message, error) {
	if transcript == "" || history == nil || newMessage == "" {
		return "", nil, invalid("Wrong request body")
	}
	for _, m := range history {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			return "", nil, invalid("chatHistory role %q must be user or assistant", m.Role)
		}
	}

	h := assistant.NewHistory(history)
	reply, err := s.assistant.Converse(ctx, transcript, h, newMessage)
	if err != nil {
		return "", nil, err
	}
	return reply, h.Messages(), nil
}

// abandon ends a task that was stored but never dispatched.
func (s *Service) abandon(ctx context.Context, taskID string, cause error) error {
	s.logger.Error(ctx, "Failed to dispatch task %s: %v", taskID, cause)
	msg := model.String(fmt.Sprintf("dispatch failed: %v", cause))
	if err := s.store.Update(ctx, taskID, model.StatusProcessing, model.TaskUpdateOptions{}); err == nil {
		if err := s.store.Update(ctx, taskID, model.StatusFailed, model.TaskUpdateOptions{Error: msg}); err != nil {
			s.logger.Error(ctx, "Failed to mark task %s failed: %v", taskID, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrBusy, cause)
}

func (s *Service) voiceModel(ctx context.Context) string {
	v, err := s.remote.Get(ctx)
	if err != nil {
		s.logger.Warn(ctx, "Remote config unavailable, using default model: %v", err)
		return s.defaults.Model
	}
	m := v.OpenAIModel
	if v.LLMProvider == remoteconfig.ProviderGemini {
		m = v.GeminiModel
	}
	if m == "" {
		return s.defaults.Model
	}
	return m
}

func parseLink(link string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("Invalid URL: %s", link)
	}
	return u, nil
}
