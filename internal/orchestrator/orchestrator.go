package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/model"
	"github.com/tsago2003/gpt/internal/store"
	"github.com/tsago2003/gpt/internal/summarizer"
	"github.com/tsago2003/gpt/internal/transcript"
)

// NoTranscript is stored as the transcript when the provider returned nothing usable.
const NoTranscript = "Failed to extract transcript."

type TranscriptFetcher interface {
	Fetch(ctx context.Context, sourceID string) (transcript.Result, error)
}

type SpeechTranscriber interface {
	Transcribe(ctx context.Context, audioURL, inputLanguage string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript, language string, kind summarizer.SourceKind) summarizer.Result
}

type VideoJob struct {
	TaskID   string
	SourceID string
	Model    string
	Language string
}

type VoiceJob struct {
	TaskID         string
	SourceID       string
	AudioURL       string
	OutputLanguage string
	InputLanguage  string
}

// Orchestrator drives one task from "in progress" to a terminal status.
type Orchestrator struct {
	store      store.Store
	transcript TranscriptFetcher
	speech     SpeechTranscriber
	summarizer Summarizer
	logger     logger.Logger
}

func New(s store.Store, t TranscriptFetcher, sp SpeechTranscriber, sum Summarizer, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:      s,
		transcript: t,
		speech:     sp,
		summarizer: sum,
		logger:     log,
	}
}

// RunVideoJob fetches the transcript, summarizes it and writes the result in one update.
// It never returns an error; every outcome ends as a terminal task state.
func (o *Orchestrator) RunVideoJob(ctx context.Context, job VideoJob) {
	if !o.begin(ctx, job.TaskID) {
		return
	}
	defer o.recoverToFailed(ctx, job.TaskID)

	o.logger.Info(ctx, "Processing video %s with task ID %s", job.SourceID, job.TaskID)

	title := "Video " + job.SourceID
	text := NoTranscript
	summary := fmt.Sprintf("Failed to generate summary for video %s.", job.SourceID)
	emoji := summarizer.DefaultEmoji
	var length *int
	errMsg := NoTranscript

	res, err := o.transcript.Fetch(ctx, job.SourceID)
	if err != nil {
		o.logger.Error(ctx, "Error during transcript extraction: %v", err)
		errMsg = err.Error()
	} else {
		text = res.Text
		length = res.DurationSeconds
		if res.Title != "" {
			title = res.Title
		}
	}

	status := model.StatusFailed
	opts := model.TaskUpdateOptions{}
	if text != NoTranscript {
		sum := o.summarizer.Summarize(ctx, text, job.Language, summarizer.KindVideo)
		emoji, summary = sum.Emoji, sum.Summary
		status = model.StatusCompleted
		o.logger.Info(ctx, "Generated summary with emoji %s", emoji)
	} else {
		o.logger.Warn(ctx, "No transcript extracted, cannot generate summary")
		opts.Error = model.String(errMsg)
	}

	opts.Title = model.String(title)
	opts.Transcript = model.String(text)
	opts.Summary = model.String(summary)
	opts.Emoji = model.String(emoji)
	opts.LengthInSeconds = length

	o.finish(ctx, job.TaskID, status, opts)
}

// RunVoiceJob transcribes the audio and summarizes it with the voice template.
func (o *Orchestrator) RunVoiceJob(ctx context.Context, job VoiceJob) {
	if !o.begin(ctx, job.TaskID) {
		return
	}
	defer o.recoverToFailed(ctx, job.TaskID)

	o.logger.Info(ctx, "Transcribing audio %s", job.SourceID)

	text, err := o.speech.Transcribe(ctx, job.AudioURL, job.InputLanguage)
	if err != nil {
		o.fail(ctx, job.TaskID, err.Error())
		return
	}

	sum := o.summarizer.Summarize(ctx, text, job.OutputLanguage, summarizer.KindVoice)
	title := sum.Title
	if title == "" {
		title = "Video " + job.TaskID
	}

	o.finish(ctx, job.TaskID, model.StatusCompleted, model.TaskUpdateOptions{
		Title:      model.String(title),
		Transcript: model.String(text),
		Summary:    model.String(sum.Summary),
		Emoji:      model.String(sum.Emoji),
	})
}

// begin moves the task to processing. A refusal means another runner owns it or it already ended.
func (o *Orchestrator) begin(ctx context.Context, taskID string) bool {
	err := o.store.Update(ctx, taskID, model.StatusProcessing, model.TaskUpdateOptions{})
	if err == nil {
		return true
	}
	if errors.Is(err, store.ErrInvalidTransition) || errors.Is(err, store.ErrNotFound) {
		o.logger.Warn(ctx, "Task %s not started: %v", taskID, err)
	} else {
		o.logger.Error(ctx, "Failed to mark task %s processing: %v", taskID, err)
	}
	return false
}

func (o *Orchestrator) finish(ctx context.Context, taskID string, status model.TaskStatus, opts model.TaskUpdateOptions) {
	o.logger.Info(ctx, "Updating task %s as %s", taskID, status)
	if err := o.store.Update(ctx, taskID, status, opts); err != nil {
		o.logger.Error(ctx, "Failed to store result for task %s: %v", taskID, err)
		if status != model.StatusFailed && !errors.Is(err, store.ErrInvalidTransition) {
			o.fail(ctx, taskID, fmt.Sprintf("failed to store result: %v", err))
		}
		return
	}
	o.logger.Info(ctx, "Task %s finished with status %s", taskID, status)
}

func (o *Orchestrator) fail(ctx context.Context, taskID, msg string) {
	o.logger.Error(ctx, "Processing error for task %s: %s", taskID, msg)
	if err := o.store.Update(ctx, taskID, model.StatusFailed, model.TaskUpdateOptions{Error: model.String(msg)}); err != nil {
		o.logger.Error(ctx, "Failed to mark task %s failed: %v", taskID, err)
	}
}

func (o *Orchestrator) recoverToFailed(ctx context.Context, taskID string) {
	if r := recover(); r != nil {
		o.fail(ctx, taskID, fmt.Sprintf("%v", r))
	}
}
