package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tsago2003/gpt/internal/assistant"
	"github.com/tsago2003/gpt/internal/db/dbtest"
	"github.com/tsago2003/gpt/internal/llm"
	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/model"
	"github.com/tsago2003/gpt/internal/orchestrator"
	"github.com/tsago2003/gpt/internal/remoteconfig"
	"github.com/tsago2003/gpt/internal/store"
	"github.com/tsago2003/gpt/internal/summarizer"
	"github.com/tsago2003/gpt/internal/transcript"
	"github.com/tsago2003/gpt/internal/worker"
	"gorm.io/gorm"
)

type fakeTranscript struct {
	text string
	err  error
}

func (f fakeTranscript) Fetch(context.Context, string) (transcript.Result, error) {
	if f.err != nil {
		return transcript.Result{}, f.err
	}
	return transcript.Result{Text: f.text, Title: "A video"}, nil
}

type fakeSpeech struct{ text string }

func (f fakeSpeech) Transcribe(context.Context, string, string) (string, error) { return f.text, nil }

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, text, _ string, _ summarizer.SourceKind) summarizer.Result {
	return summarizer.Parse("TITLE: Note\nEMOJI: 🎵\nSUMMARY: summary of " + text)
}

type fakeChat struct{ reply string }

func (f fakeChat) Converse(context.Context, string, *assistant.History, string) (string, error) {
	return f.reply, nil
}

type rejectingPool struct{}

func (rejectingPool) Submit(worker.Job) error { return worker.ErrQueueFull }

type fixture struct {
	db   *gorm.DB
	svc  *Service
	pool *worker.Pool
}

func newFixture(t *testing.T, fetch fakeTranscript) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	s := store.NewTaskStore(gdb)
	orch := orchestrator.New(s, fetch, fakeSpeech{text: "voice words"}, fakeSummarizer{}, logger.Nop())
	pool := worker.New(2, 16, nil, logger.Nop())
	pool.Start()
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	remote := remoteconfig.Static{LLMProvider: remoteconfig.ProviderOpenAI, OpenAIModel: "gpt-4o-mini"}
	svc := New(s, orch, pool, fakeChat{reply: "sure"}, remote, Defaults{Model: "Gemini", SummaryLanguage: "Spanish"}, logger.Nop())
	return &fixture{db: gdb, svc: svc, pool: pool}
}

func (f *fixture) countRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.Task{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func pollUntil(t *testing.T, timeout time.Duration, f func() (bool, error)) error {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		ok, err := f()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("timeout")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubmitVideo_ValidationCreatesNoRows(t *testing.T) {
	f := newFixture(t, fakeTranscript{text: "x"})
	ctx := context.Background()

	for _, link := range []string{
		"",
		"not a url",
		"ftp://youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=short",
		"/watch?v=dQw4w9WgXcQ",
	} {
		_, err := f.svc.SubmitVideo(ctx, link, "modelX", "English")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("SubmitVideo(%q): want ValidationError, got %v", link, err)
		}
	}
	if n := f.countRows(t); n != 0 {
		t.Fatalf("validation failures created %d rows", n)
	}
}

var statusOrder = map[model.TaskStatus]int{
	model.StatusInProgress: 0,
	model.StatusProcessing: 1,
	model.StatusCompleted:  2,
	model.StatusFailed:     2,
}

func TestSubmitVideo_EndToEnd(t *testing.T) {
	tests := []struct {
		name  string
		fetch fakeTranscript
		want  model.TaskStatus
	}{
		{name: "completed", fetch: fakeTranscript{text: "hello world"}, want: model.StatusCompleted},
		{name: "failed", fetch: fakeTranscript{err: fmt.Errorf("%w: status 404", transcript.ErrNoTranscript)}, want: model.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.fetch)
			ctx := context.Background()

			taskID, err := f.svc.SubmitVideo(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "modelX", "English")
			if err != nil {
				t.Fatalf("SubmitVideo: %v", err)
			}

			last := -1
			var view StatusView
			err = pollUntil(t, 5*time.Second, func() (bool, error) {
				v, err := f.svc.GetTaskStatus(ctx, taskID)
				if err != nil {
					return false, err
				}
				if statusOrder[v.Status] < last {
					return false, fmt.Errorf("status went backwards to %s", v.Status)
				}
				last = statusOrder[v.Status]
				view = v
				return v.Status.IsTerminal(), nil
			})
			if err != nil {
				t.Fatalf("poll: %v", err)
			}

			if view.Status != tt.want {
				t.Fatalf("status = %s, want %s", view.Status, tt.want)
			}
			switch view.Status {
			case model.StatusCompleted:
				if view.Transcript == nil || view.Summary == nil || view.Emoji == nil || view.Error != nil {
					t.Fatalf("bad completed view: %+v", view)
				}
				if *view.Summary != "summary of hello world" {
					t.Fatalf("summary = %q", *view.Summary)
				}
			case model.StatusFailed:
				if view.Error == nil || *view.Error == "" || view.Summary != nil {
					t.Fatalf("bad failed view: %+v", view)
				}
			}

			task, err := f.svc.GetTask(ctx, taskID)
			if err != nil {
				t.Fatalf("GetTask: %v", err)
			}
			if task.Model != "modelX" || task.SummaryLanguage != "English" || task.SourceID != "dQw4w9WgXcQ" {
				t.Fatalf("unexpected row: %+v", task)
			}
		})
	}
}

func TestSubmitVideo_Defaults(t *testing.T) {
	f := newFixture(t, fakeTranscript{text: "x"})
	ctx := context.Background()

	taskID, err := f.svc.SubmitVideo(ctx, "https://youtu.be/dQw4w9WgXcQ", "", "")
	if err != nil {
		t.Fatalf("SubmitVideo: %v", err)
	}
	task, err := f.svc.GetTask(ctx, taskID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Model != "Gemini" || task.SummaryLanguage != "Spanish" {
		t.Fatalf("defaults not applied: model=%q language=%q", task.Model, task.SummaryLanguage)
	}
}

func TestSubmitVoice(t *testing.T) {
	f := newFixture(t, fakeTranscript{})
	ctx := context.Background()

	if _, err := f.svc.SubmitVoice(ctx, "https://cdn.example.com/notes/memo.m4a", "English", ""); err == nil {
		t.Fatal("missing input language accepted")
	}
	if n := f.countRows(t); n != 0 {
		t.Fatalf("rejected voice submission created %d rows", n)
	}

	taskID, err := f.svc.SubmitVoice(ctx, "https://cdn.example.com/notes/memo.m4a", "English", "auto")
	if err != nil {
		t.Fatalf("SubmitVoice: %v", err)
	}

	var view StatusView
	if err := pollUntil(t, 5*time.Second, func() (bool, error) {
		v, err := f.svc.GetTaskStatus(ctx, taskID)
		view = v
		return err == nil && v.Status.IsTerminal(), err
	}); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if view.Status != model.StatusCompleted || *view.Title != "Note" || *view.Transcript != "voice words" {
		t.Fatalf("unexpected view: %+v", view)
	}

	task, _ := f.svc.GetTask(ctx, taskID)
	if task.SourceID != "memo" || task.Model != "gpt-4o-mini" || task.SummaryLanguage != "English" {
		t.Fatalf("unexpected row: %+v", task)
	}
}

func TestSubmit_DispatchFailureMarksTaskFailed(t *testing.T) {
	gdb := dbtest.Open(t)
	s := store.NewTaskStore(gdb)
	svc := New(s, nil, rejectingPool{}, nil, remoteconfig.Static{}, Defaults{Model: "Gemini", SummaryLanguage: "Spanish"}, logger.Nop())
	svc.newID = func() string { return "fixed-id" }

	_, err := svc.SubmitVideo(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "", "")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("want ErrBusy, got %v", err)
	}

	task, err := s.Get(context.Background(), "fixed-id")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if task.Status != model.StatusFailed || task.Error == nil {
		t.Fatalf("abandoned task = %+v", task)
	}
}

func TestGetTaskStatus_NotFound(t *testing.T) {
	f := newFixture(t, fakeTranscript{})
	if _, err := f.svc.GetTaskStatus(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPostMessage(t *testing.T) {
	f := newFixture(t, fakeTranscript{})
	ctx := context.Background()

	if _, _, err := f.svc.PostMessage(ctx, "", []llm.Message{}, "hi"); err == nil {
		t.Fatal("empty transcript accepted")
	}
	if _, _, err := f.svc.PostMessage(ctx, "t", nil, "hi"); err == nil {
		t.Fatal("missing history accepted")
	}
	if _, _, err := f.svc.PostMessage(ctx, "t", []llm.Message{{Role: "system", Content: "x"}}, "hi"); err == nil {
		t.Fatal("system role in history accepted")
	}

	reply, _, err := f.svc.PostMessage(ctx, "t", []llm.Message{}, "hi")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if reply != "sure" {
		t.Fatalf("reply = %q", reply)
	}
}
