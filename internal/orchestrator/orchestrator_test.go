package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tsago2003/gpt/internal/db/dbtest"
	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/model"
	"github.com/tsago2003/gpt/internal/speech"
	"github.com/tsago2003/gpt/internal/store"
	"github.com/tsago2003/gpt/internal/summarizer"
	"github.com/tsago2003/gpt/internal/transcript"
)

type fakeTranscript struct {
	res transcript.Result
	err error
}

func (f fakeTranscript) Fetch(context.Context, string) (transcript.Result, error) { return f.res, f.err }

type fakeSpeech struct {
	text string
	err  error
}

func (f fakeSpeech) Transcribe(context.Context, string, string) (string, error) { return f.text, f.err }

type fakeSummarizer struct {
	res   summarizer.Result
	panic bool
	calls int
	kind  summarizer.SourceKind
}

func (f *fakeSummarizer) Summarize(_ context.Context, _, _ string, kind summarizer.SourceKind) summarizer.Result {
	f.calls++
	f.kind = kind
	if f.panic {
		panic("summarizer exploded")
	}
	return f.res
}

func setup(t *testing.T, taskID string) *store.TaskStore {
	t.Helper()
	s := store.NewTaskStore(dbtest.Open(t))
	err := s.Create(context.Background(), store.CreateParams{
		TaskID:          taskID,
		SourceID:        "dQw4w9WgXcQ",
		SourceLink:      "https://youtu.be/dQw4w9WgXcQ",
		Model:           "Gemini",
		SummaryLanguage: "English",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return s
}

func get(t *testing.T, s store.Store, id string) *model.Task {
	t.Helper()
	task, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return task
}

// assertTerminalShape checks the only two valid terminal shapes.
func assertTerminalShape(t *testing.T, task *model.Task) {
	t.Helper()
	switch task.Status {
	case model.StatusCompleted:
		if task.Transcript == nil || task.Summary == nil || task.Emoji == nil {
			t.Fatalf("completed task missing result fields: %+v", task)
		}
	case model.StatusFailed:
		if task.Error == nil || *task.Error == "" {
			t.Fatalf("failed task without error: %+v", task)
		}
	default:
		t.Fatalf("task not terminal: %s", task.Status)
	}
}

func TestRunVideoJob_Completed(t *testing.T) {
	s := setup(t, "t1")
	length := 212
	sum := &fakeSummarizer{res: summarizer.Result{Emoji: "🎵", Summary: "A song."}}
	o := New(s, fakeTranscript{res: transcript.Result{Text: "never gonna", Title: "Rick", DurationSeconds: &length}}, nil, sum, logger.Nop())

	o.RunVideoJob(context.Background(), VideoJob{TaskID: "t1", SourceID: "dQw4w9WgXcQ", Language: "English"})

	task := get(t, s, "t1")
	assertTerminalShape(t, task)
	if task.Status != model.StatusCompleted {
		t.Fatalf("status = %s", task.Status)
	}
	if *task.Transcript != "never gonna" || *task.Summary != "A song." || *task.Emoji != "🎵" || *task.Title != "Rick" {
		t.Fatalf("unexpected row: %+v", task)
	}
	if task.LengthInSeconds == nil || *task.LengthInSeconds != 212 {
		t.Fatalf("length = %v", task.LengthInSeconds)
	}
	if task.Error != nil {
		t.Fatalf("completed task carries error %q", *task.Error)
	}
	if sum.kind != summarizer.KindVideo {
		t.Fatalf("summarized as %q", sum.kind)
	}
}

func TestRunVideoJob_NoTranscriptFails(t *testing.T) {
	s := setup(t, "t2")
	sum := &fakeSummarizer{}
	fetchErr := fmt.Errorf("%w: transcript extraction failed with status code 404", transcript.ErrNoTranscript)
	o := New(s, fakeTranscript{err: fetchErr}, nil, sum, logger.Nop())

	o.RunVideoJob(context.Background(), VideoJob{TaskID: "t2", SourceID: "dQw4w9WgXcQ"})

	task := get(t, s, "t2")
	assertTerminalShape(t, task)
	if task.Status != model.StatusFailed {
		t.Fatalf("status = %s", task.Status)
	}
	if sum.calls != 0 {
		t.Fatal("summarizer called without a transcript")
	}
	if *task.Transcript != NoTranscript || *task.Title != "Video dQw4w9WgXcQ" || *task.Emoji != "📝" {
		t.Fatalf("fallback fields not written: %+v", task)
	}
	if *task.Summary != "Failed to generate summary for video dQw4w9WgXcQ." {
		t.Fatalf("summary = %q", *task.Summary)
	}
	if *task.Error != fetchErr.Error() {
		t.Fatalf("error = %q", *task.Error)
	}
}

func TestRunVideoJob_PanicBecomesFailed(t *testing.T) {
	s := setup(t, "t3")
	o := New(s, fakeTranscript{res: transcript.Result{Text: "x"}}, nil, &fakeSummarizer{panic: true}, logger.Nop())

	o.RunVideoJob(context.Background(), VideoJob{TaskID: "t3", SourceID: "dQw4w9WgXcQ"})

	task := get(t, s, "t3")
	assertTerminalShape(t, task)
	if task.Status != model.StatusFailed || *task.Error != "summarizer exploded" {
		t.Fatalf("unexpected row: status=%s error=%v", task.Status, task.Error)
	}
}

func TestRunVideoJob_DoesNotReenter(t *testing.T) {
	s := setup(t, "t4")
	sum := &fakeSummarizer{res: summarizer.Result{Emoji: "🎵", Summary: "first"}}
	o := New(s, fakeTranscript{res: transcript.Result{Text: "x"}}, nil, sum, logger.Nop())

	o.RunVideoJob(context.Background(), VideoJob{TaskID: "t4", SourceID: "dQw4w9WgXcQ"})
	sum.res.Summary = "second"
	o.RunVideoJob(context.Background(), VideoJob{TaskID: "t4", SourceID: "dQw4w9WgXcQ"})

	if sum.calls != 1 {
		t.Fatalf("summarizer called %d times", sum.calls)
	}
	if task := get(t, s, "t4"); *task.Summary != "first" {
		t.Fatalf("terminal task overwritten: %q", *task.Summary)
	}
}

func TestRunVideoJob_UnknownTask(t *testing.T) {
	s := store.NewTaskStore(dbtest.Open(t))
	sum := &fakeSummarizer{}
	o := New(s, fakeTranscript{res: transcript.Result{Text: "x"}}, nil, sum, logger.Nop())

	o.RunVideoJob(context.Background(), VideoJob{TaskID: "missing", SourceID: "dQw4w9WgXcQ"})

	if sum.calls != 0 {
		t.Fatal("job ran for a task that does not exist")
	}
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("row created: %v", err)
	}
}

func TestRunVoiceJob_Completed(t *testing.T) {
	s := setup(t, "v1")
	sum := &fakeSummarizer{res: summarizer.Result{Title: "Groceries", Emoji: "🛒", Summary: "Buy milk."}}
	o := New(s, nil, fakeSpeech{text: "remember to buy milk"}, sum, logger.Nop())

	o.RunVoiceJob(context.Background(), VoiceJob{TaskID: "v1", AudioURL: "https://cdn.example.com/a.m4a", OutputLanguage: "English", InputLanguage: "auto"})

	task := get(t, s, "v1")
	assertTerminalShape(t, task)
	if task.Status != model.StatusCompleted || *task.Title != "Groceries" || *task.Transcript != "remember to buy milk" {
		t.Fatalf("unexpected row: %+v", task)
	}
	if sum.kind != summarizer.KindVoice {
		t.Fatalf("summarized as %q", sum.kind)
	}
}

func TestRunVoiceJob_TitleFallback(t *testing.T) {
	s := setup(t, "v2")
	sum := &fakeSummarizer{res: summarizer.Result{Emoji: "📝", Summary: "raw"}}
	o := New(s, nil, fakeSpeech{text: "hello"}, sum, logger.Nop())

	o.RunVoiceJob(context.Background(), VoiceJob{TaskID: "v2"})

	if task := get(t, s, "v2"); *task.Title != "Video v2" {
		t.Fatalf("title = %q", *task.Title)
	}
}

func TestRunVoiceJob_TranscriptionFailure(t *testing.T) {
	s := setup(t, "v3")
	sum := &fakeSummarizer{}
	speechErr := fmt.Errorf("%w: 400 invalid file format", speech.ErrTranscription)
	o := New(s, nil, fakeSpeech{err: speechErr}, sum, logger.Nop())

	o.RunVoiceJob(context.Background(), VoiceJob{TaskID: "v3"})

	task := get(t, s, "v3")
	assertTerminalShape(t, task)
	if task.Status != model.StatusFailed || *task.Error != speechErr.Error() {
		t.Fatalf("unexpected row: status=%s error=%v", task.Status, task.Error)
	}
	if task.Transcript != nil || task.Summary != nil {
		t.Fatalf("failed voice task should not carry results: %+v", task)
	}
	if sum.calls != 0 {
		t.Fatal("summarizer called after transcription failure")
	}
}
