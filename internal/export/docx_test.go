package export

import (
	"archive/zip"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsago2003/gpt/internal/model"
)

func completedTask() *model.Task {
	return &model.Task{
		TaskID:     "t1",
		SourceLink: "https://youtu.be/dQw4w9WgXcQ",
		Status:     model.StatusCompleted,
		Title:      model.String("Never Gonna"),
		Emoji:      model.String("🎵"),
		Summary:    model.String("## Chorus\n- **Give** you up\n- let you down\n\nPlain closing line."),
		Transcript: model.String("never gonna give you up\nnever gonna let you down"),
	}
}

func TestWriteDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.docx")
	if err := WriteDocx(completedTask(), path); err != nil {
		t.Fatalf("WriteDocx: %v", err)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("output is not a docx archive: %v", err)
	}
	defer r.Close()

	var body string
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		body = string(b)
	}
	if body == "" {
		t.Fatal("word/document.xml missing")
	}
	for _, want := range []string{"Never Gonna", "Chorus", "Give", "Plain closing line.", "never gonna let you down"} {
		if !strings.Contains(body, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Contains(body, "**") || strings.Contains(body, "## ") {
		t.Error("markdown markers leaked into the document")
	}
}

func TestWriteDocx_NotReady(t *testing.T) {
	for _, status := range []model.TaskStatus{model.StatusInProgress, model.StatusProcessing, model.StatusFailed} {
		task := completedTask()
		task.Status = status
		if err := WriteDocx(task, filepath.Join(t.TempDir(), "x.docx")); !errors.Is(err, ErrNotReady) {
			t.Fatalf("status %s: want ErrNotReady, got %v", status, err)
		}
	}
}
