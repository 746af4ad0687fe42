package model

import (
	"time"
)

type TaskStatus string

const (
	StatusInProgress TaskStatus = "in progress"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// Task is one summarization request. Result fields stay nil until the job that owns the task writes them.
type Task struct {
	TaskID          string     `gorm:"column:task_id;primaryKey;size:255" json:"task_id"`
	SourceID        string     `gorm:"column:video_id;size:255;not null" json:"video_id"`
	SourceLink      string     `gorm:"column:video_link;not null" json:"video_link"`
	Model           string     `gorm:"column:model;size:50;not null" json:"model"`
	SummaryLanguage string     `gorm:"column:summary_language;size:50;not null" json:"summary_language"`
	Title           *string    `gorm:"column:title" json:"title"`
	Transcript      *string    `gorm:"column:transcript" json:"transcript"`
	Summary         *string    `gorm:"column:summary" json:"summary"`
	Emoji           *string    `gorm:"column:emoji;size:32" json:"emoji"`
	Status          TaskStatus `gorm:"column:status;size:20;not null;index" json:"status"`
	LengthInSeconds *int       `gorm:"column:length_in_seconds" json:"length_in_seconds"`
	Error           *string    `gorm:"column:error" json:"error"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string { return "summaries" }

func (t *Task) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// TaskUpdateOptions lists the result fields of an update. A nil field is left untouched.
type TaskUpdateOptions struct {
	Title           *string `json:"title,omitempty"`
	Transcript      *string `json:"transcript,omitempty"`
	Summary         *string `json:"summary,omitempty"`
	Emoji           *string `json:"emoji,omitempty"`
	LengthInSeconds *int    `json:"length_in_seconds,omitempty"`
	Error           *string `json:"error,omitempty"`
}

// Columns maps the non-nil options to their column names.
func (o TaskUpdateOptions) Columns() map[string]interface{} {
	fields := map[string]interface{}{}
	if o.Title != nil {
		fields["title"] = *o.Title
	}
	if o.Transcript != nil {
		fields["transcript"] = *o.Transcript
	}
	if o.Summary != nil {
		fields["summary"] = *o.Summary
	}
	if o.Emoji != nil {
		fields["emoji"] = *o.Emoji
	}
	if o.LengthInSeconds != nil {
		fields["length_in_seconds"] = *o.LengthInSeconds
	}
	if o.Error != nil {
		fields["error"] = *o.Error
	}
	return fields
}

// String returns a pointer to s, for filling TaskUpdateOptions.
func String(s string) *string { return &s }
