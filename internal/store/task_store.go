package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsago2003/gpt/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound          = errors.New("task not found")
	ErrDuplicateKey      = errors.New("task id already exists")
	ErrInvalidTransition = errors.New("invalid task status transition")
)

// Store persists tasks. Implementations must be safe for concurrent use.
type Store interface {
	Create(ctx context.Context, params CreateParams) error
	Get(ctx context.Context, taskID string) (*model.Task, error)
	// Update moves the task to status and writes the non-nil options in one statement.
	Update(ctx context.Context, taskID string, status model.TaskStatus, opts model.TaskUpdateOptions) error
}

type CreateParams struct {
	TaskID          string
	SourceID        string
	SourceLink      string
	Model           string
	SummaryLanguage string
}

type TaskStore struct {
	db *gorm.DB
}

var _ Store = (*TaskStore)(nil)

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, params CreateParams) error {
	if params.TaskID == "" {
		return fmt.Errorf("task_id required")
	}

	task := model.Task{
		TaskID:          params.TaskID,
		SourceID:        params.SourceID,
		SourceLink:      params.SourceLink,
		Model:           params.Model,
		SummaryLanguage: params.SummaryLanguage,
		Status:          model.StatusInProgress,
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&task)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create task %s: %w", params.TaskID, ErrDuplicateKey)
		}
		return fmt.Errorf("create task %s: %w", params.TaskID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("create task %s: %w", params.TaskID, ErrDuplicateKey)
	}
	return nil
}

func (s *TaskStore) Get(ctx context.Context, taskID string) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).First(&task, "task_id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get task %s: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", taskID, err)
	}
	return &task, nil
}

func (s *TaskStore) Update(ctx context.Context, taskID string, status model.TaskStatus, opts model.TaskUpdateOptions) error {
	if !status.IsKnown() {
		return fmt.Errorf("update task %s to unknown status %q: %w", taskID, status, ErrInvalidTransition)
	}

	var from []string
	for _, st := range model.Predecessors(status) {
		from = append(from, string(st))
	}
	if len(from) == 0 {
		return fmt.Errorf("update task %s to %q: %w", taskID, status, ErrInvalidTransition)
	}

	updateFields := opts.Columns()
	updateFields["status"] = string(status)

	res := s.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND status IN ?", taskID, from).
		Updates(updateFields)
	if res.Error != nil {
		return fmt.Errorf("update task %s: %w", taskID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the row is missing or it is not in a predecessor state.
	current, err := s.Get(ctx, taskID)
	if err != nil {
		return fmt.Errorf("update task %s: %w", taskID, err)
	}
	return fmt.Errorf("update task %s from %q to %q: %w", taskID, current.Status, status, ErrInvalidTransition)
}
