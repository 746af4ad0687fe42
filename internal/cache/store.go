package cache

import (
	"context"

	"github.com/tsago2003/gpt/internal/model"
	"github.com/tsago2003/gpt/internal/store"
)

// Store is a read-through cache in front of a store.Store.
// Only terminal tasks are cached: they never change again, so a hit can never show a status older than the row.
// Cache failures are logged and fall through to the inner store.
type Store struct {
	inner store.Store
	cache *TaskCache
}

var _ store.Store = (*Store)(nil)

func NewStore(inner store.Store, cache *TaskCache) *Store {
	return &Store{inner: inner, cache: cache}
}

func (s *Store) Create(ctx context.Context, params store.CreateParams) error {
	return s.inner.Create(ctx, params)
}

func (s *Store) Get(ctx context.Context, taskID string) (*model.Task, error) {
	task, err := s.cache.GetCachedTask(ctx, taskID)
	if err != nil {
		s.cache.logger.Warn(ctx, "Cache error: %v", err)
	} else if task != nil {
		return task, nil
	}

	task, err = s.inner.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.IsTerminal() {
		if err := s.cache.CacheTask(ctx, task); err != nil {
			s.cache.logger.Warn(ctx, "Failed to cache task after DB query: %v", err)
		}
	}
	return task, nil
}

func (s *Store) Update(ctx context.Context, taskID string, status model.TaskStatus, opts model.TaskUpdateOptions) error {
	if err := s.inner.Update(ctx, taskID, status, opts); err != nil {
		return err
	}
	if err := s.cache.InvalidateTask(ctx, taskID); err != nil {
		s.cache.logger.Warn(ctx, "Failed to invalidate task cache: %v", err)
	}
	return nil
}
