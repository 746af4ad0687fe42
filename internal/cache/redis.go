package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/model"
)

const (
	TaskCacheExpiration = 30 * time.Minute // terminal task cache ttl
	ClaimExpiration     = 6 * time.Hour    // longest a job may hold its claim
	TaskKeyPrefix       = "task:"
	ClaimKeyPrefix      = "task_claim:"
)

// TaskCache keeps terminal tasks in redis and hands out one processing claim per task id.
type TaskCache struct {
	rdb    *redis.Client
	logger logger.Logger
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewTaskCache(rdb *redis.Client, log logger.Logger) *TaskCache {
	return &TaskCache{rdb: rdb, logger: log}
}

func (c *TaskCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Claim reports whether the caller is the first to take the processing claim for taskID.
func (c *TaskCache) Claim(ctx context.Context, taskID string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, ClaimKeyPrefix+taskID, "1", ClaimExpiration).Result()
	if err != nil {
		return false, fmt.Errorf("claim task %s: %w", taskID, err)
	}
	return ok, nil
}

func (c *TaskCache) CacheTask(ctx context.Context, task *model.Task) error {
	jsonData, err := json.Marshal(task)
	if err != nil {
		return err
	}

	if err := c.rdb.Set(ctx, TaskKeyPrefix+task.TaskID, jsonData, TaskCacheExpiration).Err(); err != nil {
		return fmt.Errorf("cache task %s: %w", task.TaskID, err)
	}
	c.logger.Debug(ctx, "Task %s cached", task.TaskID)
	return nil
}

// GetCachedTask returns (nil, nil) on a cache miss.
func (c *TaskCache) GetCachedTask(ctx context.Context, taskID string) (*model.Task, error) {
	val, err := c.rdb.Get(ctx, TaskKeyPrefix+taskID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached task %s: %w", taskID, err)
	}

	var task model.Task
	if err := json.Unmarshal([]byte(val), &task); err != nil {
		return nil, fmt.Errorf("decode cached task %s: %w", taskID, err)
	}
	return &task, nil
}

func (c *TaskCache) InvalidateTask(ctx context.Context, taskID string) error {
	if err := c.rdb.Del(ctx, TaskKeyPrefix+taskID).Err(); err != nil {
		return fmt.Errorf("invalidate task %s: %w", taskID, err)
	}
	return nil
}
