// Package queue defines the background tasks PhotoDrop hands to asynq.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// RebuildThumbnailTask regenerates the thumbnail for one original.
	RebuildThumbnailTask = "thumbnail:rebuild"

	rebuildMaxRetry = 3
)

// RebuildPayload names the original whose thumbnail is missing.
type RebuildPayload struct {
	Original string `json:"original"`
}

// Enqueuer is the part of *asynq.Client used here.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewRebuildTask builds the task for original. The task id is the original's
// name so a rebuild already waiting in the queue is not added twice.
func NewRebuildTask(original string) (*asynq.Task, []asynq.Option, error) {
	data, err := json.Marshal(RebuildPayload{Original: original})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal payload: %w", err)
	}
	opts := []asynq.Option{
		asynq.TaskID(RebuildThumbnailTask + ":" + original),
		asynq.MaxRetry(rebuildMaxRetry),
	}
	return asynq.NewTask(RebuildThumbnailTask, data), opts, nil
}

// EnqueueRebuild schedules a thumbnail rebuild. It reports false when an
// identical task was already queued.
func EnqueueRebuild(ctx context.Context, client Enqueuer, original string) (bool, error) {
	task, opts, err := NewRebuildTask(original)
	if err != nil {
		return false, err
	}
	if _, err := client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return false, nil
		}
		return false, fmt.Errorf("enqueue rebuild %s: %w", original, err)
	}
	return true, nil
}

// DecodeRebuild reads the payload of a rebuild task.
func DecodeRebuild(task *asynq.Task) (RebuildPayload, error) {
	var payload RebuildPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}
	if payload.Original == "" {
		return payload, errors.New("decode payload: missing original")
	}
	return payload, nil
}
