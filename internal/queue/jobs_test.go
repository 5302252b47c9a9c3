package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	tasks []*asynq.Task
	seen  map[string]bool
	err   error
}

func (c *recordingClient) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	var id string
	for _, o := range opts {
		if o.Type() == asynq.TaskIDOpt {
			id = o.Value().(string)
		}
	}
	if c.seen[id] {
		return nil, asynq.ErrTaskIDConflict
	}
	c.seen[id] = true
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{ID: id}, nil
}

func TestEnqueueRebuildCollapsesDuplicates(t *testing.T) {
	client := &recordingClient{seen: map[string]bool{}}

	queued, err := EnqueueRebuild(context.Background(), client, "a.png")
	require.NoError(t, err)
	assert.True(t, queued)

	queued, err = EnqueueRebuild(context.Background(), client, "a.png")
	require.NoError(t, err)
	assert.False(t, queued)

	require.Len(t, client.tasks, 1)
	assert.Equal(t, RebuildThumbnailTask, client.tasks[0].Type())
	payload, err := DecodeRebuild(client.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, "a.png", payload.Original)
}

func TestEnqueueRebuildError(t *testing.T) {
	client := &recordingClient{err: errors.New("redis down")}
	_, err := EnqueueRebuild(context.Background(), client, "a.png")
	assert.ErrorContains(t, err, "redis down")
}

func TestNewRebuildTaskOptions(t *testing.T) {
	_, opts, err := NewRebuildTask("b.jpg")
	require.NoError(t, err)
	values := map[asynq.OptionType]interface{}{}
	for _, o := range opts {
		values[o.Type()] = o.Value()
	}
	assert.Equal(t, "thumbnail:rebuild:b.jpg", values[asynq.TaskIDOpt])
	assert.Equal(t, rebuildMaxRetry, values[asynq.MaxRetryOpt])
}

func TestDecodeRebuildRejectsEmpty(t *testing.T) {
	_, err := DecodeRebuild(asynq.NewTask(RebuildThumbnailTask, []byte(`{}`)))
	assert.Error(t, err)
	_, err = DecodeRebuild(asynq.NewTask(RebuildThumbnailTask, []byte(`not json`)))
	assert.Error(t, err)
}
