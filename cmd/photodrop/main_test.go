package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestSeedListThumbs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PHOTODROP_STORAGE_DIR", dir)
	t.Setenv("PHOTODROP_LOG_LEVEL", "error")

	out := execute(t, "seed")
	assert.Contains(t, out, `"success": true`)

	lines := strings.Fields(execute(t, "list"))
	assert.ElementsMatch(t, []string{"dusk.png", "harbor.png", "meadow.png"}, lines)

	require.NoError(t, os.Remove(filepath.Join(dir, "thumbs", "dusk.thumb.jpg")))
	out = execute(t, "thumbs")
	assert.Contains(t, out, "rebuilt 1 thumbnail(s), 0 failed")
	assert.FileExists(t, filepath.Join(dir, "thumbs", "dusk.thumb.jpg"))

	assert.Contains(t, execute(t, "thumbs"), "all thumbnails present")
}

type countingClient struct{ ids map[string]bool }

func (c *countingClient) EnqueueContext(_ context.Context, _ *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	for _, o := range opts {
		if o.Type() != asynq.TaskIDOpt {
			continue
		}
		id := o.Value().(string)
		if c.ids[id] {
			return nil, asynq.ErrTaskIDConflict
		}
		c.ids[id] = true
	}
	return &asynq.TaskInfo{}, nil
}

func TestEnqueueMissing(t *testing.T) {
	client := &countingClient{ids: map[string]bool{}}
	var out bytes.Buffer
	require.NoError(t, enqueueMissing(context.Background(), &out, client, []string{"a.png", "b.png"}))
	assert.Contains(t, out.String(), "queued 2 rebuild task(s), 0 already pending")

	out.Reset()
	require.NoError(t, enqueueMissing(context.Background(), &out, client, []string{"a.png"}))
	assert.Contains(t, out.String(), "queued 0 rebuild task(s), 1 already pending")
}
