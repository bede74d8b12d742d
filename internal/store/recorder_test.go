package store

import (
	"context"
	"testing"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFromPayload(t *testing.T) {
	run := RunFromPayload(hooks.Payload{
		Event: hooks.EventAfterAgentRun,
		Data: map[string]any{
			"operation":   "wallpaper",
			"variant":     "chat",
			"success":     false,
			"error":       "rate limited",
			"duration_ms": int64(840),
		},
	})
	assert.Equal(t, "wallpaper", run.Operation)
	assert.Equal(t, "chat", run.Variant)
	assert.False(t, run.Success)
	assert.Equal(t, "rate limited", run.Error)
	assert.EqualValues(t, 840, run.DurationMs)

	run = RunFromPayload(hooks.Payload{Data: map[string]any{"duration_ms": float64(3), "success": "yes"}})
	assert.EqualValues(t, 3, run.DurationMs)
	assert.False(t, run.Success)
	assert.Empty(t, run.Operation)
}

func TestRunRecorder(t *testing.T) {
	ctx := context.Background()
	mgr := hooks.NewManager(silentLog())
	mem := NewMemory()
	mgr.On(hooks.EventAfterAgentRun, "store.record", RunRecorder(mem))

	mgr.EmitAsync(ctx, hooks.EventAfterAgentRun, map[string]any{
		"operation":   "search",
		"variant":     "search",
		"success":     true,
		"duration_ms": int64(25),
	})
	mgr.Wait()

	runs, err := mem.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "search", runs[0].Operation)
	assert.True(t, runs[0].Success)
	assert.EqualValues(t, 25, runs[0].DurationMs)
	assert.NotEmpty(t, runs[0].ID)
}
