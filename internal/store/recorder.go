package store

import (
	"context"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/hooks"
)

// RunFromPayload builds an AgentRun from an after_agent_run hook payload.
// Missing or mistyped fields are left at their zero value.
func RunFromPayload(p hooks.Payload) AgentRun {
	run := AgentRun{}
	run.Operation, _ = p.Data["operation"].(string)
	run.Variant, _ = p.Data["variant"].(string)
	run.Success, _ = p.Data["success"].(bool)
	run.Error, _ = p.Data["error"].(string)
	switch d := p.Data["duration_ms"].(type) {
	case int64:
		run.DurationMs = d
	case int:
		run.DurationMs = int64(d)
	case float64:
		run.DurationMs = int64(d)
	}
	return run
}

// RunRecorder returns a hook handler that appends every completed agent run
// to st.
func RunRecorder(st Store) hooks.Handler {
	return func(ctx context.Context, p hooks.Payload) error {
		_, err := st.RecordRun(ctx, RunFromPayload(p))
		return err
	}
}
