package agent

import (
	"context"
	"sort"
	"sync"
)

// Tool is a capability the agent can invoke while answering a prompt.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// InputSchema returns the JSON Schema for the tool's input.
	InputSchema() string

	// Execute runs the tool with the given JSON input and returns its output.
	Execute(ctx context.Context, input string) (string, error)
}

// ToolRegistry holds available tools.
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool.
func (r *ToolRegistry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int { return len(r.tools) }

// Definitions returns LLM-ready tool definitions sorted by name.
func (r *ToolRegistry) Definitions() []ToolDef {
	defs := make([]ToolDef, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// ToolDef is a serializable tool definition for passing to the LLM.
type ToolDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema string `json:"inputSchema"`
}

type ctxKey int

const (
	runMetadataKey ctxKey = iota
	maxResultsKey
)

// runMetadata collects values tools contribute to an execution's metadata.
type runMetadata struct {
	mu     sync.Mutex
	values map[string]any
}

func withRunMetadata(ctx context.Context) (context.Context, *runMetadata) {
	rm := &runMetadata{values: make(map[string]any)}
	return context.WithValue(ctx, runMetadataKey, rm), rm
}

func (rm *runMetadata) snapshot() map[string]any {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make(map[string]any, len(rm.values))
	for k, v := range rm.values {
		out[k] = v
	}
	return out
}

// SetResultMetadata records a metadata value on the execution running in ctx.
// It is a no-op outside an agent execution.
func SetResultMetadata(ctx context.Context, key string, value any) {
	rm, ok := ctx.Value(runMetadataKey).(*runMetadata)
	if !ok {
		return
	}
	rm.mu.Lock()
	rm.values[key] = value
	rm.mu.Unlock()
}

// appendResultMetadata appends to a slice-valued metadata entry.
func appendResultMetadata[T any](ctx context.Context, key string, items ...T) {
	rm, ok := ctx.Value(runMetadataKey).(*runMetadata)
	if !ok {
		return
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	existing, _ := rm.values[key].([]T)
	rm.values[key] = append(existing, items...)
}

// WithMaxResults bounds how many results search tools return for requests
// made with ctx.
func WithMaxResults(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, maxResultsKey, n)
}

// MaxResultsFrom returns the bound set by WithMaxResults, or def.
func MaxResultsFrom(ctx context.Context, def int) int {
	if n, ok := ctx.Value(maxResultsKey).(int); ok && n > 0 {
		return n
	}
	return def
}
