// Package dispatch routes chat, search, and wallpaper requests to agents and
// normalizes their results into response envelopes.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/agent"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/hooks"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// ErrAgentUnavailable is returned by Chat when no chat agent could be built.
// Every other failure is reported inside the response envelope.
var ErrAgentUnavailable = errors.New("failed to initialize agent")

const (
	searchPromptFormat = "Search for information about: %s. Provide a comprehensive summary with key findings."

	wallpaperQualifiers   = ", high quality, detailed, vibrant colors, perfect for phone wallpaper, 4K resolution"
	wallpaperPromptFormat = "Generate a high-quality phone wallpaper with the following description: %s. " +
		"The image should be optimized for mobile screens with vibrant colors and sharp details."
)

// Capability map keys.
const (
	SearchAgentKey = "search_agent"
	ChatAgentKey   = "chat_agent"
)

// Dispatcher is the boundary between transports and agents. It holds no
// mutable state of its own.
type Dispatcher struct {
	agents        *agent.Registry
	fallback      *FallbackResolver
	hooks         *hooks.Manager
	defaultAspect string
	log           *logging.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHooks emits run lifecycle events on m.
func WithHooks(m *hooks.Manager) Option {
	return func(d *Dispatcher) { d.hooks = m }
}

// WithDefaultAspectRatio sets the aspect ratio echoed when a wallpaper
// request leaves it empty.
func WithDefaultAspectRatio(ratio string) Option {
	return func(d *Dispatcher) {
		if ratio != "" {
			d.defaultAspect = ratio
		}
	}
}

// New creates a dispatcher over an agent registry.
func New(agents *agent.Registry, fallback *FallbackResolver, log *logging.Logger, opts ...Option) *Dispatcher {
	if fallback == nil {
		fallback = NewFallbackResolver(nil, "")
	}
	d := &Dispatcher{
		agents:        agents,
		fallback:      fallback,
		defaultAspect: config.DefaultAspectRatio,
		log:           log.Sub("dispatch"),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Chat routes a message to the variant named by req.AgentType. Only a failure
// to construct the chat agent is returned as an error (ErrAgentUnavailable);
// everything else lands in the response.
func (d *Dispatcher) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	start := time.Now()
	v := agent.VariantFromToken(req.AgentType)
	fail := func(err error) ChatResponse {
		d.finish(ctx, "chat", v, start, false, err.Error())
		return ChatResponse{
			Success:      false,
			AgentType:    req.AgentType,
			Capabilities: []string{},
			Metadata:     map[string]any{},
			Error:        err.Error(),
		}
	}

	a, err := d.agent(v)
	if err != nil {
		if v == agent.Chat {
			d.finish(ctx, "chat", v, start, false, err.Error())
			return ChatResponse{}, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
		}
		return fail(err), nil
	}

	d.begin(ctx, "chat", v)
	res, err := d.execute(ctx, a, req.Message, req.UseTools)
	if err != nil {
		return fail(err), nil
	}

	resp := ChatResponse{
		Success:      res.Success,
		AgentType:    req.AgentType,
		Capabilities: []string{},
		Metadata:     nonNil(res.Metadata),
		Error:        res.Error,
	}
	if res.Success {
		resp.Response = res.Content
		resp.Capabilities = a.Capabilities()
	}
	d.finish(ctx, "chat", v, start, res.Success, res.Error)
	return resp, nil
}

// Search researches req.Query with the search agent, tools always on.
func (d *Dispatcher) Search(ctx context.Context, req SearchRequest) SearchResponse {
	start := time.Now()
	fail := func(msg string) SearchResponse {
		d.finish(ctx, "search", agent.Search, start, false, msg)
		return SearchResponse{Success: false, Query: req.Query, Error: msg}
	}

	a, err := d.agent(agent.Search)
	if err != nil {
		return fail(err.Error())
	}

	d.begin(ctx, "search", agent.Search)
	ctx = agent.WithMaxResults(ctx, req.MaxResults)
	res, err := d.execute(ctx, a, fmt.Sprintf(searchPromptFormat, req.Query), true)
	if err != nil {
		return fail(err.Error())
	}
	if !res.Success {
		return fail(res.Error)
	}

	meta := nonNil(res.Metadata)
	d.finish(ctx, "search", agent.Search, start, true, "")
	return SearchResponse{
		Success:       true,
		Query:         req.Query,
		Summary:       res.Content,
		SearchResults: meta,
		SourcesCount:  intValue(meta["tools_used"]),
	}
}

// Capabilities builds throwaway agents of every variant, bypassing the
// registry, and reports their capability tags. Agents can only be built when
// the configured LLM provider is registered, so without one the response has
// Success false and the construction error.
func (d *Dispatcher) Capabilities(ctx context.Context) CapabilitiesResponse {
	caps := make(map[string][]string, len(agent.Variants))
	for _, v := range agent.Variants {
		var tags []string
		err := d.guard(func() error {
			a, err := d.agents.Factory()(v, d.agents.Config())
			if err != nil {
				return err
			}
			tags = a.Capabilities()
			if c, ok := a.(io.Closer); ok {
				_ = c.Close()
			}
			return nil
		})
		if err != nil {
			d.log.Error().Err(err).Str("variant", v.String()).Msg("capabilities query failed")
			return CapabilitiesResponse{Success: false, Error: err.Error()}
		}
		caps[capabilityKey(v)] = tags
	}
	return CapabilitiesResponse{Success: true, Capabilities: caps}
}

// GenerateWallpaper asks the chat agent for an image. When the agent fails or
// returns no image, a fallback image for the original prompt is used and the
// response still succeeds.
func (d *Dispatcher) GenerateWallpaper(ctx context.Context, req WallpaperRequest) WallpaperResponse {
	start := time.Now()
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = d.defaultAspect
	}
	fail := func(err error) WallpaperResponse {
		d.finish(ctx, "wallpaper", agent.Chat, start, false, err.Error())
		return WallpaperResponse{Success: false, Prompt: req.Prompt, AspectRatio: aspect, Error: err.Error()}
	}

	a, err := d.agent(agent.Chat)
	if err != nil {
		return fail(err)
	}

	d.begin(ctx, "wallpaper", agent.Chat)
	res, err := d.execute(ctx, a, fmt.Sprintf(wallpaperPromptFormat, EnhancePrompt(req.Prompt, req.Style)), true)
	if err != nil {
		return fail(err)
	}

	url, _ := res.Metadata[agent.MetaGeneratedImageURL].(string)
	if !res.Success || url == "" {
		reason := "no image generated"
		if !res.Success {
			reason = res.Error
		}
		url = d.fallback.Resolve(req.Prompt)
		d.log.Info().Str("reason", reason).Str("imageUrl", url).Msg("using fallback wallpaper")
		d.emit(ctx, hooks.EventWallpaperFallback, map[string]any{
			"prompt":    req.Prompt,
			"image_url": url,
			"reason":    reason,
		})
	}

	d.finish(ctx, "wallpaper", agent.Chat, start, true, "")
	return WallpaperResponse{Success: true, ImageURL: url, Prompt: req.Prompt, AspectRatio: aspect}
}

// Close releases the cached agents.
func (d *Dispatcher) Close() error {
	return d.agents.Close()
}

// EnhancePrompt appends the optional style and fixed quality qualifiers.
func EnhancePrompt(prompt, style string) string {
	if style != "" {
		prompt += ", " + style + " style"
	}
	return prompt + wallpaperQualifiers
}

func (d *Dispatcher) agent(v agent.Variant) (a agent.Agent, err error) {
	err = d.guard(func() error {
		a, err = d.agents.GetOrCreate(v)
		return err
	})
	return a, err
}

func (d *Dispatcher) execute(ctx context.Context, a agent.Agent, prompt string, useTools bool) (res agent.ExecutionResult, err error) {
	err = d.guard(func() error {
		res, err = a.Execute(ctx, prompt, useTools)
		return err
	})
	return res, err
}

// guard runs fn, converting a panic into an error carrying its message.
func (d *Dispatcher) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("recovered panic in agent call")
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn()
}

func (d *Dispatcher) begin(ctx context.Context, op string, v agent.Variant) {
	if d.hooks == nil {
		return
	}
	d.hooks.Emit(ctx, hooks.EventBeforeAgentRun, map[string]any{
		"operation": op,
		"variant":   v.String(),
	})
}

func (d *Dispatcher) finish(ctx context.Context, op string, v agent.Variant, start time.Time, success bool, errMsg string) {
	dur := time.Since(start)
	evt := d.log.Info()
	if !success {
		evt = d.log.Warn().Str("err", errMsg)
	}
	evt.Str("operation", op).
		Str("variant", v.String()).
		Bool("success", success).
		Dur("duration", dur).
		Msg("dispatch complete")

	d.emit(ctx, hooks.EventAfterAgentRun, map[string]any{
		"operation":   op,
		"variant":     v.String(),
		"success":     success,
		"error":       errMsg,
		"duration_ms": dur.Milliseconds(),
	})
}

func (d *Dispatcher) emit(ctx context.Context, event string, data map[string]any) {
	if d.hooks != nil {
		d.hooks.EmitAsync(ctx, event, data)
	}
}

func capabilityKey(v agent.Variant) string {
	if v == agent.Search {
		return SearchAgentKey
	}
	return ChatAgentKey
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// intValue reads a numeric metadata value, 0 when absent or not a number.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
