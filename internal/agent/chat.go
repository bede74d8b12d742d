package agent

import (
	"context"
	"fmt"
)

const chatPersona = "You are a helpful, creative assistant. You answer questions clearly, " +
	"hold natural conversations, and help people design vivid phone wallpapers."

var chatGuidelines = []string{
	"Be concise unless the user asks for detail.",
	"When asked for an image, describe it precisely and use the generate_image tool if it is available.",
	"Never invent image URLs.",
}

// ChatAgent is the general conversational agent. When an image provider is
// configured it can also generate images.
type ChatAgent struct {
	run  *runner
	caps []string
}

// NewChatAgent creates a chat agent. It fails with ErrNoProvider when no
// configured LLM provider can serve it.
func NewChatAgent(cfg Config) (*ChatAgent, error) {
	if cfg.LLM == nil {
		return nil, ErrNoProvider
	}

	tools := NewToolRegistry()
	caps := []string{
		"general_conversation",
		"question_answering",
		"creative_writing",
		"wallpaper_prompt_design",
	}
	if gen, err := cfg.LLM.ImageGenerator(); err == nil {
		tools.Register(NewImageTool(gen, cfg.Log))
		caps = append(caps, "image_generation")
	}

	r := newRunner(Chat, cfg, chatPersona, chatGuidelines, tools)
	if !r.client.Available() {
		return nil, fmt.Errorf("%w for %q", ErrNoProvider, cfg.Provider)
	}
	return &ChatAgent{run: r, caps: caps}, nil
}

// Execute answers the prompt.
func (a *ChatAgent) Execute(ctx context.Context, prompt string, useTools bool) (ExecutionResult, error) {
	return a.run.run(ctx, prompt, useTools)
}

// Capabilities returns the chat agent's capability tags.
func (a *ChatAgent) Capabilities() []string {
	return append([]string(nil), a.caps...)
}

var _ Agent = (*ChatAgent)(nil)

