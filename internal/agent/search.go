package agent

import (
	"context"
	"fmt"
	"time"
)

const searchPersona = "You are a research assistant. You find current information on the web " +
	"and summarize it accurately."

var searchGuidelines = []string{
	"Use the web_search tool for anything that depends on recent or factual information.",
	"Summarize the key findings in a few short paragraphs.",
	"Cite the URLs you relied on.",
}

// SearchAgent answers prompts by searching the web and summarizing the hits.
// Without a search API key it falls back to answering from the model alone.
type SearchAgent struct {
	run    *runner
	search *WebSearchTool
	caps   []string
}

// NewSearchAgent creates a search agent.
func NewSearchAgent(cfg Config) (*SearchAgent, error) {
	if cfg.LLM == nil {
		return nil, ErrNoProvider
	}

	tools := NewToolRegistry()
	var ws *WebSearchTool
	if cfg.Search.Provider == "brave" && cfg.Search.APIKey != "" {
		ws = NewWebSearchTool(WebSearchOptions{
			APIKey:       cfg.Search.APIKey,
			Endpoint:     cfg.Search.Endpoint,
			DefaultCount: cfg.Search.MaxResults,
			Cache:        cfg.Cache,
			CacheTTL:     time.Duration(cfg.Search.CacheTTL) * time.Second,
		}, cfg.Log)
		tools.Register(ws)
	}

	r := newRunner(Search, cfg, searchPersona, searchGuidelines, tools)
	if !r.client.Available() {
		return nil, fmt.Errorf("%w for %q", ErrNoProvider, cfg.Provider)
	}

	caps := []string{"web_search", "information_retrieval", "research_summarization", "source_citation"}
	if ws == nil {
		caps = []string{"information_retrieval", "research_summarization"}
	}
	return &SearchAgent{run: r, search: ws, caps: caps}, nil
}

// Execute searches and summarizes. Hits are reported in metadata under
// "sources" and counted in "tools_used".
func (a *SearchAgent) Execute(ctx context.Context, prompt string, useTools bool) (ExecutionResult, error) {
	return a.run.run(ctx, prompt, useTools)
}

// Capabilities returns the search agent's capability tags.
func (a *SearchAgent) Capabilities() []string {
	return append([]string(nil), a.caps...)
}

// Close releases the search tool's HTTP connections.
func (a *SearchAgent) Close() error {
	if a.search == nil {
		return nil
	}
	return a.search.Close()
}

var _ Agent = (*SearchAgent)(nil)
