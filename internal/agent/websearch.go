package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/cache"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/version"
)

const (
	defaultBraveEndpoint = "https://api.search.brave.com/res/v1/web/search"
	maxSearchCount       = 20
)

// Source is one web search hit, reported in search metadata under "sources".
type Source struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age,omitempty"`
}

type braveSearchResponse struct {
	Web struct {
		Results []Source `json:"results"`
	} `json:"web"`
}

// WebSearchTool queries the Brave Search API. Results are cached per
// query and count.
type WebSearchTool struct {
	apiKey   string
	endpoint string
	defCount int
	client   *http.Client
	cache    cache.Cache
	ttl      time.Duration
	log      *logging.Logger
}

// WebSearchOptions configures a WebSearchTool.
type WebSearchOptions struct {
	APIKey       string
	Endpoint     string
	DefaultCount int
	Cache        cache.Cache
	CacheTTL     time.Duration
}

// NewWebSearchTool creates the web_search tool.
func NewWebSearchTool(opts WebSearchOptions, log *logging.Logger) *WebSearchTool {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = defaultBraveEndpoint
	}
	count := opts.DefaultCount
	if count <= 0 {
		count = 5
	}
	c := opts.Cache
	if c == nil {
		c = cache.Nop{}
	}
	return &WebSearchTool{
		apiKey:   opts.APIKey,
		endpoint: endpoint,
		defCount: count,
		client:   &http.Client{Timeout: 30 * time.Second},
		cache:    c,
		ttl:      opts.CacheTTL,
		log:      log.Sub("tool.web_search"),
	}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web using Brave Search. Returns result titles, URLs, and descriptions."
}

func (t *WebSearchTool) InputSchema() string {
	return `{"type":"object","properties":{"query":{"type":"string","description":"Search query"},"count":{"type":"integer","description":"Number of results (1-20)"}},"required":["query"]}`
}

// Execute runs a search. The result count is bounded by MaxResultsFrom(ctx).
func (t *WebSearchTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Query string `json:"query"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	args.Query = strings.TrimSpace(args.Query)
	if args.Query == "" {
		return "", fmt.Errorf("query is required")
	}

	limit := min(MaxResultsFrom(ctx, t.defCount), maxSearchCount)
	count := args.Count
	if count <= 0 || count > limit {
		count = limit
	}

	sources, err := t.search(ctx, args.Query, count)
	if err != nil {
		return "", err
	}
	appendResultMetadata(ctx, "sources", sources...)
	return formatSources(args.Query, sources), nil
}

func (t *WebSearchTool) search(ctx context.Context, query string, count int) ([]Source, error) {
	key := "search:" + strconv.Itoa(count) + ":" + strings.ToLower(query)
	if cached, ok, err := t.cache.Get(ctx, key); err != nil {
		t.log.Warn().Err(err).Msg("cache read failed")
	} else if ok {
		var sources []Source
		if err := json.Unmarshal([]byte(cached), &sources); err == nil {
			t.log.Debug().Str("query", query).Msg("cache hit")
			return sources, nil
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Subscription-Token", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed braveSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	sources := parsed.Web.Results
	if len(sources) > count {
		sources = sources[:count]
	}

	if data, err := json.Marshal(sources); err == nil {
		if err := t.cache.Set(ctx, key, string(data), t.ttl); err != nil {
			t.log.Warn().Err(err).Msg("cache write failed")
		}
	}
	return sources, nil
}

// Close releases idle HTTP connections.
func (t *WebSearchTool) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func formatSources(query string, sources []Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Web search results for: %s\n\n", query)
	if len(sources) == 0 {
		b.WriteString("No web results found.\n")
		return b.String()
	}
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Title)
		fmt.Fprintf(&b, "   URL: %s\n", s.URL)
		if s.Age != "" {
			fmt.Fprintf(&b, "   Age: %s\n", s.Age)
		}
		fmt.Fprintf(&b, "   %s\n\n", s.Description)
	}
	return b.String()
}
