package dispatch

// ChatRequest asks an agent to answer a message.
type ChatRequest struct {
	Message   string         `json:"message"`
	AgentType string         `json:"agent_type"`
	Context   map[string]any `json:"context,omitempty"`
	UseTools  bool           `json:"use_tools"`
}

// ChatResponse is the outcome of a chat request. AgentType echoes the
// request token even when it did not name a known variant.
type ChatResponse struct {
	Success      bool           `json:"success"`
	Response     string         `json:"response"`
	AgentType    string         `json:"agent_type"`
	Capabilities []string       `json:"capabilities"`
	Metadata     map[string]any `json:"metadata"`
	Error        string         `json:"error,omitempty"`
}

// SearchRequest asks the search agent to research a query.
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// SearchResponse is the outcome of a search request.
type SearchResponse struct {
	Success       bool           `json:"success"`
	Query         string         `json:"query"`
	Summary       string         `json:"summary"`
	SearchResults map[string]any `json:"search_results,omitempty"`
	SourcesCount  int            `json:"sources_count"`
	Error         string         `json:"error,omitempty"`
}

// CapabilitiesResponse maps each agent to its capability tags.
type CapabilitiesResponse struct {
	Success      bool                `json:"success"`
	Capabilities map[string][]string `json:"capabilities,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// WallpaperRequest asks for a phone wallpaper.
type WallpaperRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	Style       string `json:"style,omitempty"`
}

// WallpaperResponse carries the wallpaper image. Prompt echoes the caller's
// original prompt.
type WallpaperResponse struct {
	Success     bool   `json:"success"`
	ImageURL    string `json:"image_url,omitempty"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	Error       string `json:"error,omitempty"`
}

// Defaults applied by transports when a request omits a field.
const (
	DefaultAgentType  = "chat"
	DefaultMaxResults = 5
)
