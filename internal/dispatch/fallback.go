package dispatch

import (
	"strconv"
	"strings"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/cespare/xxhash/v2"
)

// DefaultRandomTemplate is the image URL used when no keyword matches. The
// %d is replaced with a number in [0, 1000) derived from the prompt.
const DefaultRandomTemplate = "https://picsum.photos/1080/1920?random=%d"

// DefaultFallbacks is the curated keyword table, scanned in order.
var DefaultFallbacks = []config.FallbackEntry{
	{Keyword: "mountain", ImageURL: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=1080&h=1920&fit=crop&crop=center"},
	{Keyword: "ocean", ImageURL: "https://images.unsplash.com/photo-1439066615861-d1af74d74000?w=1080&h=1920&fit=crop&crop=center"},
	{Keyword: "forest", ImageURL: "https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=1080&h=1920&fit=crop&crop=center"},
	{Keyword: "city", ImageURL: "https://images.unsplash.com/photo-1477959858617-67f85cf4f1df?w=1080&h=1920&fit=crop&crop=center"},
	{Keyword: "space", ImageURL: "https://images.unsplash.com/photo-1446776653964-20c1d3a81b06?w=1080&h=1920&fit=crop&crop=center"},
	{Keyword: "abstract", ImageURL: "https://images.unsplash.com/photo-1557682250-33bd709cbe85?w=1080&h=1920&fit=crop&crop=center"},
	{Keyword: "sunset", ImageURL: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=1080&h=1920&fit=crop&crop=center"},
	{Keyword: "flowers", ImageURL: "https://images.unsplash.com/photo-1490750967868-88aa4486c946?w=1080&h=1920&fit=crop&crop=center"},
}

// FallbackResolver maps a wallpaper prompt to a curated or pseudo-random
// image URL. It is immutable and safe for concurrent use.
type FallbackResolver struct {
	table    []config.FallbackEntry
	template string
}

// NewFallbackResolver builds a resolver. An empty table or template selects
// the defaults.
func NewFallbackResolver(table []config.FallbackEntry, template string) *FallbackResolver {
	if len(table) == 0 {
		table = DefaultFallbacks
	}
	if template == "" {
		template = DefaultRandomTemplate
	}
	entries := make([]config.FallbackEntry, 0, len(table))
	for _, e := range table {
		if e.Keyword == "" {
			continue
		}
		entries = append(entries, config.FallbackEntry{Keyword: strings.ToLower(e.Keyword), ImageURL: e.ImageURL})
	}
	return &FallbackResolver{table: entries, template: template}
}

// NewFallbackResolverFromConfig builds a resolver from the wallpaper config.
func NewFallbackResolverFromConfig(cfg config.WallpaperConfig) *FallbackResolver {
	return NewFallbackResolver(cfg.Fallbacks, cfg.RandomTemplate)
}

// Resolve returns the image for the first table keyword contained in prompt,
// ignoring case. Table order decides ties. Without a match it returns the
// random template with its first %d replaced by a stable hash of prompt
// modulo 1000. Any other % in the template is copied through unchanged.
func (r *FallbackResolver) Resolve(prompt string) string {
	if e, ok := r.Match(prompt); ok {
		return e.ImageURL
	}
	return strings.Replace(r.template, "%d", strconv.FormatUint(HashSuffix(prompt), 10), 1)
}

// Match returns the first table entry whose keyword occurs in prompt.
func (r *FallbackResolver) Match(prompt string) (config.FallbackEntry, bool) {
	lower := strings.ToLower(prompt)
	for _, e := range r.table {
		if strings.Contains(lower, e.Keyword) {
			return e, true
		}
	}
	return config.FallbackEntry{}, false
}

// Table returns a copy of the keyword table in scan order.
func (r *FallbackResolver) Table() []config.FallbackEntry {
	return append([]config.FallbackEntry(nil), r.table...)
}

// HashSuffix is the xxhash64 of prompt modulo 1000.
func HashSuffix(prompt string) uint64 {
	return xxhash.Sum64String(prompt) % 1000
}
