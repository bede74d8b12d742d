package agent

import (
	"errors"
	"fmt"
	"io"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry lazily creates and caches at most one agent per variant.
//
// Two concurrent first-time lookups for the same variant may both construct
// an agent; the last Store wins and the other instance is dropped. Agent
// construction is side-effect free, so the duplicate is harmless.
type Registry struct {
	cfg      Config
	factory  Factory
	slots    *xsync.MapOf[Variant, Agent]
	onCreate func(Variant)
	log      *logging.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithFactory replaces the agent constructor.
func WithFactory(f Factory) RegistryOption {
	return func(r *Registry) { r.factory = f }
}

// WithOnCreate registers a callback invoked after a new agent is cached.
func WithOnCreate(fn func(Variant)) RegistryOption {
	return func(r *Registry) { r.onCreate = fn }
}

// NewRegistry creates an empty registry over the shared agent config.
func NewRegistry(cfg Config, opts ...RegistryOption) *Registry {
	r := &Registry{
		cfg:     cfg,
		factory: New,
		slots:   xsync.NewMapOf[Variant, Agent](),
		log:     cfg.Log.Sub("agent.registry"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Config returns the shared agent configuration.
func (r *Registry) Config() Config { return r.cfg }

// Factory returns the agent constructor used by this registry.
func (r *Registry) Factory() Factory { return r.factory }

// GetOrCreate returns the cached agent for v, constructing it on first use.
// A construction failure is returned and nothing is cached.
func (r *Registry) GetOrCreate(v Variant) (Agent, error) {
	if a, ok := r.slots.Load(v); ok {
		return a, nil
	}

	a, err := r.factory(v, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s agent: %w", v, err)
	}
	r.slots.Store(v, a)
	r.log.Info().Str("variant", v.String()).Msg("agent created")

	if r.onCreate != nil {
		r.onCreate(v)
	}
	return a, nil
}

// Cached reports whether an agent for v has been created.
func (r *Registry) Cached(v Variant) bool {
	_, ok := r.slots.Load(v)
	return ok
}

// Len returns the number of cached agents.
func (r *Registry) Len() int {
	return r.slots.Size()
}

// Close releases cached agents that hold resources and empties the registry.
// Every closer is attempted; their errors are joined.
func (r *Registry) Close() error {
	var errs []error
	r.slots.Range(func(v Variant, a Agent) bool {
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				r.log.Warn().Str("variant", v.String()).Err(err).Msg("agent close failed")
				errs = append(errs, fmt.Errorf("close %s agent: %w", v, err))
			}
		}
		return true
	})
	r.slots.Clear()
	return errors.Join(errs...)
}
