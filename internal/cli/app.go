package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/agent"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/cache"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/dispatch"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/hooks"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/llm"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// loadConfig reads the config file and rejects it if validation fails.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// app holds the components shared by serve and the one-shot commands.
type app struct {
	cfg        config.Config
	log        *logging.Logger
	hooks      *hooks.Manager
	cache      cache.Cache
	agents     *agent.Registry
	dispatcher *dispatch.Dispatcher
}

// newApp wires the LLM providers, search cache, agent registry and
// dispatcher from cfg.
func newApp(cfg config.Config, log *logging.Logger) (*app, error) {
	providers := llm.NewRegistryFromConfig(cfg.Agents, log)
	if names := providers.List(); len(names) > 0 {
		log.Debug().Strs("providers", names).Msg("LLM providers available")
	} else {
		log.Warn().Msg("no LLM providers configured; agent operations will report failures")
	}

	c, err := cache.New(cfg.Cache, log)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	hookMgr := hooks.NewManager(log)
	agents := agent.NewRegistry(
		agent.NewConfig(cfg.Agents, providers, c, log),
		agent.WithOnCreate(func(v agent.Variant) {
			hookMgr.Emit(context.Background(), hooks.EventAgentCreated, map[string]any{
				"variant": v.String(),
			})
		}),
	)

	d := dispatch.New(agents,
		dispatch.NewFallbackResolverFromConfig(cfg.Wallpaper),
		log,
		dispatch.WithHooks(hookMgr),
		dispatch.WithDefaultAspectRatio(cfg.Wallpaper.DefaultAspectRatio),
	)

	return &app{
		cfg:        cfg,
		log:        log,
		hooks:      hookMgr,
		cache:      c,
		agents:     agents,
		dispatcher: d,
	}, nil
}

// Close releases agents, waits for pending hook handlers and closes the cache.
func (a *app) Close() error {
	err := a.dispatcher.Close()
	a.hooks.Wait()
	return errors.Join(err, a.cache.Close())
}
