package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/llm"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/store"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var runs int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show wallcraft status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wallcraft %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:    %s\n", paths.Config)
			fmt.Fprintf(out, "Data:      %s\n", paths.Data)
			fmt.Fprintf(out, "Logs:      %s\n", paths.Logs)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:    not found (using defaults)")
			}
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:    error loading: %v\n", err)
				return nil
			}

			writeConfigSummary(out, cfg)

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
				return nil
			}

			if runs > 0 {
				return writeRecentRuns(cmd.Context(), out, cfg, runs)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 0, "also list the N most recent agent runs from the store")
	return cmd
}

func writeConfigSummary(out io.Writer, cfg config.Config) {
	g := cfg.Gateway
	origins := "*"
	if len(g.AllowedOrigins) > 0 {
		origins = strings.Join(g.AllowedOrigins, ",")
	}
	fmt.Fprintf(out, "Gateway:   port=%d bind=%s origins=%s writeTimeout=%ds\n", g.Port, g.Bind, origins, g.WriteTimeout)

	providers := llm.NewRegistryFromConfig(cfg.Agents, log).List()
	if len(providers) > 0 {
		fmt.Fprintf(out, "LLM:       primary=%s available=%s\n", cfg.Agents.Provider, strings.Join(providers, ", "))
	} else {
		fmt.Fprintln(out, "LLM:       (none configured)")
	}
	fmt.Fprintf(out, "Image:     %s\n", orNone(cfg.Agents.Image.Provider))
	fmt.Fprintf(out, "Search:    %s\n", orNone(cfg.Agents.Search.Provider))

	storeDesc := cfg.Store.Driver
	switch storeDesc {
	case "", "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = paths.DatabasePath()
		}
		storeDesc = "sqlite " + path
	case "mongo":
		storeDesc = "mongo db=" + cfg.Store.DBName
	}
	fmt.Fprintf(out, "Store:     %s\n", storeDesc)

	cacheDesc := orNone(cfg.Cache.Driver)
	if cfg.Cache.Driver == "redis" {
		cacheDesc += " " + cfg.Cache.RedisAddr
	}
	fmt.Fprintf(out, "Cache:     %s\n", cacheDesc)
	fmt.Fprintf(out, "Wallpaper: aspect=%s fallbacks=%d\n", cfg.Wallpaper.DefaultAspectRatio, len(cfg.Wallpaper.Fallbacks))
}

func writeRecentRuns(ctx context.Context, out io.Writer, cfg config.Config, limit int) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(ctx, cfg.Store, paths.DatabasePath(), log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	list, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nRecent runs (%d):\n", len(list))
	for _, r := range list {
		result := "ok"
		if !r.Success {
			result = "failed: " + r.Error
		}
		fmt.Fprintf(out, "  %s  %-9s %-6s %6dms  %s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Operation, r.Variant, r.DurationMs, result)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
