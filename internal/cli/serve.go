package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/gateway"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/hooks"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating state dirs: %w", err)
			}

			srvLog, closeLog, err := logging.Open(logging.Options{
				Level: levelOr(cfg.Logging.Level),
				Style: cfg.Logging.ConsoleStyle,
				File:  cfg.Logging.File,
			})
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer closeLog()

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := store.New(ctx, cfg.Store, paths.DatabasePath(), srvLog)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}

			a, err := newApp(cfg, srvLog)
			if err != nil {
				st.Close()
				return err
			}
			a.hooks.On(hooks.EventAfterAgentRun, "store.record", store.RunRecorder(st))

			srv := gateway.New(cfg.Gateway, a.dispatcher, srvLog,
				gateway.WithStore(st),
				gateway.WithHooks(a.hooks),
			)

			driver := cfg.Store.Driver
			if driver == "" {
				driver = "sqlite"
			}
			srvLog.Info().
				Str("store", driver).
				Str("cache", cfg.Cache.Driver).
				Str("provider", cfg.Agents.Provider).
				Msg("wallcraft starting")

			runErr := srv.Start(ctx)

			// Runs recorded by pending hooks must land before the store closes.
			closeErr := errors.Join(a.Close(), st.Close())
			if closeErr != nil {
				srvLog.Warn().Err(closeErr).Msg("shutdown cleanup failed")
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
