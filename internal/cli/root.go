package cli

import (
	"path/filepath"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallcraft",
		Short: "Wallcraft AI agent backend",
		Long:  "Wallcraft serves chat, web search and phone wallpaper generation backed by LLM agents.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			// A .env in the working directory wins over the one in the base dir.
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			if err := config.LoadDotEnv(filepath.Join(paths.Base, ".env")); err != nil {
				return err
			}

			log = logging.New(nil, levelOr("info"))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.wallcraft/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newWallpaperCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// levelOr returns the --log-level flag, or fallback when unset.
func levelOr(fallback string) string {
	if logLevel != "" {
		return logLevel
	}
	return fallback
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
