package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/agent"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/dispatch"
	"github.com/spf13/cobra"
)

// withApp builds an app from the loaded config, runs fn under a
// signal-aware context and tears the app down afterwards.
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := fn(ctx, a)
	return errors.Join(runErr, a.Close())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newChatCmd() *cobra.Command {
	var (
		agentType string
		useTools  bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message to an agent and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dispatch.ChatRequest{
				Message:   strings.Join(args, " "),
				AgentType: agentType,
				UseTools:  useTools,
			}
			return withApp(func(ctx context.Context, a *app) error {
				resp, err := a.dispatcher.Chat(ctx, req)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				if !resp.Success {
					return fmt.Errorf("%s agent: %s", resp.AgentType, resp.Error)
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
				if url, ok := resp.Metadata[agent.MetaGeneratedImageURL].(string); ok && url != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "\n[image=%s]\n", url)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&agentType, "type", dispatch.DefaultAgentType, "agent type (chat, search)")
	cmd.Flags().BoolVar(&useTools, "tools", false, "allow the agent to call its tools")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		maxResults int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Research a query on the web and print a summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dispatch.SearchRequest{Query: strings.Join(args, " "), MaxResults: maxResults}
			return withApp(func(ctx context.Context, a *app) error {
				resp := a.dispatcher.Search(ctx, req)
				if asJSON {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				if !resp.Success {
					return fmt.Errorf("search: %s", resp.Error)
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
				fmt.Fprintf(cmd.ErrOrStderr(), "\n[sources=%d]\n", resp.SourcesCount)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxResults, "max", dispatch.DefaultMaxResults, "maximum number of results to consider")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}

func newWallpaperCmd() *cobra.Command {
	var (
		style  string
		aspect string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "wallpaper <prompt>",
		Short: "Generate a phone wallpaper and print its image URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dispatch.WallpaperRequest{
				Prompt:      strings.Join(args, " "),
				AspectRatio: aspect,
				Style:       style,
			}
			return withApp(func(ctx context.Context, a *app) error {
				resp := a.dispatcher.GenerateWallpaper(ctx, req)
				if asJSON {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				if !resp.Success {
					return fmt.Errorf("wallpaper: %s", resp.Error)
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.ImageURL)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&style, "style", "", "style hint appended to the prompt")
	cmd.Flags().StringVar(&aspect, "aspect", "", "aspect ratio (default from config, 9:16)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}
