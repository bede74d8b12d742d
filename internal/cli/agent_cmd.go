package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Inspect agents",
	}

	cmd.AddCommand(newAgentCapabilitiesCmd())
	return cmd
}

func newAgentCapabilitiesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "List each agent and its capability tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				resp := a.dispatcher.Capabilities(ctx)
				if asJSON {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				if !resp.Success {
					return fmt.Errorf("capabilities: %s", resp.Error)
				}

				names := make([]string, 0, len(resp.Capabilities))
				for name := range resp.Capabilities {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %s\n", name, strings.Join(resp.Capabilities[name], ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}
