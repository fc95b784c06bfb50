// ABOUTME: Entry point for the mokai routing gateway CLI
// ABOUTME: Cobra root command with serve, route, validate, connectors, and token subcommands

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/smartnetguru/mokai/internal/config"
)

// Version is set at build time.
var version = "dev"

const banner = `
                 _         _
  _ __ ___   ___ | | ____ _(_)
 | '_ ' _ \ / _ \| |/ / _' | |
 | | | | | | (_) |   < (_| | |
 |_| |_| |_|\___/|_|\_\__,_|_|
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mokai",
		Short:         "Message routing gateway",
		Long:          "mokai routes messages between connections and applications using prioritized connector catalogs and acceptor rules.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "path to config file (default: $MOKAI_CONFIG or ~/.config/mokai/gateway.yaml)")

	root.AddCommand(
		newServeCmd(),
		newRouteCmd(),
		newValidateCmd(),
		newConnectorsCmd(),
		newTokenCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

// configPath resolves the --config flag, falling back to config.DefaultPath.
func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}

// loadConfig loads the config named by the --config flag.
func loadConfig(cmd *cobra.Command) (string, *config.Config, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return path, nil, fmt.Errorf("loading config: %w", err)
	}
	return path, cfg, nil
}
