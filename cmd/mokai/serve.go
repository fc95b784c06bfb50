// ABOUTME: serve subcommand running the gateway HTTP API
// ABOUTME: Prints the startup banner and reloads the catalog when the config file changes

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/smartnetguru/mokai/internal/config"
	"github.com/smartnetguru/mokai/internal/gateway"
	"github.com/smartnetguru/mokai/internal/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	path, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	line := func(label, value string) {
		green.Print("    ▶ ")
		fmt.Printf("%-13s%s\n", label+":", value)
	}
	line("Config", path)
	line("HTTP", cfg.Server.HTTPAddr)
	line("Connections", fmt.Sprint(len(cfg.Connections)))
	line("Applications", fmt.Sprint(len(cfg.Applications)))
	if cfg.Database.Path != "" {
		line("Journal", cfg.Database.Path)
	}
	if cfg.Auth.JWTSecret == "" {
		green.Print("    ▶ ")
		yellow.Println("Auth:        disabled")
	}
	fmt.Println()

	logger.Info("starting mokai",
		"config", path,
		"http_addr", cfg.Server.HTTPAddr,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	if cfg.Reload.Enabled {
		watcher, err := startWatcher(path, cfg, gw, logger)
		if err != nil {
			_ = gw.Shutdown(ctx)
			return err
		}
		defer func() { _ = watcher.Stop() }()
	}

	return gw.Run(ctx)
}

func startWatcher(path string, cfg *config.Config, gw *gateway.Gateway, logger *slog.Logger) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(path, config.WatcherConfig{
		Debounce: cfg.Reload.Debounce,
		OnChange: gw.Reload,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("watching config: %w", err)
	}
	watcher.Start()
	return watcher, nil
}
