// ABOUTME: validate and connectors subcommands for inspecting a config without serving
// ABOUTME: Both build the full connector catalog so pattern errors surface before deploy

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/smartnetguru/mokai/internal/connector"
	"github.com/smartnetguru/mokai/internal/gateway"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and build the connector catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := gateway.BuildRegistry(cfg, io.Discard, nil)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d connections, %d applications\n",
				color.GreenString("✓"),
				path,
				len(reg.List(connector.Connections)),
				len(reg.List(connector.Applications)),
			)
			return nil
		},
	}
}

func newConnectorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connectors",
		Short: "Print the connector catalog in routing priority order",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := gateway.BuildRegistry(cfg, io.Discard, nil)
			if err != nil {
				return err
			}

			sections := []connector.Section{connector.Connections, connector.Applications}
			if name, _ := cmd.Flags().GetString("section"); name != "" {
				sec, err := connector.ParseSection(name)
				if err != nil {
					return err
				}
				sections = []connector.Section{sec}
			}

			for _, sec := range sections {
				printSection(cmd.OutOrStdout(), sec, reg.List(sec))
			}
			return nil
		},
	}
	cmd.Flags().StringP("section", "s", "", "only print connections or applications")
	return cmd
}

func printSection(w io.Writer, sec connector.Section, services []*connector.Service) {
	color.New(color.FgCyan, color.Bold).Fprintf(w, "%s (%d)\n", sec, len(services))
	if len(services) == 0 {
		fmt.Fprintln(w, color.HiBlackString("  (none)"))
		return
	}

	for _, svc := range services {
		marker := color.GreenString("●")
		if _, ok := svc.Processor(); !ok {
			marker = color.HiBlackString("○")
		}

		accs := make([]string, 0, len(svc.Acceptors))
		for _, a := range svc.Acceptors {
			accs = append(accs, fmt.Sprint(a))
		}
		rules := strings.Join(accs, ", ")
		if rules == "" {
			rules = color.HiBlackString("no acceptors")
		}

		fmt.Fprintf(w, "  %s %-4d %-20s %-10s %s\n", marker, svc.Priority, svc.ID, svc.Kind(), rules)
	}
	fmt.Fprintln(w)
}
