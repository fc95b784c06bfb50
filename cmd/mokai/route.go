// ABOUTME: route subcommand routing JSON-lines messages offline through the configured catalog
// ABOUTME: Routes lines concurrently with a bounded worker group and prints decisions in input order

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smartnetguru/mokai/internal/gateway"
	"github.com/smartnetguru/mokai/internal/logging"
	"github.com/smartnetguru/mokai/internal/message"
)

// maxLineBytes caps one JSON-lines record.
const maxLineBytes = 1 << 20

// routeResult is one routed line.
type routeResult struct {
	Line        int    `json:"line"`
	MessageID   string `json:"message_id,omitempty"`
	URI         string `json:"uri,omitempty"`
	ConnectorID string `json:"connector_id,omitempty"`
	Unroutable  bool   `json:"unroutable"`
	Explicit    bool   `json:"explicit"`
	Delivered   bool   `json:"delivered"`
	Error       string `json:"error,omitempty"`
}

type routeOptions struct {
	direction message.Direction
	workers   int
	deliver   bool
	// source names the input in each envelope, e.g. "stdin" or a file path.
	source string
}

func newRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route [file]",
		Short: "Route JSON-lines messages from a file or stdin",
		Long: `Route reads one JSON message per line and prints the routing decision for each.
Lines are routed concurrently; output keeps input order. Decisions are journaled when
database.path is configured.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRoute,
	}
	cmd.Flags().StringP("direction", "d", "outbound", "routing direction: outbound or inbound")
	cmd.Flags().IntP("workers", "w", runtime.NumCPU(), "concurrent routing workers")
	cmd.Flags().Bool("deliver", false, "hand routed messages to their connectors")
	cmd.Flags().Bool("json", false, "print decisions as JSON lines")
	return cmd
}

func runRoute(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dirName, _ := cmd.Flags().GetString("direction")
	dir, err := parseDirection(dirName)
	if err != nil {
		return err
	}
	workers, _ := cmd.Flags().GetInt("workers")
	deliver, _ := cmd.Flags().GetBool("deliver")
	asJSON, _ := cmd.Flags().GetBool("json")

	in, source := cmd.InOrStdin(), "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in, source = f, args[0]
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	gw, err := gateway.New(cfg, logger, gateway.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	defer func() { _ = gw.Shutdown(context.Background()) }()

	results, err := routeStream(cmd.Context(), gw, in, routeOptions{
		direction: dir,
		workers:   workers,
		deliver:   deliver,
		source:    source,
	})
	if err != nil {
		return err
	}

	return printResults(cmd.OutOrStdout(), results, asJSON)
}

func parseDirection(name string) (message.Direction, error) {
	switch message.Direction(name) {
	case message.DirectionOutbound, message.DirectionInbound:
		return message.Direction(name), nil
	}
	return "", fmt.Errorf("unknown direction %q (want outbound or inbound)", name)
}

// routeStream routes every non-empty line of r. Malformed lines become
// results carrying an error rather than failing the run.
func routeStream(ctx context.Context, gw *gateway.Gateway, r io.Reader, opts routeOptions) ([]routeResult, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	results := make([]routeResult, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))

	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = routeLine(ctx, gw, i+1, line, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, res := range results {
		if res.Line != 0 {
			out = append(out, res)
		}
	}
	return out, nil
}

func routeLine(ctx context.Context, gw *gateway.Gateway, n int, line string, opts routeOptions) routeResult {
	res := routeResult{Line: n}

	var msg message.Message
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		res.Error = fmt.Sprintf("invalid message: %v", err)
		return res
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	res.MessageID = msg.ID

	env := message.NewEnvelope(&msg)
	env.SetHeader(message.HeaderSource, fmt.Sprintf("%s:%d", opts.source, n))

	d := gw.RouteEnvelope(env, opts.direction)
	res.URI = d.URI
	res.ConnectorID = d.ConnectorID
	res.Unroutable = d.Unroutable
	res.Explicit = d.Explicit

	if opts.deliver {
		delivered, err := gw.Deliver(ctx, &msg, d)
		res.Delivered = delivered
		if err != nil {
			res.Error = err.Error()
		}
	}
	return res
}

func printResults(w io.Writer, results []routeResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, res := range results {
			if err := enc.Encode(res); err != nil {
				return err
			}
		}
		return nil
	}

	routed, unroutable, failed := 0, 0, 0
	for _, res := range results {
		switch {
		case res.Error != "" && res.URI == "":
			failed++
			fmt.Fprintf(w, "%4d %s %s\n", res.Line, color.RedString("ERR"), res.Error)
		case res.Unroutable:
			unroutable++
			fmt.Fprintf(w, "%4d %s %s %s\n", res.Line, color.YellowString("---"), color.HiBlackString(res.MessageID), res.URI)
		default:
			routed++
			fmt.Fprintf(w, "%4d %s %s %s\n", res.Line, color.GreenString("OK "), color.HiBlackString(res.MessageID), res.URI)
			if res.Error != "" {
				fmt.Fprintf(w, "     %s %s\n", color.RedString("delivery:"), res.Error)
			}
		}
	}
	fmt.Fprintf(w, "\n%d routed, %d unroutable, %d invalid\n", routed, unroutable, failed)
	return nil
}
