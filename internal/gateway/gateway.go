// ABOUTME: Gateway orchestrator wiring the connector registry, routers, journal, and HTTP API
// ABOUTME: Manages the HTTP server lifecycle and catalog reloads

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/smartnetguru/mokai/internal/auth"
	"github.com/smartnetguru/mokai/internal/config"
	"github.com/smartnetguru/mokai/internal/connector"
	"github.com/smartnetguru/mokai/internal/dedupe"
	"github.com/smartnetguru/mokai/internal/logging"
	"github.com/smartnetguru/mokai/internal/message"
	"github.com/smartnetguru/mokai/internal/metrics"
	"github.com/smartnetguru/mokai/internal/router"
	"github.com/smartnetguru/mokai/internal/store"
)

// journalTimeout bounds a single journal write.
const journalTimeout = 2 * time.Second

// Gateway owns the connector registry, both routers, and the HTTP API.
type Gateway struct {
	config   *config.Config
	registry *connector.Registry

	connections  *router.Timed
	applications *router.Timed

	store    store.Store
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	verifier auth.TokenVerifier
	dedupe   *dedupe.Cache

	httpServer *http.Server
	out        io.Writer
	logger     *slog.Logger

	// reloadMu serializes Reload calls.
	reloadMu sync.Mutex
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithStore uses s as the routing journal instead of opening database.path.
func WithStore(s store.Store) Option {
	return func(g *Gateway) { g.store = s }
}

// WithOutput sets where console connectors write. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(g *Gateway) { g.out = w }
}

// New builds a gateway from cfg. The caller must call Run or Shutdown to
// release the journal.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Gateway, error) {
	logger = logging.Default(logger)

	g := &Gateway{
		config: cfg,
		out:    os.Stdout,
		logger: logger.With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.store == nil && cfg.Database.Path != "" {
		st, err := store.NewSQLiteStore(cfg.Database.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		g.store = st
	}

	registry, err := BuildRegistry(cfg, g.out, logger)
	if err != nil {
		_ = g.closeStore()
		return nil, err
	}
	g.registry = registry

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	g.metrics = metrics.NewWithRegistry(promRegistry)
	g.gatherer = promRegistry
	g.updateCatalogMetrics()

	connections := router.NewConnectionsRouter(registry, router.Options{
		URIPrefix:     cfg.Routing.Connections.URIPrefix,
		UnroutableURI: cfg.Routing.Connections.UnroutableURI,
		Logger:        logger,
		Metrics:       g.metrics,
	})
	applications := router.NewApplicationsRouter(registry, router.Options{
		URIPrefix:     cfg.Routing.Applications.URIPrefix,
		UnroutableURI: cfg.Routing.Applications.UnroutableURI,
		Logger:        logger,
		Metrics:       g.metrics,
	})
	g.connections = router.NewTimed(connections, g.journal(connections.Name()))
	g.applications = router.NewTimed(applications, g.journal(applications.Name()))

	if cfg.Auth.JWTSecret != "" {
		g.verifier = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	} else {
		g.logger.Warn("auth.jwt_secret not set, HTTP API is unauthenticated")
	}

	if cfg.Delivery.Enabled {
		g.dedupe = dedupe.New(cfg.Delivery.DedupeWindow, cfg.Delivery.DedupeSize)
	}

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g, nil
}

// Registry returns the connector registry.
func (g *Gateway) Registry() *connector.Registry { return g.registry }

// Connections returns the outbound router entry point.
func (g *Gateway) Connections() *router.Timed { return g.connections }

// Applications returns the inbound router entry point.
func (g *Gateway) Applications() *router.Timed { return g.applications }

// Route routes msg in the given direction. Messages with an unknown
// direction are treated as outbound.
func (g *Gateway) Route(msg *message.Message, dir message.Direction) router.Decision {
	return g.RouteEnvelope(message.NewEnvelope(msg), dir)
}

// RouteEnvelope unwraps env and routes its message through the entry point
// for dir. It never fails: an envelope without a message is unroutable.
func (g *Gateway) RouteEnvelope(env *message.Envelope, dir message.Direction) router.Decision {
	entry := g.connections
	if dir == message.DirectionInbound {
		entry = g.applications
	}

	msg, _ := env.Payload().(*message.Message)
	if msg != nil {
		msg.Direction = dir
	}

	d := entry.Dispatch(env)
	g.logger.Debug("message routed",
		"router", entry.Router().Name(),
		"uri", d.URI,
		"unroutable", d.Unroutable,
		"source", env.Header(message.HeaderSource),
		"subject", env.Header(message.HeaderSubject),
		"request_id", env.Header(message.HeaderRequestID),
	)
	return d
}

// Deliver hands a routed message to its connector. It reports whether the
// connector processed the message; duplicates within the dedupe window are
// skipped and report false with no error.
func (g *Gateway) Deliver(ctx context.Context, msg *message.Message, d router.Decision) (bool, error) {
	if d.Unroutable || d.ConnectorID == "" {
		return false, nil
	}

	sec := connector.Connections
	if msg.Direction == message.DirectionInbound {
		sec = connector.Applications
	}
	svc, ok := g.registry.Get(sec, d.ConnectorID)
	if !ok {
		return false, fmt.Errorf("%w: %s", connector.ErrServiceNotFound, d.ConnectorID)
	}
	proc, ok := svc.Processor()
	if !ok {
		return false, fmt.Errorf("connector %q cannot process messages", d.ConnectorID)
	}

	if g.dedupe != nil && g.dedupe.CheckAndMark(msg.ID) {
		g.logger.Info("skipping duplicate delivery", "message_id", msg.ID, "connector", d.ConnectorID)
		return false, nil
	}

	if err := proc.Process(ctx, msg); err != nil {
		if g.dedupe != nil {
			g.dedupe.Forget(msg.ID)
		}
		msg.Status = message.StatusFailed
		msg.ModifiedAt = time.Now().UTC()
		return false, fmt.Errorf("delivering to %q: %w", d.ConnectorID, err)
	}

	if msg.Status == message.StatusNormal {
		msg.Status = message.StatusProcessed
	}
	msg.ModifiedAt = time.Now().UTC()
	return true, nil
}

// journal returns the router observer that records each decision of the
// named router.
func (g *Gateway) journal(routerName string) router.Observer {
	return func(msg *message.Message, d router.Decision, elapsed time.Duration) {
		if g.store == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()

		err := g.store.RecordDecision(ctx, &store.Decision{
			MessageID:   msg.ID,
			MessageType: msg.Type,
			Router:      routerName,
			ConnectorID: d.ConnectorID,
			URI:         d.URI,
			Unroutable:  d.Unroutable,
			Explicit:    d.Explicit,
			Elapsed:     elapsed,
		})
		if err != nil {
			g.logger.Error("failed to journal decision", "message_id", msg.ID, "router", routerName, "error", err)
		}
	}
}

// Reload rebuilds both catalog sections from cfg. Router endpoint URIs and
// server settings are fixed at startup and are not reloaded.
func (g *Gateway) Reload(cfg *config.Config) error {
	g.reloadMu.Lock()
	defer g.reloadMu.Unlock()

	if err := installSections(g.registry, cfg, g.out); err != nil {
		return fmt.Errorf("reloading catalog: %w", err)
	}
	if cfg.Routing != g.config.Routing {
		g.logger.Warn("routing URIs changed; restart to apply")
	}
	g.updateCatalogMetrics()

	g.logger.Info("catalog reloaded",
		"connections", len(cfg.Connections),
		"applications", len(cfg.Applications),
	)
	return nil
}

func (g *Gateway) updateCatalogMetrics() {
	for _, sec := range []connector.Section{connector.Connections, connector.Applications} {
		g.metrics.SetCatalogSize(string(sec), len(g.registry.List(sec)))
	}
}

// Run serves the HTTP API until ctx is canceled, then shuts down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		_ = g.closeStore()
		return fmt.Errorf("listening on %s: %w", g.config.Server.HTTPAddr, err)
	}
	return g.serve(ctx, ln)
}

func (g *Gateway) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	// The run context is already done; shut down on a fresh one.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), g.config.Server.ShutdownTimeout)
	defer cancel()
	shutdownErr := g.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// Shutdown stops the HTTP server and closes the journal.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := g.closeStore(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	return errors.Join(errs...)
}

func (g *Gateway) closeStore() error {
	if g.store == nil {
		return nil
	}
	return g.store.Close()
}
