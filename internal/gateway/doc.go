// Package gateway wires the mokai routing gateway together.
//
// # Overview
//
// A Gateway owns the connector registry built from configuration, the two
// timed routers (connections for outbound traffic, applications for inbound),
// the optional routing journal, Prometheus metrics, and the HTTP API.
//
// # HTTP API
//
//   - POST /api/route/{direction} - Route a JSON message (outbound|inbound)
//   - GET /api/connectors - List the catalog in priority order
//   - GET /api/decisions - List journaled decisions, newest first
//   - GET /api/decisions/{id} - Fetch one journaled decision
//   - GET /health - Liveness check
//   - GET /metrics - Prometheus metrics, when enabled
//
// With auth.jwt_secret set, /api/route requires the "route" scope and the
// listing endpoints require the "read" scope.
//
// # Delivery
//
// When delivery is enabled, a routed message is handed to its connector's
// Process method. Message ids are remembered for delivery.dedupe_window so a
// resubmitted message is not delivered twice.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	err = gw.Run(ctx)
//
// Reload swaps both catalog sections from a new config without restarting.
package gateway
