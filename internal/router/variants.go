// ABOUTME: The two router configurations: connections (outbound) and applications (inbound)
// ABOUTME: Same algorithm, different catalog section, URI prefix, and unroutable URI

package router

import (
	"log/slog"

	"github.com/smartnetguru/mokai/internal/connector"
	"github.com/smartnetguru/mokai/internal/metrics"
)

// Default endpoint URIs.
const (
	DefaultConnectionsURIPrefix  = "queue:connection-"
	DefaultApplicationsURIPrefix = "queue:application-"
	DefaultUnroutableURI         = "queue:unroutable"
)

// Sections exposes a Catalog per registry section; *connector.Registry
// satisfies it.
type Sections interface {
	Catalog(sec connector.Section) connector.Catalog
}

// Options overrides the endpoint URIs of a router variant. Empty fields take
// the defaults.
type Options struct {
	URIPrefix     string
	UnroutableURI string
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
}

// NewConnectionsRouter routes outbound messages to connections.
func NewConnectionsRouter(sections Sections, opts Options) *Router {
	return newVariant(connector.Connections, sections, DefaultConnectionsURIPrefix, opts)
}

// NewApplicationsRouter routes inbound messages to applications.
func NewApplicationsRouter(sections Sections, opts Options) *Router {
	return newVariant(connector.Applications, sections, DefaultApplicationsURIPrefix, opts)
}

func newVariant(sec connector.Section, sections Sections, prefix string, opts Options) *Router {
	if opts.URIPrefix != "" {
		prefix = opts.URIPrefix
	}
	unroutable := DefaultUnroutableURI
	if opts.UnroutableURI != "" {
		unroutable = opts.UnroutableURI
	}
	return New(Config{
		Name:          string(sec),
		Catalog:       sections.Catalog(sec),
		URIPrefix:     prefix,
		UnroutableURI: unroutable,
		Logger:        opts.Logger,
		Metrics:       opts.Metrics,
	})
}
