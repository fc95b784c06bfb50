// ABOUTME: Routing decision engine picking one connector service for a message
// ABOUTME: Explicit destinations bypass acceptors; discovery scans the catalog in priority order

package router

import (
	"fmt"
	"log/slog"

	"github.com/smartnetguru/mokai/internal/acceptor"
	"github.com/smartnetguru/mokai/internal/connector"
	"github.com/smartnetguru/mokai/internal/logging"
	"github.com/smartnetguru/mokai/internal/message"
	"github.com/smartnetguru/mokai/internal/metrics"
)

// Config contains the configuration for a Router.
type Config struct {
	// Name labels logs and metrics, e.g. "connections".
	Name string
	// Catalog is read on every call; the router keeps nothing between calls.
	Catalog connector.Catalog
	// URIPrefix is prepended to the chosen connector ID.
	URIPrefix string
	// UnroutableURI is returned when no connector qualifies.
	UnroutableURI string
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
}

// Decision is the outcome of routing one message.
type Decision struct {
	URI         string `json:"uri"`
	ConnectorID string `json:"connector_id,omitempty"`
	Unroutable  bool   `json:"unroutable"`
	Explicit    bool   `json:"explicit"`
}

// Router decides which connector service receives a message. It holds no
// mutable state and is safe for concurrent use on distinct messages.
type Router struct {
	name          string
	catalog       connector.Catalog
	prefix        string
	unroutableURI string
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// New creates a Router.
func New(cfg Config) *Router {
	name := cfg.Name
	if name == "" {
		name = "router"
	}
	return &Router{
		name:          name,
		catalog:       cfg.Catalog,
		prefix:        cfg.URIPrefix,
		unroutableURI: cfg.UnroutableURI,
		logger:        logging.Default(cfg.Logger).With("component", "router", "router", name),
		metrics:       cfg.Metrics,
	}
}

// Name returns the router's label.
func (r *Router) Name() string { return r.name }

// URIPrefix returns the prefix used for resolved routes.
func (r *Router) URIPrefix() string { return r.prefix }

// UnroutableURI returns the URI used when nothing qualifies.
func (r *Router) UnroutableURI() string { return r.unroutableURI }

// Route returns the destination URI for msg. When no connector qualifies,
// msg.Status is set to StatusUnroutable and the unroutable URI is returned.
func (r *Router) Route(msg *message.Message) string {
	return r.Decide(msg).URI
}

// Decide routes msg and reports how the URI was reached.
func (r *Router) Decide(msg *message.Message) Decision {
	var d Decision
	if msg.HasDestination() {
		d = r.routeExplicit(msg)
	} else {
		d = r.discover(msg)
	}
	r.metrics.Decision(r.name, d.Unroutable)
	return d
}

// routeExplicit honours a destination set on the message. Acceptors are not
// consulted: an explicit destination is a directive, not a candidate.
func (r *Router) routeExplicit(msg *message.Message) Decision {
	svc, ok := r.catalog.ConnectorService(msg.Destination)
	if !ok || !r.supports(svc, msg) {
		r.logger.Debug("explicit destination not routable",
			"message_id", msg.ID,
			"destination", msg.Destination,
			"found", ok,
		)
		return r.unroutable(msg, true)
	}
	return r.resolved(svc, true)
}

// discover returns the first service, in catalog order, that supports msg
// and has an acceptor that takes it.
func (r *Router) discover(msg *message.Message) Decision {
	for _, svc := range r.catalog.ConnectorServices() {
		if !r.supports(svc, msg) {
			continue
		}
		if r.accepted(svc, msg) {
			return r.resolved(svc, false)
		}
	}
	return r.unroutable(msg, false)
}

func (r *Router) supports(svc *connector.Service, msg *message.Message) bool {
	p, ok := svc.Processor()
	return ok && p.Supports(msg)
}

// accepted evaluates acceptors in order and stops at the first one that
// accepts. A failing acceptor counts as a rejection.
func (r *Router) accepted(svc *connector.Service, msg *message.Message) bool {
	for i, acc := range svc.Acceptors {
		if r.evaluate(svc, i, acc, msg) {
			return true
		}
	}
	return false
}

func (r *Router) evaluate(svc *connector.Service, idx int, acc acceptor.Acceptor, msg *message.Message) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.acceptorFailed(svc, idx, acc, msg, fmt.Errorf("acceptor panicked: %v", rec))
			ok = false
		}
	}()

	accepted, err := acc.Accepts(msg)
	if err != nil {
		r.acceptorFailed(svc, idx, acc, msg, err)
		return false
	}
	return accepted
}

func (r *Router) acceptorFailed(svc *connector.Service, idx int, acc acceptor.Acceptor, msg *message.Message, err error) {
	r.logger.Error("acceptor failed",
		"connector", svc.ID,
		"acceptor", fmt.Sprint(acc),
		"index", idx,
		"message_id", msg.ID,
		"error", err,
	)
	r.metrics.AcceptorError(r.name, svc.ID)
}

func (r *Router) resolved(svc *connector.Service, explicit bool) Decision {
	return Decision{
		URI:         r.prefix + svc.ID,
		ConnectorID: svc.ID,
		Explicit:    explicit,
	}
}

// unroutable marks msg and returns the unroutable decision.
func (r *Router) unroutable(msg *message.Message, explicit bool) Decision {
	msg.Status = message.StatusUnroutable
	return Decision{
		URI:        r.unroutableURI,
		Unroutable: true,
		Explicit:   explicit,
	}
}
