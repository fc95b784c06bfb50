// ABOUTME: Timed entry point unwrapping a transport carrier before routing
// ABOUTME: Never fails: bad payloads and panics degrade to the unroutable URI

package router

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/smartnetguru/mokai/internal/message"
)

// Carrier is a transport-specific wrapper around a message payload.
// *message.Envelope satisfies it.
type Carrier interface {
	Payload() any
}

// Observer is told about every decision made through a Timed entry point.
// Observers run after the URI is decided and cannot change it.
type Observer func(msg *message.Message, d Decision, elapsed time.Duration)

// Timed is the entry point handed to the dispatch layer.
type Timed struct {
	router    *Router
	logger    *slog.Logger
	observers []Observer
}

// NewTimed wraps r.
func NewTimed(r *Router, observers ...Observer) *Timed {
	return &Timed{
		router:    r,
		logger:    r.logger,
		observers: observers,
	}
}

// Router returns the wrapped router.
func (t *Timed) Router() *Router { return t.router }

// RouteCarrier unwraps c, routes its message and returns the URI. It never
// fails; anything that goes wrong yields the unroutable URI.
func (t *Timed) RouteCarrier(c Carrier) string {
	return t.Dispatch(c).URI
}

// Dispatch is RouteCarrier returning the whole decision.
func (t *Timed) Dispatch(c Carrier) Decision {
	msg, ok := t.unwrap(c)
	if !ok {
		return t.unroutable()
	}
	return t.RouteMessage(msg)
}

// RouteMessage routes msg, times the call and notifies observers. A nil
// message is unroutable.
func (t *Timed) RouteMessage(msg *message.Message) Decision {
	if msg == nil {
		t.logger.Error("nil message handed to router")
		return t.unroutable()
	}

	start := time.Now()
	d := t.decide(msg)
	elapsed := time.Since(start)

	t.logger.Debug("route took", "message_id", msg.ID, "elapsed", elapsed, "uri", d.URI)
	t.router.metrics.ObserveDuration(t.router.name, elapsed)
	for _, obs := range t.observers {
		t.notify(obs, msg, d, elapsed)
	}
	return d
}

func (t *Timed) decide(msg *message.Message) (d Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			t.logger.Error("routing panicked", "message_id", msg.ID, "panic", rec)
			t.router.metrics.Decision(t.router.name, true)
			d = t.router.unroutable(msg, msg.HasDestination())
		}
	}()
	return t.router.Decide(msg)
}

func (t *Timed) notify(obs Observer, msg *message.Message, d Decision, elapsed time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			t.logger.Error("route observer panicked", "message_id", msg.ID, "panic", rec)
		}
	}()
	obs(msg, d, elapsed)
}

// unroutable is the decision for input that never reached the router.
func (t *Timed) unroutable() Decision {
	t.router.metrics.Decision(t.router.name, true)
	return Decision{URI: t.router.unroutableURI, Unroutable: true}
}

// unwrap extracts the message from c. A panicking carrier is treated like
// one holding no message.
func (t *Timed) unwrap(c Carrier) (msg *message.Message, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			t.logger.Error("carrier unwrap panicked", "carrier", fmt.Sprintf("%T", c), "panic", rec)
			msg, ok = nil, false
		}
	}()

	if c == nil {
		t.logger.Error("carrier holds no message", "payload", "<nil>")
		return nil, false
	}
	body := c.Payload()
	msg, ok = body.(*message.Message)
	if !ok || msg == nil {
		t.logger.Error("carrier holds no message", "payload", fmt.Sprintf("%T", body))
		return nil, false
	}
	return msg, true
}
