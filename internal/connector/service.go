// ABOUTME: Connector service records and the capabilities routers query on them
// ABOUTME: Resolves the optional processor capability once, at construction

package connector

import (
	"context"

	"github.com/smartnetguru/mokai/internal/acceptor"
	"github.com/smartnetguru/mokai/internal/message"
)

// Connector is the implementation behind a connector service.
type Connector interface {
	// Kind names the connector implementation, e.g. "console".
	Kind() string
}

// Processor is the capability of a connector to take messages. Only
// connectors with this capability can be routing destinations.
type Processor interface {
	Connector
	// Supports is the coarse check: can this connector handle this kind of
	// message at all.
	Supports(msg *message.Message) bool
	// Process hands the message to the connector.
	Process(ctx context.Context, msg *message.Message) error
}

// Service is a configured, addressable connector together with its
// acceptors. A Service must not be mutated after it is added to a Registry.
type Service struct {
	ID        string
	Priority  int
	Connector Connector
	Acceptors []acceptor.Acceptor

	processor Processor
}

// NewService creates a service for conn. Acceptors are evaluated in the
// order given.
func NewService(id string, conn Connector, acceptors ...acceptor.Acceptor) *Service {
	s := &Service{
		ID:        id,
		Connector: conn,
		Acceptors: acceptors,
	}
	if p, ok := conn.(Processor); ok {
		s.processor = p
	}
	return s
}

// Processor returns the processor capability of the underlying connector,
// or false if it has none.
func (s *Service) Processor() (Processor, bool) {
	if s == nil || s.processor == nil {
		return nil, false
	}
	return s.processor, true
}

// Kind returns the underlying connector kind, or "" when unset.
func (s *Service) Kind() string {
	if s.Connector == nil {
		return ""
	}
	return s.Connector.Kind()
}

// Catalog is a read-only, ordered view of connector services. The order of
// ConnectorServices is the routing priority order.
type Catalog interface {
	ConnectorServices() []*Service
	ConnectorService(id string) (*Service, bool)
}
