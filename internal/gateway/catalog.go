// ABOUTME: Builds connector services and acceptors from configuration
// ABOUTME: Shared by the gateway, config reload, and the offline CLI commands

package gateway

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/smartnetguru/mokai/internal/acceptor"
	"github.com/smartnetguru/mokai/internal/config"
	"github.com/smartnetguru/mokai/internal/connector"
)

// BuildAcceptor compiles one acceptor config, recursing into composites.
func BuildAcceptor(ac config.AcceptorConfig) (acceptor.Acceptor, error) {
	switch ac.Type {
	case config.AcceptorAlways:
		return acceptor.Always{}, nil
	case config.AcceptorEquals:
		return acceptor.Equals{Field: ac.Field, Value: ac.Value}, nil
	case config.AcceptorRegexp:
		return acceptor.NewRegexp(ac.Field, ac.Pattern)
	case config.AcceptorGlob:
		return acceptor.NewGlob(ac.Field, ac.Pattern)
	case config.AcceptorJSONPath:
		jp, err := acceptor.NewJSONPath(ac.Path)
		if err != nil {
			return nil, err
		}
		if ac.Value != "" {
			return jp.WithValue(ac.Value), nil
		}
		return jp, nil
	case config.AcceptorAnd, config.AcceptorOr:
		children, err := buildAcceptors(ac.Acceptors)
		if err != nil {
			return nil, err
		}
		if ac.Type == config.AcceptorAnd {
			return acceptor.And(children), nil
		}
		return acceptor.Or(children), nil
	case config.AcceptorNot:
		if len(ac.Acceptors) != 1 {
			return nil, fmt.Errorf("not takes exactly one acceptor, got %d", len(ac.Acceptors))
		}
		child, err := BuildAcceptor(ac.Acceptors[0])
		if err != nil {
			return nil, err
		}
		return acceptor.Not{Acceptor: child}, nil
	default:
		return nil, fmt.Errorf("unknown acceptor type %q", ac.Type)
	}
}

func buildAcceptors(configs []config.AcceptorConfig) ([]acceptor.Acceptor, error) {
	out := make([]acceptor.Acceptor, 0, len(configs))
	for i, ac := range configs {
		a, err := BuildAcceptor(ac)
		if err != nil {
			return nil, fmt.Errorf("acceptors[%d]: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// BuildServices creates one connector service per config entry. Console
// connectors write to out.
func BuildServices(configs []config.ConnectorConfig, out io.Writer) ([]*connector.Service, error) {
	services := make([]*connector.Service, 0, len(configs))
	for _, cc := range configs {
		conn, err := connector.Build(cc.Type, cc.Supports, out)
		if err != nil {
			return nil, fmt.Errorf("connector %q: %w", cc.ID, err)
		}
		accs, err := buildAcceptors(cc.Acceptors)
		if err != nil {
			return nil, fmt.Errorf("connector %q: %w", cc.ID, err)
		}

		svc := connector.NewService(cc.ID, conn, accs...)
		svc.Priority = cc.Priority
		services = append(services, svc)
	}
	return services, nil
}

// BuildRegistry creates a registry holding both configured sections.
func BuildRegistry(cfg *config.Config, out io.Writer, logger *slog.Logger) (*connector.Registry, error) {
	reg := connector.NewRegistry(logger)
	if err := installSections(reg, cfg, out); err != nil {
		return nil, err
	}
	return reg, nil
}

// installSections builds and validates both sections before touching reg, so a bad config
// leaves the registry as it was.
func installSections(reg *connector.Registry, cfg *config.Config, out io.Writer) error {
	connections, err := BuildServices(cfg.Connections, out)
	if err != nil {
		return fmt.Errorf("building connections: %w", err)
	}
	applications, err := BuildServices(cfg.Applications, out)
	if err != nil {
		return fmt.Errorf("building applications: %w", err)
	}

	return reg.ReplaceAll(map[connector.Section][]*connector.Service{
		connector.Connections:  connections,
		connector.Applications: applications,
	})
}
