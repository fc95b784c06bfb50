// ABOUTME: Thread-safe registry of connector services split into connections and applications
// ABOUTME: Keeps each section in priority order and hands out snapshot views to routers

package connector

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/smartnetguru/mokai/internal/logging"
)

// ErrServiceAlreadyRegistered indicates a service with the same ID exists in the section.
var ErrServiceAlreadyRegistered = errors.New("connector service already registered")

// ErrServiceNotFound indicates the specified service was not found.
var ErrServiceNotFound = errors.New("connector service not found")

// ErrInvalidID indicates an empty service ID.
var ErrInvalidID = errors.New("connector service id is required")

// ErrUnknownSection indicates a section name other than connections or applications.
var ErrUnknownSection = errors.New("unknown registry section")

// Section selects which set of connector services an operation targets.
type Section string

const (
	// Connections deliver outbound messages to external systems.
	Connections Section = "connections"
	// Applications receive inbound messages for processing.
	Applications Section = "applications"
)

// ParseSection validates a section name.
func ParseSection(name string) (Section, error) {
	switch Section(name) {
	case Connections, Applications:
		return Section(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

type section struct {
	ordered []*Service
	byID    map[string]*Service
}

func newSection() *section {
	return &section{byID: make(map[string]*Service)}
}

func (s *section) sort() {
	slices.SortStableFunc(s.ordered, func(a, b *Service) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
}

// Registry holds the connector services known to the gateway. Lower
// priority values are tried first; ties keep registration order.
type Registry struct {
	mu       sync.RWMutex
	sections map[Section]*section
	logger   *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		sections: map[Section]*section{
			Connections:  newSection(),
			Applications: newSection(),
		},
		logger: logging.Default(logger).With("component", "registry"),
	}
}

func (r *Registry) section(sec Section) (*section, error) {
	s, ok := r.sections[sec]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, sec)
	}
	return s, nil
}

// Add registers svc in the given section.
func (r *Registry) Add(sec Section, svc *Service) error {
	if svc == nil || svc.ID == "" {
		return ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.section(sec)
	if err != nil {
		return err
	}
	if _, exists := s.byID[svc.ID]; exists {
		return fmt.Errorf("%w: %s/%s", ErrServiceAlreadyRegistered, sec, svc.ID)
	}

	s.ordered = append(s.ordered, svc)
	s.byID[svc.ID] = svc
	s.sort()

	r.logger.Info("connector service added",
		"section", sec,
		"id", svc.ID,
		"kind", svc.Kind(),
		"priority", svc.Priority,
		"acceptors", len(svc.Acceptors),
	)
	return nil
}

// Remove unregisters the service with the given ID.
func (r *Registry) Remove(sec Section, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.section(sec)
	if err != nil {
		return err
	}
	if _, exists := s.byID[id]; !exists {
		return fmt.Errorf("%w: %s/%s", ErrServiceNotFound, sec, id)
	}

	delete(s.byID, id)
	s.ordered = slices.DeleteFunc(s.ordered, func(svc *Service) bool { return svc.ID == id })

	r.logger.Info("connector service removed", "section", sec, "id", id)
	return nil
}

// Replace swaps the whole section for services. Either all services are
// installed or none are.
func (r *Registry) Replace(sec Section, services []*Service) error {
	return r.ReplaceAll(map[Section][]*Service{sec: services})
}

// ReplaceAll swaps several sections at once. Every section is validated
// before any is installed, so an error leaves the registry untouched.
func (r *Registry) ReplaceAll(sections map[Section][]*Service) error {
	next := make(map[Section]*section, len(sections))
	for sec, services := range sections {
		s, err := buildSection(sec, services)
		if err != nil {
			return err
		}
		next[sec] = s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for sec := range next {
		if _, err := r.section(sec); err != nil {
			return err
		}
	}
	for sec, s := range next {
		r.sections[sec] = s
		r.logger.Info("connector services replaced", "section", sec, "count", len(s.ordered))
	}
	return nil
}

func buildSection(sec Section, services []*Service) (*section, error) {
	s := newSection()
	for _, svc := range services {
		if svc == nil || svc.ID == "" {
			return nil, ErrInvalidID
		}
		if _, exists := s.byID[svc.ID]; exists {
			return nil, fmt.Errorf("%w: %s/%s", ErrServiceAlreadyRegistered, sec, svc.ID)
		}
		s.ordered = append(s.ordered, svc)
		s.byID[svc.ID] = svc
	}
	s.sort()
	return s, nil
}

// List returns a snapshot of the section in priority order.
func (r *Registry) List(sec Section) []*Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sections[sec]
	if !ok {
		return nil
	}
	return slices.Clone(s.ordered)
}

// Get looks up a service by ID.
func (r *Registry) Get(sec Section, id string) (*Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sections[sec]
	if !ok {
		return nil, false
	}
	svc, ok := s.byID[id]
	return svc, ok
}

// Catalog returns a live read-only view of one section.
func (r *Registry) Catalog(sec Section) Catalog {
	return catalogView{registry: r, section: sec}
}

type catalogView struct {
	registry *Registry
	section  Section
}

func (v catalogView) ConnectorServices() []*Service {
	return v.registry.List(v.section)
}

func (v catalogView) ConnectorService(id string) (*Service, bool) {
	return v.registry.Get(v.section, id)
}

// StaticCatalog is a fixed, ordered Catalog. Useful for tests and one-shot
// routing where no registry is running.
type StaticCatalog []*Service

func (c StaticCatalog) ConnectorServices() []*Service {
	return slices.Clone(c)
}

func (c StaticCatalog) ConnectorService(id string) (*Service, bool) {
	for _, svc := range c {
		if svc.ID == id {
			return svc, true
		}
	}
	return nil, false
}
