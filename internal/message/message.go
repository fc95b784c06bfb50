// ABOUTME: Message type routed through the gateway and its status lifecycle
// ABOUTME: Provides field resolution used by acceptors and deep copies for replay

package message

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownField is returned by Field when the name does not resolve.
var ErrUnknownField = errors.New("unknown message field")

// ErrUnknownStatus is returned when parsing an unrecognized status name.
var ErrUnknownStatus = errors.New("unknown message status")

// Status is the processing state of a message.
type Status int

// Status values. The router only ever sets StatusUnroutable.
const (
	StatusNormal Status = iota
	StatusUnroutable
	StatusProcessed
	StatusFailed
	StatusRetrying
)

var statusNames = map[Status]string{
	StatusNormal:     "normal",
	StatusUnroutable: "unroutable",
	StatusProcessed:  "processed",
	StatusFailed:     "failed",
	StatusRetrying:   "retrying",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus converts a status name into a Status.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StatusNormal, nil
	}
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusNormal, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Direction tells whether a message travels to a connection or an application.
type Direction string

// Direction values.
const (
	DirectionUnknown  Direction = "unknown"
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Message is a unit of traffic handled by the gateway.
//
// A Message is not safe for concurrent mutation; callers must not route the
// same instance from multiple goroutines at once.
type Message struct {
	ID              string         `json:"id"`
	Reference       string         `json:"reference,omitempty"`
	Type            string         `json:"type,omitempty"`
	Source          string         `json:"source,omitempty"`
	SourceType      string         `json:"source_type,omitempty"`
	Destination     string         `json:"destination,omitempty"` // connector id, empty when not set
	DestinationType string         `json:"destination_type,omitempty"`
	Direction       Direction      `json:"direction,omitempty"`
	Status          Status         `json:"status"`
	Properties      map[string]any `json:"properties,omitempty"`
	Body            string         `json:"body,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	ModifiedAt      time.Time      `json:"modified_at,omitzero"`
}

// New creates a message of the given type with a fresh ID.
func New(msgType string) *Message {
	now := time.Now().UTC()
	return &Message{
		ID:         uuid.New().String(),
		Type:       msgType,
		Direction:  DirectionUnknown,
		Status:     StatusNormal,
		Properties: make(map[string]any),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// HasDestination reports whether an explicit destination was set.
func (m *Message) HasDestination() bool {
	return m.Destination != ""
}

// SetProperty stores a property value, allocating the map if needed.
func (m *Message) SetProperty(key string, value any) {
	if m.Properties == nil {
		m.Properties = make(map[string]any)
	}
	m.Properties[key] = value
}

// Property returns a property value and whether it was present.
func (m *Message) Property(key string) (any, bool) {
	v, ok := m.Properties[key]
	return v, ok
}

// Field resolves a named field to its value. Property values are addressed
// as "properties.<key>".
func (m *Message) Field(name string) (any, error) {
	switch name {
	case "id":
		return m.ID, nil
	case "reference":
		return m.Reference, nil
	case "type":
		return m.Type, nil
	case "source":
		return m.Source, nil
	case "source_type":
		return m.SourceType, nil
	case "destination":
		return m.Destination, nil
	case "destination_type":
		return m.DestinationType, nil
	case "direction":
		return string(m.Direction), nil
	case "status":
		return m.Status.String(), nil
	case "body":
		return m.Body, nil
	}

	if key, ok := strings.CutPrefix(name, "properties."); ok && key != "" {
		v, found := m.Properties[key]
		if !found {
			return nil, fmt.Errorf("%w: property %q not set", ErrUnknownField, key)
		}
		return v, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Document returns the message as a generic JSON-style document, used for
// path queries.
func (m *Message) Document() map[string]any {
	props := make(map[string]any, len(m.Properties))
	maps.Copy(props, m.Properties)
	return map[string]any{
		"id":               m.ID,
		"reference":        m.Reference,
		"type":             m.Type,
		"source":           m.Source,
		"source_type":      m.SourceType,
		"destination":      m.Destination,
		"destination_type": m.DestinationType,
		"direction":        string(m.Direction),
		"status":           m.Status.String(),
		"body":             m.Body,
		"properties":       props,
	}
}

// Clone returns a copy of the message with its own property map.
func (m *Message) Clone() *Message {
	c := *m
	if m.Properties != nil {
		c.Properties = make(map[string]any, len(m.Properties))
		maps.Copy(c.Properties, m.Properties)
	}
	return &c
}
