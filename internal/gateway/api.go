// ABOUTME: HTTP API handlers for routing messages and inspecting the catalog and journal
// ABOUTME: Provides POST /api/route/{direction}, GET /api/connectors, and GET /api/decisions

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/smartnetguru/mokai/internal/auth"
	"github.com/smartnetguru/mokai/internal/connector"
	"github.com/smartnetguru/mokai/internal/message"
	"github.com/smartnetguru/mokai/internal/metrics"
	"github.com/smartnetguru/mokai/internal/router"
	"github.com/smartnetguru/mokai/internal/store"
)

// maxMessageBytes caps the size of a submitted message.
const maxMessageBytes = 1 << 20

// RouteResponse is the JSON response for POST /api/route/{direction}.
type RouteResponse struct {
	Message   *message.Message `json:"message"`
	Decision  router.Decision  `json:"decision"`
	Delivered bool             `json:"delivered"`
	Error     string           `json:"error,omitempty"`
}

// ConnectorResponse describes one connector service for GET /api/connectors.
type ConnectorResponse struct {
	ID        string   `json:"id"`
	Section   string   `json:"section"`
	Kind      string   `json:"kind"`
	Priority  int      `json:"priority"`
	Processor bool     `json:"processor"`
	Acceptors []string `json:"acceptors"`
}

// DecisionResponse is one journal entry in GET /api/decisions.
type DecisionResponse struct {
	ID          string `json:"id"`
	MessageID   string `json:"message_id"`
	MessageType string `json:"message_type,omitempty"`
	Router      string `json:"router"`
	ConnectorID string `json:"connector_id,omitempty"`
	URI         string `json:"uri"`
	Unroutable  bool   `json:"unroutable"`
	Explicit    bool   `json:"explicit"`
	ElapsedNS   int64  `json:"elapsed_ns"`
	CreatedAt   string `json:"created_at"`
}

// ListDecisionsResponse is the JSON response for GET /api/decisions.
type ListDecisionsResponse struct {
	Decisions       []DecisionResponse `json:"decisions"`
	UnroutableTotal int                `json:"unroutable_total"`
}

// Handler returns the gateway's HTTP handler.
func (g *Gateway) Handler() http.Handler {
	requireRoute := auth.RequireScope(g.verifier, auth.ScopeRoute)
	requireRead := auth.RequireScope(g.verifier, auth.ScopeRead)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.Handle("POST /api/route/{direction}", requireRoute(http.HandlerFunc(g.handleRoute)))
	mux.Handle("GET /api/connectors", requireRead(http.HandlerFunc(g.handleListConnectors)))
	mux.Handle("GET /api/decisions", requireRead(http.HandlerFunc(g.handleListDecisions)))
	mux.Handle("GET /api/decisions/{id}", requireRead(http.HandlerFunc(g.handleGetDecision)))
	if g.config.Metrics.Enabled {
		mux.Handle("GET "+g.config.Metrics.Path, metrics.Handler(g.gatherer))
	}
	return mux
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleRoute decodes a message, routes it in the requested direction and,
// when delivery is enabled, hands it to the chosen connector.
func (g *Gateway) handleRoute(w http.ResponseWriter, r *http.Request) {
	dir, err := parseDirection(r.PathValue("direction"))
	if err != nil {
		g.sendJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	msg, err := decodeMessage(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	env := message.NewEnvelope(msg)
	env.SetHeader(message.HeaderSource, "http "+r.RemoteAddr)
	env.SetHeader(message.HeaderRequestID, r.Header.Get("X-Request-Id"))
	if claims := auth.FromContext(r.Context()); claims != nil {
		env.SetHeader(message.HeaderSubject, claims.Subject)
	}

	resp := RouteResponse{Message: msg}
	resp.Decision = g.RouteEnvelope(env, dir)

	if g.config.Delivery.Enabled {
		resp.Delivered, err = g.Deliver(r.Context(), msg, resp.Decision)
		if err != nil {
			g.logger.Warn("delivery failed", "message_id", msg.ID, "error", err)
			resp.Error = err.Error()
		}
	}

	g.sendJSON(w, http.StatusOK, resp)
}

// parseDirection accepts either the direction name or the router name.
func parseDirection(name string) (message.Direction, error) {
	switch name {
	case string(message.DirectionOutbound), string(connector.Connections):
		return message.DirectionOutbound, nil
	case string(message.DirectionInbound), string(connector.Applications):
		return message.DirectionInbound, nil
	}
	return "", fmt.Errorf("unknown direction %q", name)
}

func decodeMessage(body io.Reader) (*message.Message, error) {
	var msg message.Message
	if err := json.NewDecoder(body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	now := time.Now().UTC()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.ModifiedAt = now
	return &msg, nil
}

// handleListConnectors returns the catalog in routing priority order.
// Supports an optional ?section=connections|applications filter.
func (g *Gateway) handleListConnectors(w http.ResponseWriter, r *http.Request) {
	sections := []connector.Section{connector.Connections, connector.Applications}
	if name := r.URL.Query().Get("section"); name != "" {
		sec, err := connector.ParseSection(name)
		if err != nil {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		sections = []connector.Section{sec}
	}

	response := make([]ConnectorResponse, 0)
	for _, sec := range sections {
		for _, svc := range g.registry.List(sec) {
			response = append(response, describeService(sec, svc))
		}
	}
	g.sendJSON(w, http.StatusOK, response)
}

func describeService(sec connector.Section, svc *connector.Service) ConnectorResponse {
	_, isProcessor := svc.Processor()
	accs := make([]string, 0, len(svc.Acceptors))
	for _, a := range svc.Acceptors {
		accs = append(accs, fmt.Sprint(a))
	}
	return ConnectorResponse{
		ID:        svc.ID,
		Section:   string(sec),
		Kind:      svc.Kind(),
		Priority:  svc.Priority,
		Processor: isProcessor,
		Acceptors: accs,
	}
}

// handleListDecisions returns journaled decisions, newest first.
// Query parameters: router, message_id, unroutable, since (RFC 3339), limit.
func (g *Gateway) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	if g.store == nil {
		g.sendJSONError(w, http.StatusNotFound, "journal disabled")
		return
	}

	filter, err := parseDecisionFilter(r)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	decisions, err := g.store.ListDecisions(r.Context(), filter)
	if err != nil {
		g.logger.Error("failed to list decisions", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}
	total, err := g.store.CountUnroutable(r.Context(), filter.Router)
	if err != nil {
		g.logger.Error("failed to count unroutable decisions", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}

	resp := ListDecisionsResponse{
		Decisions:       make([]DecisionResponse, 0, len(decisions)),
		UnroutableTotal: total,
	}
	for _, d := range decisions {
		resp.Decisions = append(resp.Decisions, toDecisionResponse(d))
	}
	g.sendJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	if g.store == nil {
		g.sendJSONError(w, http.StatusNotFound, "journal disabled")
		return
	}

	d, err := g.store.GetDecision(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		g.sendJSONError(w, http.StatusNotFound, "decision not found")
		return
	}
	if err != nil {
		g.logger.Error("failed to get decision", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to get decision")
		return
	}
	g.sendJSON(w, http.StatusOK, toDecisionResponse(d))
}

func parseDecisionFilter(r *http.Request) (store.DecisionFilter, error) {
	q := r.URL.Query()
	filter := store.DecisionFilter{MessageID: q.Get("message_id")}

	if name := q.Get("router"); name != "" {
		sec, err := connector.ParseSection(name)
		if err != nil {
			return filter, err
		}
		filter.Router = string(sec)
	}
	if v := q.Get("unroutable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("invalid unroutable %q", v)
		}
		filter.UnroutableOnly = b
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid since %q: want RFC 3339", v)
		}
		filter.Since = &since
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = limit
	}
	return filter, nil
}

func toDecisionResponse(d *store.Decision) DecisionResponse {
	return DecisionResponse{
		ID:          d.ID,
		MessageID:   d.MessageID,
		MessageType: d.MessageType,
		Router:      d.Router,
		ConnectorID: d.ConnectorID,
		URI:         d.URI,
		Unroutable:  d.Unroutable,
		Explicit:    d.Explicit,
		ElapsedNS:   d.Elapsed.Nanoseconds(),
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (g *Gateway) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Debug("failed to write response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, msg string) {
	g.sendJSON(w, status, map[string]string{"error": msg})
}
