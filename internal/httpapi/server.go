// Package httpapi exposes the tutoring core as a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/errors"
	"github.com/jllopis/paideia/pkg/registry"
	"github.com/jllopis/paideia/pkg/router"
	"github.com/jllopis/paideia/pkg/store"
	"github.com/jllopis/paideia/pkg/telemetry"
)

// Server routes JSON requests to the agent router. All skill outcomes,
// including failed ones, are returned as 200 with the uniform response
// envelope; transport problems (bad JSON, unknown paths) use
// problem+json with a 4xx status.
type Server struct {
	router   *router.Router
	registry *registry.Registry
	store    *store.Store
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
}

// Option configures the server.
type Option func(*Server)

// WithStore enables learning-history recording for chat requests.
func WithStore(st *store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithMetrics enables request metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates the HTTP API server.
func New(rt *router.Router, reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		router:   rt,
		registry: reg,
		tracer:   otel.Tracer("paideia/httpapi"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// contextPayload is the caller-supplied request context. The wire
// shape matches the chat client contract.
type contextPayload struct {
	UserID              string         `json:"userId"`
	SessionID           string         `json:"sessionId"`
	Language            string         `json:"language"`
	UserProfile         map[string]any `json:"userProfile"`
	ConversationHistory []core.Turn    `json:"conversationHistory"`
}

func (p contextPayload) build() *core.Context {
	ictx := core.NewContext()
	ictx.UserID = p.UserID
	ictx.SessionID = p.SessionID
	if p.Language != "" {
		ictx.Language = p.Language
	}
	ictx.UserProfile = p.UserProfile
	ictx.ConversationHistory = p.ConversationHistory
	return ictx
}

type chatRequest struct {
	contextPayload
	Message string         `json:"message"`
	Agent   string         `json:"agent,omitempty"`
	Skill   string         `json:"skill,omitempty"`
	Kwargs  map[string]any `json:"kwargs,omitempty"`
}

type skillRequest struct {
	contextPayload
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

type pipelineRequest struct {
	contextPayload
	Steps []router.PipelineStep `json:"steps"`
}

// ServeHTTP dispatches requests under /v1.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segments := normalizePath(r.URL.Path)
	if len(segments) == 0 || segments[0] != "v1" {
		http.NotFound(w, r)
		return
	}
	segments = segments[1:]
	if len(segments) == 0 {
		http.NotFound(w, r)
		return
	}

	switch segments[0] {
	case "chat":
		if r.Method != http.MethodPost || len(segments) != 1 {
			http.NotFound(w, r)
			return
		}
		s.handleChat(w, r)
	case "skills":
		switch {
		case len(segments) == 1 && r.Method == http.MethodGet:
			s.handleListSkills(w, r)
		case len(segments) == 2 && r.Method == http.MethodPost:
			s.handleSkill(w, r, segments[1])
		default:
			http.NotFound(w, r)
		}
	case "pipeline":
		if r.Method != http.MethodPost || len(segments) != 1 {
			http.NotFound(w, r)
			return
		}
		s.handlePipeline(w, r)
	case "agents":
		if r.Method != http.MethodGet || len(segments) != 1 {
			http.NotFound(w, r)
			return
		}
		s.handleListAgents(w, r)
	case "health":
		if r.Method != http.MethodGet || len(segments) != 1 {
			http.NotFound(w, r)
			return
		}
		s.handleHealth(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.recordError(r, err)
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		err := errors.New(errors.CodeInvalidInput, "message is required", nil)
		s.recordError(r, err)
		writeError(w, err)
		return
	}

	ictx := req.build()
	ctx, span := s.tracer.Start(r.Context(), "httpapi.Chat")
	span.SetAttributes(telemetry.SessionAttributes(ictx.UserID, ictx.SessionID, ictx.Language)...)
	defer span.End()

	resp := s.router.Route(ctx, ictx, req.Message, router.RouteOptions{
		ForceAgent: req.Agent,
		ForceSkill: req.Skill,
		Kwargs:     req.Kwargs,
	})
	span.SetAttributes(telemetry.SkillAttributes(resp.Agent, resp.Skill)...)
	span.SetAttributes(telemetry.OutcomeAttributes(resp.Success, "")...)

	elapsed := time.Since(start)
	s.metrics.RecordRequest(ctx, "/v1/chat", resp.Success, elapsed)
	s.recordChatEvent(ctx, ictx, req.Message, resp, elapsed)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request, skillName string) {
	start := time.Now()
	var req skillRequest
	if err := decodeJSON(r, &req); err != nil {
		s.recordError(r, err)
		writeError(w, err)
		return
	}

	ictx := req.build()
	ctx, span := s.tracer.Start(r.Context(), "httpapi.Skill")
	span.SetAttributes(telemetry.SessionAttributes(ictx.UserID, ictx.SessionID, ictx.Language)...)
	defer span.End()

	resp := s.router.RouteToSkill(ctx, skillName, ictx, req.Kwargs)
	span.SetAttributes(telemetry.SkillAttributes(resp.Agent, resp.Skill)...)
	span.SetAttributes(telemetry.OutcomeAttributes(resp.Success, "")...)

	s.metrics.RecordRequest(ctx, "/v1/skills", resp.Success, time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req pipelineRequest
	if err := decodeJSON(r, &req); err != nil {
		s.recordError(r, err)
		writeError(w, err)
		return
	}
	if len(req.Steps) == 0 {
		err := errors.New(errors.CodeInvalidInput, "steps are required", nil)
		s.recordError(r, err)
		writeError(w, err)
		return
	}

	ictx := req.build()
	ctx, span := s.tracer.Start(r.Context(), "httpapi.Pipeline")
	span.SetAttributes(telemetry.SessionAttributes(ictx.UserID, ictx.SessionID, ictx.Language)...)
	defer span.End()

	responses := s.router.RunPipeline(ctx, ictx, req.Steps)

	success := true
	for _, resp := range responses {
		if !resp.Success {
			success = false
			break
		}
	}
	s.metrics.RecordRequest(ctx, "/v1/pipeline", success, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"responses": responses,
		"executed":  len(responses),
	})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agents": s.registry.List()})
}

func (s *Server) handleListSkills(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"skills": s.registry.ListAllSkills()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"agents": s.registry.Count(),
	})
}

// recordChatEvent persists the interaction as a learning-history event
// when a store is wired. Recording failures are logged, never
// surfaced to the caller.
func (s *Server) recordChatEvent(ctx context.Context, ictx *core.Context, message string, resp *core.Response, elapsed time.Duration) {
	if s.store == nil {
		return
	}
	event := store.Event{
		Type:          "chat",
		UserID:        ictx.UserID,
		SessionID:     ictx.SessionID,
		Agent:         resp.Agent,
		Skill:         resp.Skill,
		InputSummary:  message,
		OutputSummary: summarize(resp),
		Success:       resp.Success,
		DurationMS:    elapsed.Milliseconds(),
	}
	if _, err := s.store.RecordEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to record chat event", "error", err)
		return
	}
	s.metrics.RecordEvent(ctx, event.Type)
}

func summarize(resp *core.Response) string {
	if !resp.Success {
		return resp.Error
	}
	if data, ok := resp.Data.(map[string]any); ok {
		for _, key := range []string{"answer", "content", "translated_text", "explanation", "code"} {
			if v, ok := data[key].(string); ok && v != "" {
				return v
			}
		}
	}
	payload, err := json.Marshal(resp.Data)
	if err != nil {
		return ""
	}
	return string(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.New(errors.CodeInvalidInput, "invalid body", err)
	}
	if len(body) == 0 {
		return errors.New(errors.CodeInvalidInput, "empty body", nil)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New(errors.CodeInvalidInput, "malformed JSON: "+err.Error(), err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	pe := errors.AsPaideiaError(err)
	body := map[string]any{
		"type":   "about:blank",
		"title":  string(pe.Code),
		"detail": pe.Message,
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pe.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) recordError(r *http.Request, err error) {
	s.metrics.RecordError(r.Context(), err, "httpapi")
}

func normalizePath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
