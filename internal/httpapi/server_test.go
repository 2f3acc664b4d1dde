package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/errors"
	"github.com/jllopis/paideia/pkg/registry"
	"github.com/jllopis/paideia/pkg/router"
	"github.com/jllopis/paideia/pkg/store"
)

type fakeAgent struct {
	agent.Base
}

func newFakeRAG() *fakeAgent {
	a := &fakeAgent{Base: agent.NewBase("RAGAgent", "answers from the textbook")}
	a.Register(core.NewSkill("ragQuery", "Answer a question",
		func(_ context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
			return map[string]any{
				"answer":   "an answer",
				"message":  kwargs["message"],
				"language": ictx.Language,
			}, nil
		}))
	a.Register(core.NewSkill("alwaysFails", "Fails on purpose",
		func(_ context.Context, _ *core.Context, _ map[string]any) (any, error) {
			return nil, errors.New(errors.CodeLLMError, "llm unavailable", nil)
		}))
	return a
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	reg := registry.New()
	reg.Register(newFakeRAG())
	return New(router.New(reg), reg, opts...)
}

func doJSON(t *testing.T, s *Server, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) *core.Response {
	t.Helper()
	var resp core.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return &resp
}

func TestChat(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{
		"message":  "where in the book is SLAM covered?",
		"userId":   "user-1",
		"language": "ur",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("response failed: %s", resp.Error)
	}
	if resp.Agent != "RAGAgent" || resp.Skill != "ragQuery" {
		t.Errorf("routed to %s/%s, want RAGAgent/ragQuery", resp.Agent, resp.Skill)
	}
	data := resp.Data.(map[string]any)
	if data["language"] != "ur" {
		t.Errorf("language = %v, want ur", data["language"])
	}
}

func TestChatRequiresMessage(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{"userId": "u"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want problem+json", ct)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_INPUT") {
		t.Errorf("body should carry the error code: %s", rec.Body.String())
	}
}

func TestChatMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSkillEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/skills/ragQuery", map[string]any{
		"kwargs": map[string]any{"message": "forward kinematics"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("response failed: %s", resp.Error)
	}
	data := resp.Data.(map[string]any)
	if data["message"] != "forward kinematics" {
		t.Errorf("message = %v, want forward kinematics", data["message"])
	}
}

func TestSkillEndpointUnknownSkill(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/skills/noSuchSkill", map[string]any{
		"kwargs": map[string]any{},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with failed envelope", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected failed response")
	}
	if !strings.Contains(resp.Error, "noSuchSkill") {
		t.Errorf("error %q should name the skill", resp.Error)
	}
}

func TestFailedSkillKeepsEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/skills/alwaysFails", map[string]any{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected failed response")
	}
	if !strings.Contains(resp.Error, "llm unavailable") {
		t.Errorf("error = %q, want the handler message", resp.Error)
	}
}

func TestPipeline(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/pipeline", map[string]any{
		"steps": []map[string]any{
			{"agent": "RAGAgent", "skill": "ragQuery", "kwargs": map[string]any{"message": "one"}},
			{"agent": "RAGAgent", "skill": "ragQuery", "kwargs": map[string]any{"message": "two"}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Responses []core.Response `json:"responses"`
		Executed  int             `json:"executed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Executed != 2 || len(body.Responses) != 2 {
		t.Fatalf("executed = %d with %d responses, want 2", body.Executed, len(body.Responses))
	}
}

func TestPipelineRequiresSteps(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/pipeline", map[string]any{"steps": []any{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListAgentsAndSkills(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/v1/agents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("agents status = %d, want 200", rec.Code)
	}
	var agentsBody struct {
		Agents []registry.AgentInfo `json:"agents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &agentsBody); err != nil {
		t.Fatalf("decode agents: %v", err)
	}
	if len(agentsBody.Agents) != 1 || agentsBody.Agents[0].Name != "RAGAgent" {
		t.Fatalf("agents = %+v, want one RAGAgent", agentsBody.Agents)
	}

	rec = doJSON(t, s, http.MethodGet, "/v1/skills", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("skills status = %d, want 200", rec.Code)
	}
	var skillsBody struct {
		Skills []core.SkillInfo `json:"skills"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &skillsBody); err != nil {
		t.Fatalf("decode skills: %v", err)
	}
	if len(skillsBody.Skills) != 2 {
		t.Fatalf("got %d skills, want 2", len(skillsBody.Skills))
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body["status"] != "ok" || body["agents"] != float64(1) {
		t.Errorf("health = %v, want ok with 1 agent", body)
	}
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/v1/bogus", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/other", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestChatRecordsHistory(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "paideia.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	s := newTestServer(t, WithStore(st))

	rec := doJSON(t, s, http.MethodPost, "/v1/chat", map[string]any{
		"message":   "explain SLAM",
		"userId":    "user-9",
		"sessionId": "sess-9",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	events, err := st.QueryEvents(context.Background(), store.EventFilter{UserID: "user-9"})
	if err != nil {
		t.Fatalf("QueryEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Type != "chat" || ev.SessionID != "sess-9" {
		t.Errorf("event = %+v, want chat event for sess-9", ev)
	}
	if ev.InputSummary != "explain SLAM" {
		t.Errorf("input summary = %q", ev.InputSummary)
	}
	if !ev.Success {
		t.Error("event should record success")
	}
}
