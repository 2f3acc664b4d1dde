package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/registry"
	"github.com/jllopis/paideia/pkg/router"
)

type echoAgent struct {
	agent.Base
}

func newEchoAgent() *echoAgent {
	a := &echoAgent{Base: agent.NewBase("RAGAgent", "echoes the request back")}
	a.Register(core.NewSkill("ragQuery", "Echo the query",
		func(_ context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
			return map[string]any{
				"message":  kwargs["message"],
				"language": ictx.Language,
				"user_id":  ictx.UserID,
				"turns":    len(ictx.ConversationHistory),
			}, nil
		}))
	return a
}

func newFixture(t *testing.T) *Server {
	t.Helper()
	reg := registry.New()
	reg.Register(newEchoAgent())
	return New("paideia-test", "0.0.1", router.New(reg), reg)
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) *core.Response {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("got %d content items, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	var resp core.Response
	if err := json.Unmarshal([]byte(text.Text), &resp); err != nil {
		t.Fatalf("result is not a JSON response: %v\n%s", err, text.Text)
	}
	return &resp
}

func TestCallSkill(t *testing.T) {
	s := newFixture(t)

	result, err := s.CallSkill(context.Background(), "ragQuery", map[string]interface{}{
		"message":  "what is a humanoid robot?",
		"user_id":  "user-1",
		"language": "ur",
		"conversation_history": []interface{}{
			map[string]interface{}{"role": "user", "content": "hi"},
			map[string]interface{}{"role": "assistant", "content": "hello"},
		},
	})
	if err != nil {
		t.Fatalf("CallSkill: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success result")
	}

	resp := decodeResult(t, result)
	if !resp.Success {
		t.Fatalf("response failed: %s", resp.Error)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want map", resp.Data)
	}
	if data["language"] != "ur" {
		t.Errorf("language = %v, want ur", data["language"])
	}
	if data["user_id"] != "user-1" {
		t.Errorf("user_id = %v, want user-1", data["user_id"])
	}
	if data["turns"] != float64(2) {
		t.Errorf("turns = %v, want 2", data["turns"])
	}
}

func TestCallSkillUnknown(t *testing.T) {
	s := newFixture(t)

	result, err := s.CallSkill(context.Background(), "noSuchSkill", nil)
	if err != nil {
		t.Fatalf("CallSkill: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown skill")
	}
	resp := decodeResult(t, result)
	if resp.Success {
		t.Error("response should not report success")
	}
	if !strings.Contains(resp.Error, "noSuchSkill") {
		t.Errorf("error %q should name the skill", resp.Error)
	}
}

func TestChat(t *testing.T) {
	s := newFixture(t)

	result, err := s.Chat(context.Background(), map[string]interface{}{
		"message": "where in the book is inverse kinematics covered?",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success result")
	}
	resp := decodeResult(t, result)
	if resp.Agent != "RAGAgent" || resp.Skill != "ragQuery" {
		t.Errorf("routed to %s/%s, want RAGAgent/ragQuery", resp.Agent, resp.Skill)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	s := newFixture(t)

	result, err := s.Chat(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result when message is missing")
	}
}

func TestListAgents(t *testing.T) {
	s := newFixture(t)

	result, err := s.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	text := result.Content[0].(mcp.TextContent).Text

	var infos []registry.AgentInfo
	if err := json.Unmarshal([]byte(text), &infos); err != nil {
		t.Fatalf("agent list is not JSON: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "RAGAgent" {
		t.Fatalf("got %+v, want one RAGAgent entry", infos)
	}
}

func TestRegisterSkills(t *testing.T) {
	s := newFixture(t)
	// Registration must not panic and must cover every skill plus the
	// chat and list_agents tools.
	s.RegisterSkills()
}
