// Package mcpserver exposes the tutoring skills as MCP tools over
// stdio so editor and agent clients can drive the system directly.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/registry"
	"github.com/jllopis/paideia/pkg/router"
)

// Server wraps the mcp-go server and maps every registered skill to an
// MCP tool. Tool arguments carry the skill kwargs plus the reserved
// context keys user_id, session_id, language, user_profile, and
// conversation_history.
type Server struct {
	mcpServer *server.MCPServer
	router    *router.Router
	registry  *registry.Registry
}

// New creates an MCP server over the given router and registry.
func New(name, version string, rt *router.Router, reg *registry.Registry) *Server {
	return &Server{
		mcpServer: server.NewMCPServer(name, version),
		router:    rt,
		registry:  reg,
	}
}

// RegisterSkills publishes one tool per registered skill, plus a chat
// tool that routes free text through intent classification.
func (s *Server) RegisterSkills() {
	for _, info := range s.registry.ListAllSkills() {
		skillName := info.Name
		desc := info.Description
		if desc == "" {
			desc = fmt.Sprintf("%s skill of %s", skillName, info.Agent)
		}
		tool := mcp.NewTool(skillName, mcp.WithDescription(desc))
		s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			return s.CallSkill(ctx, skillName, args)
		})
	}

	chat := mcp.NewTool("chat", mcp.WithDescription(
		"Send a free-text message; intent classification picks the agent and skill."))
	s.mcpServer.AddTool(chat, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		return s.Chat(ctx, args)
	})

	agents := mcp.NewTool("list_agents", mcp.WithDescription(
		"List registered agents with their skills."))
	s.mcpServer.AddTool(agents, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.ListAgents(ctx)
	})

	slog.Info("registered mcp tools", "skills", len(s.registry.ListAllSkills())+2)
}

// CallSkill dispatches one skill through the router and renders the
// response as a JSON tool result.
func (s *Server) CallSkill(ctx context.Context, skillName string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	ictx, kwargs := splitArgs(args)
	resp := s.router.RouteToSkill(ctx, skillName, ictx, kwargs)
	return resultFromResponse(resp)
}

// Chat routes a free-text message by intent. The message argument is
// required.
func (s *Server) Chat(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	ictx, kwargs := splitArgs(args)
	message, _ := kwargs["message"].(string)
	if message == "" {
		return errorResult("missing required argument: message"), nil
	}
	delete(kwargs, "message")
	resp := s.router.Route(ctx, ictx, message, router.RouteOptions{Kwargs: kwargs})
	return resultFromResponse(resp)
}

// ListAgents renders the registry snapshot as a JSON tool result.
func (s *Server) ListAgents(_ context.Context) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(s.registry.List(), "", "  ")
	if err != nil {
		return errorResult("failed to encode agent list: " + err.Error()), nil
	}
	return textResult(string(payload)), nil
}

// ServeStdio starts the server on stdio and blocks until the client
// disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// splitArgs separates the reserved context keys from the skill kwargs
// and builds the request context.
func splitArgs(args map[string]interface{}) (*core.Context, map[string]any) {
	ictx := core.NewContext()
	kwargs := make(map[string]any, len(args))

	for k, v := range args {
		switch k {
		case "user_id":
			ictx.UserID, _ = v.(string)
		case "session_id":
			ictx.SessionID, _ = v.(string)
		case "language":
			if lang, ok := v.(string); ok && lang != "" {
				ictx.Language = lang
			}
		case "user_profile":
			if profile, ok := v.(map[string]interface{}); ok {
				ictx.UserProfile = profile
			}
		case "conversation_history":
			ictx.ConversationHistory = parseHistory(v)
		default:
			kwargs[k] = v
		}
	}
	return ictx, kwargs
}

func parseHistory(v interface{}) []core.Turn {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	turns := make([]core.Turn, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		role, _ := m["role"].(string)
		content, _ := m["content"].(string)
		turns = append(turns, core.Turn{Role: role, Content: content})
	}
	return turns
}

func resultFromResponse(resp *core.Response) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return errorResult("failed to encode response: " + err.Error()), nil
	}
	if !resp.Success {
		result := errorResult(string(payload))
		return result, nil
	}
	return textResult(string(payload)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}
