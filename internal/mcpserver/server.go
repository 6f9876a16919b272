// Package mcpserver exposes the tool registry over the Model Context
// Protocol. Both the SSE transport and the streamable HTTP transport are
// served by mcp-go; this package maps each MCP client session onto a
// session.Session so location state stays per client.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/soochol/marketfinder/internal/session"
	"github.com/soochol/marketfinder/internal/tools"
)

const (
	ServerName    = "Market Price Finder"
	ServerVersion = "1.0.0"
)

// SessionHeader carries the streamable HTTP session ID.
const SessionHeader = "Mcp-Session-Id"

// Transport paths.
const (
	SSEPath        = "/sse"
	SSEMessagePath = "/sse/message"
	StreamablePath = "/mcp"
)

type Server struct {
	mcp        *server.MCPServer
	sse        *server.SSEServer
	streamable *server.StreamableHTTPServer
	registry   *tools.Registry
	sessions   *session.Manager
}

// New registers every tool of registry on a fresh MCP server.
func New(registry *tools.Registry, sessions *session.Manager) (*Server, error) {
	s := &Server{registry: registry, sessions: sessions}

	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, cs server.ClientSession) {
		sessions.Attach(cs.SessionID())
		slog.Debug("mcp session opened", "session", cs.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, cs server.ClientSession) {
		sessions.Delete(cs.SessionID())
		slog.Debug("mcp session closed", "session", cs.SessionID())
	})

	s.mcp = server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithHooks(hooks),
	)
	for _, info := range registry.AllTools() {
		schema, err := json.Marshal(info.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("input schema of %s: %w", info.Name, err)
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(info.Name, info.Description, schema), s.callTool(info.Name))
	}

	s.sse = server.NewSSEServer(s.mcp,
		server.WithSSEEndpoint(SSEPath),
		server.WithMessageEndpoint(SSEMessagePath),
	)
	s.streamable = server.NewStreamableHTTPServer(s.mcp)
	return s, nil
}

// SSEHandler serves the event stream. The first event names the message
// endpoint, including the session ID.
func (s *Server) SSEHandler() http.Handler { return s.sse.SSEHandler() }

// MessageHandler accepts client messages for an open SSE stream.
func (s *Server) MessageHandler() http.Handler { return s.sse.MessageHandler() }

// StreamableHandler serves the streamable HTTP transport. Ending a session
// with DELETE also drops its location state.
func (s *Server) StreamableHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.streamable.ServeHTTP(w, r)
		if r.Method == http.MethodDelete {
			if id := r.Header.Get(SessionHeader); id != "" {
				s.sessions.Delete(id)
			}
		}
	})
}

func (s *Server) callTool(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = session.NewContext(ctx, s.sessionFor(ctx))
		res, err := s.registry.Call(ctx, name, req.GetArguments())
		if err != nil {
			return nil, err
		}
		if res.Failed() {
			slog.Info("tool call failed", "tool", name, "status", res.Status)
		}
		// Failures are reported as plain text; isError stays unset.
		return mcp.NewToolResultText(res.Text()), nil
	}
}

func (s *Server) sessionFor(ctx context.Context) *session.Session {
	cs := server.ClientSessionFromContext(ctx)
	if cs == nil {
		return s.sessions.Default()
	}
	return s.sessions.GetOrCreate(cs.SessionID())
}
