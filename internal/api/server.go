package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/soochol/marketfinder/internal/mcpserver"
	"github.com/soochol/marketfinder/internal/session"
	"github.com/soochol/marketfinder/internal/tools"
)

// Paths of the two MCP transports.
const (
	SSEPath        = mcpserver.SSEPath
	SSEMessagePath = mcpserver.SSEMessagePath
	MCPPath        = mcpserver.StreamablePath
)

type Server struct {
	toolReg    *tools.Registry
	sessions   *session.Manager
	mcpServer  *mcpserver.Server
	a2aBaseURL string
}

func NewServer(toolReg *tools.Registry, sessions *session.Manager) (*Server, error) {
	mcpServer, err := mcpserver.New(toolReg, sessions)
	if err != nil {
		return nil, fmt.Errorf("mcp server: %w", err)
	}
	return &Server{
		toolReg:   toolReg,
		sessions:  sessions,
		mcpServer: mcpServer,
	}, nil
}

// SetA2ABaseURL enables A2A protocol endpoints on the server.
// The URL is used in the AgentCard to advertise the invoke endpoint.
func (s *Server) SetA2ABaseURL(url string) {
	s.a2aBaseURL = url
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", mcpserver.SessionHeader},
		ExposedHeaders:   []string{mcpserver.SessionHeader},
		AllowCredentials: false,
	}))

	r.Method(http.MethodGet, SSEPath, s.mcpServer.SSEHandler())
	r.Method(http.MethodPost, SSEMessagePath, s.mcpServer.MessageHandler())
	r.Handle(MCPPath, s.mcpServer.StreamableHandler())

	r.Get("/api/tools", s.listAvailableTools)

	// A2A protocol endpoints (agent card + JSON-RPC).
	if s.a2aBaseURL != "" {
		s.setupA2ARoutes(r)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not found"))
	})

	return r
}

// listAvailableTools returns all tools with their input schemas.
func (s *Server) listAvailableTools(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.toolReg.AllTools())
}
