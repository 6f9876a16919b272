package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
	"github.com/go-chi/chi/v5"
	"github.com/soochol/marketfinder/internal/mcpserver"
	"github.com/soochol/marketfinder/internal/session"
	"github.com/soochol/marketfinder/internal/tools"
)

// toolA2AExecutor implements a2asrv.AgentExecutor to expose the tool
// registry as an A2A-callable agent. The A2A context ID selects the
// session, so a conversation keeps its last known location.
type toolA2AExecutor struct {
	toolReg  *tools.Registry
	sessions *session.Manager
}

func (e *toolA2AExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	name, args, err := parseToolCall(reqCtx.Message)
	if err != nil {
		return writeFailEvent(ctx, reqCtx, queue, err)
	}
	if _, ok := e.toolReg.Get(name); !ok {
		return writeFailEvent(ctx, reqCtx, queue, fmt.Errorf("tool %q not found", name))
	}

	if reqCtx.StoredTask == nil {
		event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)
		if err := queue.Write(ctx, event); err != nil {
			return fmt.Errorf("failed to write submitted: %w", err)
		}
	}

	workingEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, nil)
	if err := queue.Write(ctx, workingEvent); err != nil {
		return fmt.Errorf("failed to write working: %w", err)
	}

	sess := e.sessions.GetOrCreate(reqCtx.ContextID)
	res, err := e.toolReg.Call(session.NewContext(ctx, sess), name, args)
	if err != nil {
		return writeFailEvent(ctx, reqCtx, queue, err)
	}

	artEvent := a2a.NewArtifactEvent(reqCtx, a2a.TextPart{Text: res.Text()})
	if err := queue.Write(ctx, artEvent); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	doneEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
	doneEvent.Final = true
	if err := queue.Write(ctx, doneEvent); err != nil {
		return fmt.Errorf("failed to write completed: %w", err)
	}
	return nil
}

func (e *toolA2AExecutor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCanceled, nil)
	event.Final = true
	return queue.Write(ctx, event)
}

// writeFailEvent sends a TaskStateFailed event with the error message.
func writeFailEvent(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue, err error) error {
	msg := a2a.NewMessage(a2a.MessageRoleAgent, a2a.TextPart{Text: err.Error()})
	event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateFailed, msg)
	event.Final = true
	if writeErr := queue.Write(ctx, event); writeErr != nil {
		return fmt.Errorf("failed to write failure event: %w (original: %v)", writeErr, err)
	}
	return nil
}

type toolCall struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// parseToolCall extracts a tool name and arguments from an A2A message.
// Supported formats: a text part holding {"tool": "name", "arguments": {...}}
// or a data part with the same fields.
func parseToolCall(msg *a2a.Message) (string, map[string]any, error) {
	if msg == nil || len(msg.Parts) == 0 {
		return "", nil, fmt.Errorf("empty message")
	}

	for _, part := range msg.Parts {
		var raw []byte
		switch p := part.(type) {
		case a2a.TextPart:
			raw = []byte(p.Text)
		case a2a.DataPart:
			b, err := json.Marshal(p.Data)
			if err != nil {
				continue
			}
			raw = b
		default:
			continue
		}
		var call toolCall
		if err := json.Unmarshal(raw, &call); err == nil && call.Tool != "" {
			return call.Tool, call.Arguments, nil
		}
	}

	return "", nil, fmt.Errorf("could not determine tool; send JSON: {\"tool\": \"name\", \"arguments\": {...}}")
}

// buildAgentCard describes the agent with one skill per registered tool.
func (s *Server) buildAgentCard() *a2a.AgentCard {
	infos := s.toolReg.AllTools()
	skills := make([]a2a.AgentSkill, 0, len(infos))
	for _, t := range infos {
		example, _ := json.Marshal(toolCall{Tool: t.Name, Arguments: map[string]any{}})
		skills = append(skills, a2a.AgentSkill{
			ID:          t.Name,
			Name:        t.Name,
			Description: t.Description,
			Tags:        []string{"market", "prices"},
			Examples:    []string{string(example)},
		})
	}

	return &a2a.AgentCard{
		Name:               mcpserver.ServerName,
		Description:        "Grocery price lookup near a location. Each skill is a tool; send {\"tool\": ..., \"arguments\": ...}.",
		URL:                s.a2aBaseURL + "/a2a",
		Version:            mcpserver.ServerVersion,
		ProtocolVersion:    "0.3.0",
		DefaultInputModes:  []string{"application/json", "text/plain"},
		DefaultOutputModes: []string{"text/plain"},
		Capabilities:       a2a.AgentCapabilities{Streaming: true},
		Skills:             skills,
	}
}

// setupA2ARoutes registers A2A protocol endpoints on the Chi router.
func (s *Server) setupA2ARoutes(r chi.Router) {
	executor := &toolA2AExecutor{
		toolReg:  s.toolReg,
		sessions: s.sessions,
	}

	reqHandler := a2asrv.NewHandler(executor)

	cardProducer := a2asrv.AgentCardProducerFn(func(ctx context.Context) (*a2a.AgentCard, error) {
		return s.buildAgentCard(), nil
	})
	r.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewAgentCardHandler(cardProducer))

	r.Handle("/a2a", a2asrv.NewJSONRPCHandler(reqHandler))
}
