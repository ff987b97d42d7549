package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/agentwizard"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const sessionsURI = "agentwizard://sessions"

// SessionView aligns with the OpenAPI schema and provides a unified structure across adapters.
type SessionView struct {
	SessionID    string             `json:"sessionId" jsonschema_description:"Opaque session key"`
	State        domain.WizardState `json:"state" jsonschema_description:"Current wizard state"`
	Agent        *domain.Plan       `json:"agent,omitempty" jsonschema_description:"Goal/subgoal/action plan once the objective is decomposed"`
	ErrorMessage string             `json:"errorMessage,omitempty" jsonschema_description:"Reason for the last failure, in state ERROR"`
}

func viewOf(s *domain.WizardSession) SessionView {
	return SessionView{
		SessionID:    s.SessionID,
		State:        s.State,
		Agent:        s.Plan,
		ErrorMessage: s.ErrorMessage,
	}
}

// Wizard is the controller surface exposed as MCP tools.
type Wizard interface {
	StartSession(ctx context.Context) (string, error)
	Session(ctx context.Context, sessionID string) (*domain.WizardSession, error)
	ProcessObjective(ctx context.Context, sessionID, objective string) (*domain.WizardSession, error)
	ReviewAgent(ctx context.Context, sessionID string) (*domain.WizardSession, error)
	CompleteCreation(ctx context.Context, sessionID string) (*domain.Plan, error)
	RemoveSession(ctx context.Context, sessionID string) (bool, error)
	ListSessions(ctx context.Context) ([]string, error)
}

// Server wraps the wizard and exposes it as an MCP Server.
type Server struct {
	wizard    Wizard
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(wizard Wizard) *Server {
	s := &Server{
		wizard:    wizard,
		mcpServer: server.NewMCPServer("agentwizard-mcp", strings.TrimSpace(agentwizard.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new wizard session in state INITIAL."),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	s.mcpServer.AddTool(mcp.NewTool("process_objective",
		mcp.WithDescription("Decompose a free-text objective into goals, subgoals and actions."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session key returned by start_session")),
		mcp.WithString("objective", mcp.Required(), mcp.Description("What the agent should accomplish")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleProcessObjective))

	s.mcpServer.AddTool(mcp.NewTool("review_agent",
		mcp.WithDescription("Mark the decomposed plan as reviewed."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session key")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleReviewAgent))

	s.mcpServer.AddTool(mcp.NewTool("complete_creation",
		mcp.WithDescription("Finish a reviewed session and return the final plan."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session key")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleCompleteCreation))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Look up a session by key."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session key")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleGetSession))

	s.mcpServer.AddTool(mcp.NewTool("remove_session",
		mcp.WithDescription("Delete a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session key")),
	), s.handleRemoveSession)
}

func sessionArg(args map[string]interface{}) (string, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return "", errors.New("session_id is required")
	}
	return id, nil
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	id, err := s.wizard.StartSession(ctx)
	if err != nil {
		return SessionView{}, fmt.Errorf("start failed: %w", err)
	}
	session, err := s.wizard.Session(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return viewOf(session), nil
}

func (s *Server) handleProcessObjective(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	id, err := sessionArg(args)
	if err != nil {
		return SessionView{}, err
	}
	objective, _ := args["objective"].(string)
	if strings.TrimSpace(objective) == "" {
		return SessionView{}, errors.New("objective is required")
	}

	session, err := s.wizard.ProcessObjective(ctx, id, objective)
	if err != nil {
		slog.Warn("MCP process_objective failed", "session_id", id, "error", err)
		return SessionView{}, fmt.Errorf("process objective failed: %w", err)
	}
	return viewOf(session), nil
}

func (s *Server) handleReviewAgent(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	id, err := sessionArg(args)
	if err != nil {
		return SessionView{}, err
	}
	session, err := s.wizard.ReviewAgent(ctx, id)
	if err != nil {
		return SessionView{}, fmt.Errorf("review failed: %w", err)
	}
	return viewOf(session), nil
}

func (s *Server) handleCompleteCreation(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	id, err := sessionArg(args)
	if err != nil {
		return SessionView{}, err
	}
	if _, err := s.wizard.CompleteCreation(ctx, id); err != nil {
		return SessionView{}, fmt.Errorf("complete failed: %w", err)
	}
	session, err := s.wizard.Session(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return viewOf(session), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	id, err := sessionArg(args)
	if err != nil {
		return SessionView{}, err
	}
	session, err := s.wizard.Session(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return viewOf(session), nil
}

func (s *Server) handleRemoveSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionArg(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	existed, err := s.wizard.RemoveSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remove failed: %v", err)), nil
	}
	if !existed {
		return mcp.NewToolResultError("session not found: " + id), nil
	}
	return mcp.NewToolResultText("removed " + id), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(sessionsURI, "Live wizard sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.wizard.ListSessions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      sessionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
