package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/agentwizard"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Wizard is the slice of the wizard controller the HTTP surface drives.
type Wizard interface {
	StartSession(ctx context.Context) (string, error)
	Session(ctx context.Context, sessionID string) (*domain.WizardSession, error)
	ProcessObjective(ctx context.Context, sessionID, objective string) (*domain.WizardSession, error)
	ReviewAgent(ctx context.Context, sessionID string) (*domain.WizardSession, error)
	CompleteCreation(ctx context.Context, sessionID string) (*domain.Plan, error)
	RemoveSession(ctx context.Context, sessionID string) (bool, error)
	ActiveSessionCount(ctx context.Context) (int, error)
}

// CreateRequest is the body of POST /api/agent/create.
type CreateRequest struct {
	SessionID string          `json:"sessionId,omitempty"`
	Objective string          `json:"objective,omitempty"`
	State     string          `json:"state,omitempty"`
	Agent     json.RawMessage `json:"agent,omitempty"`
}

func (r CreateRequest) hasAgent() bool {
	raw := strings.TrimSpace(string(r.Agent))
	return raw != "" && raw != "null"
}

// SessionView is the wire shape of a session.
type SessionView struct {
	SessionID    string             `json:"sessionId"`
	State        domain.WizardState `json:"state"`
	Agent        *domain.Plan       `json:"agent"`
	ErrorMessage string             `json:"errorMessage,omitempty"`
}

// NewSessionView projects a session onto its wire shape.
func NewSessionView(s *domain.WizardSession) SessionView {
	return SessionView{
		SessionID:    s.SessionID,
		State:        s.State,
		Agent:        s.Plan,
		ErrorMessage: s.ErrorMessage,
	}
}

// Info is the body of GET /info.
type Info struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	ActiveSessions int    `json:"activeSessions"`
}

// Server serves the agent creation API.
type Server struct {
	Wizard  Wizard
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// NewHandler creates the HTTP handler for the wizard.
func NewHandler(wizard Wizard, opts ...Option) http.Handler {
	server := &Server{Wizard: wizard, Logger: slog.Default()}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/agent/create", server.Create)
	r.Get("/api/agent/create", server.Lookup)
	r.Delete("/api/agent/create", server.Remove)

	r.Get("/health", server.Health)
	r.Get("/info", server.Info)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Agent Wizard API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// maxBodyBytes bounds a create request body.
const maxBodyBytes = 1 << 20

// Create handles POST /api/agent/create.
func (s *Server) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		s.Logger.Warn("Create: Invalid request body", "error", err)
		return
	}
	ctx := r.Context()

	if body.State == string(domain.StateInitial) && !body.hasAgent() {
		s.start(ctx, w, body.Objective)
		return
	}
	if body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if _, err := s.Wizard.Session(ctx, body.SessionID); err != nil {
		s.fail(w, err)
		return
	}

	var (
		session *domain.WizardSession
		err     error
	)
	switch domain.WizardState(body.State) {
	case domain.StateObjectiveEntered:
		if strings.TrimSpace(body.Objective) == "" {
			writeError(w, http.StatusBadRequest, "Objective is required")
			return
		}
		session, err = s.Wizard.ProcessObjective(ctx, body.SessionID, body.Objective)
	case domain.StateAgentReviewed:
		session, err = s.Wizard.ReviewAgent(ctx, body.SessionID)
	case domain.StateCompleted:
		if _, err = s.Wizard.CompleteCreation(ctx, body.SessionID); err == nil {
			session, err = s.Wizard.Session(ctx, body.SessionID)
		}
	default:
		writeError(w, http.StatusBadRequest, "Invalid state transition")
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSessionView(session))
}

func (s *Server) start(ctx context.Context, w http.ResponseWriter, objective string) {
	id, err := s.Wizard.StartSession(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}

	var session *domain.WizardSession
	if strings.TrimSpace(objective) != "" {
		session, err = s.Wizard.ProcessObjective(ctx, id, objective)
	} else {
		session, err = s.Wizard.Session(ctx, id)
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSessionView(session))
}

// Lookup handles GET /api/agent/create.
func (s *Server) Lookup(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("sessionId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}
	session, err := s.Wizard.Session(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSessionView(session))
}

// Remove handles DELETE /api/agent/create.
func (s *Server) Remove(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("sessionId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}
	existed, err := s.Wizard.RemoveSession(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	count, err := s.Wizard.ActiveSessionCount(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Info{
		Name:           "agentwizard",
		Version:        strings.TrimSpace(agentwizard.Version),
		ActiveSessions: count,
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "Error processing request: "+err.Error())
	s.Logger.Error("Request failed", "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
