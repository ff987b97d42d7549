package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/agentwizard/pkg/adapters/memory"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/aretw0/agentwizard/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decomposerFunc func(ctx context.Context, objective string) (*domain.Plan, error)

func (f decomposerFunc) Decompose(ctx context.Context, objective string) (*domain.Plan, error) {
	return f(ctx, objective)
}

func samplePlan(ctx context.Context, objective string) (*domain.Plan, error) {
	p := domain.NewPlan("Agent for "+objective, objective)
	g := domain.NewGoal("Collect evidence")
	s := domain.NewSubGoal("Interview operators")
	s.AddAction(domain.NewAction("Schedule interviews"))
	g.AddSubGoal(s)
	p.AddGoal(g)
	return p, nil
}

func newTestHandler(t *testing.T, dec decomposerFunc) (http.Handler, *wizard.Controller) {
	t.Helper()
	ctrl := wizard.NewController(memory.NewStore(), dec)
	return NewHandler(ctrl), ctrl
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) SessionView {
	t.Helper()
	var v SessionView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp["error"]
}

func TestGetHealth(t *testing.T) {
	h, _ := newTestHandler(t, samplePlan)

	rr := do(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	h, ctrl := newTestHandler(t, samplePlan)
	_, err := ctrl.StartSession(context.Background())
	require.NoError(t, err)

	rr := do(t, h, http.MethodGet, "/info", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var info Info
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "agentwizard", info.Name)
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, 1, info.ActiveSessions)
}

func TestCORS(t *testing.T) {
	h, _ := newTestHandler(t, samplePlan)

	rr := do(t, h, http.MethodOptions, "/api/agent/create", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))

	rr = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreate_FullFlow(t *testing.T) {
	h, _ := newTestHandler(t, samplePlan)

	rr := do(t, h, http.MethodPost, "/api/agent/create", CreateRequest{
		State:     "INITIAL",
		Objective: "Investigate a deviation",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view := decodeView(t, rr)
	assert.Equal(t, domain.StateObjectiveDecomposed, view.State)
	require.NotNil(t, view.Agent)
	assert.Equal(t, view.SessionID, view.Agent.ID)
	assert.Equal(t, "Agent for Investigate a deviation", view.Agent.Name)

	rr = do(t, h, http.MethodPost, "/api/agent/create", CreateRequest{
		SessionID: view.SessionID,
		State:     "AGENT_REVIEWED",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, domain.StateAgentReviewed, decodeView(t, rr).State)

	rr = do(t, h, http.MethodPost, "/api/agent/create", CreateRequest{
		SessionID: view.SessionID,
		State:     "COMPLETED",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	done := decodeView(t, rr)
	assert.Equal(t, domain.StateCompleted, done.State)
	require.NotNil(t, done.Agent)
	assert.Len(t, done.Agent.Goals, 1)

	rr = do(t, h, http.MethodGet, "/api/agent/create?sessionId="+view.SessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.StateCompleted, decodeView(t, rr).State)
}

func TestCreate_StartWithoutObjective(t *testing.T) {
	h, _ := newTestHandler(t, samplePlan)

	rr := do(t, h, http.MethodPost, "/api/agent/create", CreateRequest{State: "INITIAL"})

	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeView(t, rr)
	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, domain.StateInitial, view.State)
	assert.Nil(t, view.Agent)
}

func TestCreate_ProcessExistingSession(t *testing.T) {
	h, ctrl := newTestHandler(t, samplePlan)
	id, err := ctrl.StartSession(context.Background())
	require.NoError(t, err)

	t.Run("Blank objective", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/agent/create", CreateRequest{
			SessionID: id,
			State:     "OBJECTIVE_ENTERED",
			Objective: "  ",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Objective is required", errorBody(t, rr))
	})

	t.Run("Objective", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/agent/create", CreateRequest{
			SessionID: id,
			State:     "OBJECTIVE_ENTERED",
			Objective: "Ship a release",
		})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.StateObjectiveDecomposed, decodeView(t, rr).State)
	})
}

func TestCreate_Errors(t *testing.T) {
	h, ctrl := newTestHandler(t, samplePlan)
	id, err := ctrl.StartSession(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"Malformed body", "{not json", http.StatusBadRequest, "Invalid request"},
		{"No session and no INITIAL", CreateRequest{State: "AGENT_REVIEWED"}, http.StatusBadRequest, "Invalid request"},
		{"INITIAL with agent", map[string]any{"state": "INITIAL", "agent": map[string]any{"name": "x"}}, http.StatusBadRequest, "Invalid request"},
		{"Unknown session", CreateRequest{SessionID: "missing", State: "AGENT_REVIEWED"}, http.StatusNotFound, "Session not found"},
		{"Missing state", CreateRequest{SessionID: id}, http.StatusBadRequest, "Invalid state transition"},
		{"Unsupported state", CreateRequest{SessionID: id, State: "ERROR"}, http.StatusBadRequest, "Invalid state transition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/agent/create", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, errorBody(t, rr))
		})
	}

	t.Run("Illegal transition", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/agent/create", CreateRequest{SessionID: id, State: "AGENT_REVIEWED"})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.True(t, strings.HasPrefix(errorBody(t, rr), "Error processing request: "))
	})
}

func TestCreate_OversizedBody(t *testing.T) {
	h, ctrl := newTestHandler(t, samplePlan)

	body := `{"state": "INITIAL", "objective": "` + strings.Repeat("x", maxBodyBytes) + `"}`
	rr := do(t, h, http.MethodPost, "/api/agent/create", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request", errorBody(t, rr))

	count, err := ctrl.ActiveSessionCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreate_DecompositionFailure(t *testing.T) {
	h, ctrl := newTestHandler(t, func(ctx context.Context, objective string) (*domain.Plan, error) {
		return nil, errors.New("upstream unavailable")
	})

	rr := do(t, h, http.MethodPost, "/api/agent/create", CreateRequest{State: "INITIAL", Objective: "x"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, errorBody(t, rr), "upstream unavailable")

	ids, err := ctrl.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	s, err := ctrl.Session(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, s.State)
	assert.Equal(t, "Error processing objective: upstream unavailable", s.ErrorMessage)
}

func TestLookup(t *testing.T) {
	h, _ := newTestHandler(t, samplePlan)

	rr := do(t, h, http.MethodGet, "/api/agent/create", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Session ID is required", errorBody(t, rr))

	rr = do(t, h, http.MethodGet, "/api/agent/create?sessionId=missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Session not found", errorBody(t, rr))
}

func TestRemove(t *testing.T) {
	h, ctrl := newTestHandler(t, samplePlan)
	id, err := ctrl.StartSession(context.Background())
	require.NoError(t, err)

	rr := do(t, h, http.MethodDelete, "/api/agent/create?sessionId="+id, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/agent/create?sessionId="+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/agent/create", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOpenAPI(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/api/agent/create"))

	h, _ := newTestHandler(t, samplePlan)
	rr := do(t, h, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/yaml", rr.Header().Get("Content-Type"))
	assert.Equal(t, RawSpec(), rr.Body.Bytes())
}

func TestMetricsMount(t *testing.T) {
	ctrl := wizard.NewController(memory.NewStore(), decomposerFunc(samplePlan))

	h := NewHandler(ctrl)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", nil).Code)

	h = NewHandler(ctrl, WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})))
	rr := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# metrics", rr.Body.String())
}
