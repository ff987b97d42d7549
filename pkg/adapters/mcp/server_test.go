package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/agentwizard/pkg/adapters/memory"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/aretw0/agentwizard/pkg/wizard"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decomposerFunc func(ctx context.Context, objective string) (*domain.Plan, error)

func (f decomposerFunc) Decompose(ctx context.Context, objective string) (*domain.Plan, error) {
	return f(ctx, objective)
}

func newTestServer(t *testing.T, dec decomposerFunc) *Server {
	t.Helper()
	return NewServer(wizard.NewController(memory.NewStore(), dec))
}

func onePlan(ctx context.Context, objective string) (*domain.Plan, error) {
	p := domain.NewPlan("Agent for "+objective, objective)
	p.AddGoal(domain.NewGoal("Only goal"))
	return p, nil
}

func TestToolsFlow(t *testing.T) {
	s := newTestServer(t, onePlan)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	started, err := s.handleStartSession(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StateInitial, started.State)
	args := map[string]interface{}{"session_id": started.SessionID}

	processed, err := s.handleProcessObjective(ctx, req, map[string]interface{}{
		"session_id": started.SessionID,
		"objective":  "Audit the warehouse",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateObjectiveDecomposed, processed.State)
	require.NotNil(t, processed.Agent)
	assert.Equal(t, "Agent for Audit the warehouse", processed.Agent.Name)

	reviewed, err := s.handleReviewAgent(ctx, req, args)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAgentReviewed, reviewed.State)

	done, err := s.handleCompleteCreation(ctx, req, args)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, done.State)

	got, err := s.handleGetSession(ctx, req, args)
	require.NoError(t, err)
	assert.Equal(t, done, got)
}

func TestToolErrors(t *testing.T) {
	s := newTestServer(t, func(ctx context.Context, objective string) (*domain.Plan, error) {
		return nil, errors.New("model offline")
	})
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	t.Run("Missing session_id", func(t *testing.T) {
		_, err := s.handleReviewAgent(ctx, req, map[string]interface{}{})
		assert.EqualError(t, err, "session_id is required")
	})

	t.Run("Unknown session", func(t *testing.T) {
		_, err := s.handleGetSession(ctx, req, map[string]interface{}{"session_id": "missing"})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Blank objective", func(t *testing.T) {
		started, err := s.handleStartSession(ctx, req, nil)
		require.NoError(t, err)
		_, err = s.handleProcessObjective(ctx, req, map[string]interface{}{"session_id": started.SessionID, "objective": " "})
		assert.EqualError(t, err, "objective is required")
	})

	t.Run("Decomposition failure", func(t *testing.T) {
		started, err := s.handleStartSession(ctx, req, nil)
		require.NoError(t, err)
		_, err = s.handleProcessObjective(ctx, req, map[string]interface{}{"session_id": started.SessionID, "objective": "x"})
		assert.ErrorContains(t, err, "model offline")

		got, err := s.handleGetSession(ctx, req, map[string]interface{}{"session_id": started.SessionID})
		require.NoError(t, err)
		assert.Equal(t, domain.StateFailed, got.State)
		assert.NotEmpty(t, got.ErrorMessage)
	})

	t.Run("Illegal transition", func(t *testing.T) {
		started, err := s.handleStartSession(ctx, req, nil)
		require.NoError(t, err)
		_, err = s.handleCompleteCreation(ctx, req, map[string]interface{}{"session_id": started.SessionID})
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})
}

func TestRemoveSessionTool(t *testing.T) {
	s := newTestServer(t, onePlan)
	ctx := context.Background()

	started, err := s.handleStartSession(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"session_id": started.SessionID}

	res, err := s.handleRemoveSession(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = s.handleRemoveSession(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleRemoveSession(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
