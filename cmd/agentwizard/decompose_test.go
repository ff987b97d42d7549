package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/agentwizard"
	"github.com/aretw0/agentwizard/internal/logging"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedCompleter struct{}

func (cannedCompleter) Send(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.HasPrefix(userPrompt, "Standard Procedure:") {
		return `{"agentName": "Deviation Bot", "goals": [{"description": "Contain", "subgoals": [{"description": "Triage", "actions": ["Log deviation"]}]}]}`, nil
	}
	return "1. Record the deviation", nil
}

func TestRunWizard(t *testing.T) {
	wiz, err := agentwizard.New(agentwizard.WithCompleter(cannedCompleter{}))
	require.NoError(t, err)
	deps := &runtimeDeps{logger: logging.NewNop(), wizard: wiz}

	plan, err := runWizard(context.Background(), deps, defaultObjective)
	require.NoError(t, err)
	assert.Equal(t, "Deviation Bot", plan.Name)
	assert.Equal(t, "1. Record the deviation", plan.StandardProcedure)
	assert.Equal(t, 1, plan.ActionCount())

	ids, err := wiz.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	s, err := wiz.Session(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, s.State)
}

func TestPrintPlan_Plain(t *testing.T) {
	p := domain.NewPlan("Deviation Bot", "investigate")
	p.StandardProcedure = "1. Record"
	p.AddGoal(domain.NewGoal("Contain"))

	var buf bytes.Buffer
	require.NoError(t, printPlan(&buf, p, false))

	out := buf.String()
	assert.Contains(t, out, "# Standard Procedure\n\n1. Record\n")
	assert.Contains(t, out, "# Deviation Bot\n")
	assert.Contains(t, out, "## 1. Contain")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "mcp", "decompose", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
