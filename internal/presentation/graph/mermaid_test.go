package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/agentwizard/internal/presentation/graph"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func samplePlan() *domain.Plan {
	p := domain.NewPlan("Agent for audit", "audit")
	g := domain.NewGoal("Prepare")
	s := domain.NewSubGoal("Gather \"records\"")
	s.AddAction(domain.NewAction("Pull logs"))
	s.AddAction(domain.NewAction("Export\nreports"))
	g.AddSubGoal(s)
	p.AddGoal(g)
	return p
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		plan     *domain.Plan
		overlay  *graph.Overlay
		contains []string
		absent   []string
	}{
		{
			name: "Shapes and edges",
			plan: samplePlan(),
			contains: []string{
				"graph TD\n",
				"plan((\"Agent for audit\"))",
				"g1[\"Prepare\"]",
				"plan --> g1",
				"g1_s1[[\"Gather 'records'\"]]",
				"g1 --> g1_s1",
				"g1_s1_a1[/\"Pull logs\"/]",
				"g1_s1 --> g1_s1_a1",
				"g1_s1_a2[/\"Export reports\"/]",
				"g1_s1_a1 --> g1_s1_a2",
			},
			absent: []string{"classDef"},
		},
		{
			name:     "Completed overlay",
			plan:     samplePlan(),
			overlay:  &graph.Overlay{State: domain.StateCompleted},
			contains: []string{"classDef done", "class plan done;"},
		},
		{
			name:     "Error overlay",
			plan:     samplePlan(),
			overlay:  &graph.Overlay{State: domain.StateFailed},
			contains: []string{"class plan failed;"},
		},
		{
			name:     "Nil plan",
			plan:     nil,
			contains: []string{"graph TD\n"},
			absent:   []string{"plan(("},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.plan, tt.overlay)
			for _, want := range tt.contains {
				assert.True(t, strings.Contains(got, want), "missing %q in:\n%s", want, got)
			}
			for _, not := range tt.absent {
				assert.NotContains(t, got, not)
			}
		})
	}
}
