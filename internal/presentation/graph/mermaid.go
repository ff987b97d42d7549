package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/agentwizard/pkg/domain"
)

// Overlay carries session data to visualize on the graph.
type Overlay struct {
	State domain.WizardState
}

// GenerateMermaid produces a Mermaid flowchart of a plan tree.
// Shapes follow the level:
// - Objective: ((Circle))
// - Goal: [Rectangle]
// - SubGoal: [[Subroutine]]
// - Action: [/Parallelogram/]
// Node ids are positional so the output is stable across runs.
func GenerateMermaid(plan *domain.Plan, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if plan == nil {
		return sb.String()
	}

	root := "plan"
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", root, label(plan.Name)))

	for gi, g := range plan.Goals {
		goalID := fmt.Sprintf("g%d", gi+1)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", goalID, label(g.Description)))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", root, goalID))

		for si, s := range g.SubGoals {
			subID := fmt.Sprintf("%s_s%d", goalID, si+1)
			sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", subID, label(s.Description)))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", goalID, subID))

			prev := subID
			for ai, a := range s.Actions {
				actionID := fmt.Sprintf("%s_a%d", subID, ai+1)
				sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", actionID, label(a.Description)))
				// Actions are ordered, so chain them.
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, actionID))
				prev = actionID
			}
		}
	}

	if overlay != nil && overlay.State != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef done fill:#e8f5e9,stroke:#1b5e20,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#b71c1c,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef pending fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		class := "pending"
		switch overlay.State {
		case domain.StateCompleted:
			class = "done"
		case domain.StateFailed:
			class = "failed"
		}
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", root, class))
	}

	return sb.String()
}

// label escapes text for a quoted Mermaid label.
func label(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.Join(strings.Fields(s), " ")
}
