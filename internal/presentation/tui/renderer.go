package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PlanMarkdown lays the plan out as nested markdown lists.
func PlanMarkdown(plan *domain.Plan) string {
	if plan == nil {
		return "_No plan._\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", plan.Name)
	if plan.Objective != "" {
		fmt.Fprintf(&sb, "**Objective:** %s\n\n", plan.Objective)
	}

	for gi, g := range plan.Goals {
		fmt.Fprintf(&sb, "## %d. %s\n\n", gi+1, g.Description)
		for si, s := range g.SubGoals {
			fmt.Fprintf(&sb, "### %d.%d %s\n\n", gi+1, si+1, s.Description)
			for ai, a := range s.Actions {
				fmt.Fprintf(&sb, "%d. %s\n", ai+1, a.Description)
			}
			if len(s.Actions) > 0 {
				sb.WriteString("\n")
			}
		}
	}

	fmt.Fprintf(&sb, "---\n\n%d goals, %d actions\n", len(plan.Goals), plan.ActionCount())
	return sb.String()
}

// ProcedureMarkdown wraps the standard procedure under a heading.
func ProcedureMarkdown(procedure string) string {
	if strings.TrimSpace(procedure) == "" {
		return ""
	}
	return "# Standard Procedure\n\n" + strings.TrimSpace(procedure) + "\n"
}
