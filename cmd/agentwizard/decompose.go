package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/agentwizard/internal/presentation/graph"
	"github.com/aretw0/agentwizard/internal/presentation/tui"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/spf13/cobra"
)

const defaultObjective = "In pharma manufacturing context, investigate a deviation given a deviation description and find its root cause"

var decomposeCmd = &cobra.Command{
	Use:   "decompose [objective]",
	Short: "Run the wizard once and print the resulting plan",
	Long: `Starts a session, decomposes the objective, reviews and completes the plan,
then prints the standard procedure and the plan tree.

Without an argument a sample pharma manufacturing objective is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		asMermaid, _ := cmd.Flags().GetBool("mermaid")
		if asJSON && asMermaid {
			return fmt.Errorf("--json and --mermaid are mutually exclusive")
		}

		objective := defaultObjective
		if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
			objective = args[0]
		}

		deps, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		defer deps.wizard.Close(context.Background())

		tty := tui.IsTerminal(os.Stdout)
		if tty && !asJSON && !asMermaid {
			tui.PrintBanner()
		}

		plan, err := runWizard(ctx, deps, objective)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case asJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		case asMermaid:
			_, err := fmt.Fprint(out, graph.GenerateMermaid(plan, &graph.Overlay{State: domain.StateCompleted}))
			return err
		default:
			return printPlan(out, plan, tty)
		}
	},
}

func init() {
	rootCmd.AddCommand(decomposeCmd)
	decomposeCmd.Flags().Bool("json", false, "Print the plan as indented JSON")
	decomposeCmd.Flags().Bool("mermaid", false, "Print the plan as a Mermaid flowchart")
}

// runWizard drives one session from start to completion.
func runWizard(ctx context.Context, deps *runtimeDeps, objective string) (*domain.Plan, error) {
	w := deps.wizard
	logger := deps.logger

	id, err := w.StartSession(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Session started", "session_id", id)

	logger.Info("Decomposing objective", "objective", objective)
	session, err := w.ProcessObjective(ctx, id, objective)
	if err != nil {
		return nil, fmt.Errorf("decomposition failed: %w", err)
	}
	logger.Info("Objective decomposed", "goals", len(session.Plan.Goals), "actions", session.Plan.ActionCount())

	if _, err := w.ReviewAgent(ctx, id); err != nil {
		return nil, err
	}
	return w.CompleteCreation(ctx, id)
}

func printPlan(out io.Writer, plan *domain.Plan, tty bool) error {
	md := tui.ProcedureMarkdown(plan.StandardProcedure) + "\n" + tui.PlanMarkdown(plan)
	if !tty {
		_, err := fmt.Fprint(out, md)
		return err
	}

	render, err := tui.NewRenderer()
	if err != nil {
		return err
	}
	rendered, err := render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
