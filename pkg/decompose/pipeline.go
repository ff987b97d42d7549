package decompose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/aretw0/agentwizard/internal/logging"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/aretw0/agentwizard/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// DefaultTemperature is the sampling temperature used for decomposition clients.
const DefaultTemperature = 0.7

// Pipeline turns an objective into a Plan with two completion calls:
// procedure discovery, then structured decomposition.
type Pipeline struct {
	completer ports.Completer
	templates Templates
	logger    *slog.Logger

	mu            sync.Mutex
	lastProcedure string
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithTemplates replaces the built-in prompts.
func WithTemplates(t Templates) Option {
	return func(p *Pipeline) {
		p.templates = t
	}
}

// WithLogger configures a logger for the Pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline over the given completer.
func New(completer ports.Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		completer: completer,
		templates: DefaultTemplates(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decompose runs both phases and returns a new Plan.
func (p *Pipeline) Decompose(ctx context.Context, objective string) (*domain.Plan, error) {
	if strings.TrimSpace(objective) == "" {
		return nil, domain.ErrEmptyObjective
	}

	procedure, err := p.StandardProcedure(ctx, objective)
	if err != nil {
		return nil, err
	}
	return p.DecomposeWithProcedure(ctx, objective, procedure)
}

// StandardProcedure asks the model how the objective is conventionally carried out.
// The result is remembered as the pipeline's last procedure.
func (p *Pipeline) StandardProcedure(ctx context.Context, objective string) (string, error) {
	p.logger.Debug("Requesting standard procedure", "objective", objective)
	text, err := p.completer.Send(ctx, "", p.templates.ProcedurePrompt(objective))
	if err != nil {
		return "", fmt.Errorf("standard procedure request failed: %w", err)
	}

	p.mu.Lock()
	p.lastProcedure = text
	p.mu.Unlock()
	return text, nil
}

// DecomposeWithProcedure runs the second phase only.
func (p *Pipeline) DecomposeWithProcedure(ctx context.Context, objective, procedure string) (*domain.Plan, error) {
	p.logger.Debug("Requesting decomposition", "objective", objective, "procedure_len", len(procedure))
	text, err := p.completer.Send(ctx, "", p.templates.DecompositionPrompt(objective, procedure))
	if err != nil {
		return nil, fmt.Errorf("decomposition request failed: %w", err)
	}

	plan, err := Parse(text, objective, procedure)
	if err != nil {
		p.logger.Warn("Decomposition response rejected", "error", err)
		return nil, err
	}
	p.logger.Debug("Objective decomposed", "plan_id", plan.ID, "goals", len(plan.Goals), "actions", plan.ActionCount())
	return plan, nil
}

// LastStandardProcedure returns the phase-one text of the most recent decomposition.
// Concurrent objectives on one Pipeline overwrite each other's value.
func (p *Pipeline) LastStandardProcedure() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastProcedure
}

type rawSubGoal struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	Actions     []string `mapstructure:"actions"`
}

type rawGoal struct {
	Name        string       `mapstructure:"name"`
	Description string       `mapstructure:"description"`
	SubGoals    []rawSubGoal `mapstructure:"subgoals"`
}

type rawPlan struct {
	AgentName string    `mapstructure:"agentName"`
	Objective string    `mapstructure:"objective"`
	Goals     []rawGoal `mapstructure:"goals"`
}

// scalarToString renders JSON scalars bound for string fields as written,
// so true stays "true" instead of the weak-decode "1".
func scalarToString(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t.Kind() != reflect.String {
		return data, nil
	}
	switch f.Kind() {
	case reflect.Bool, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprint(data), nil
	}
	return data, nil
}

// Parse maps a decomposition response onto a new Plan.
// Missing goals, subgoals or actions become empty collections.
func Parse(text, objective, procedure string) (*domain.Plan, error) {
	var tree map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &tree); err != nil {
		return nil, &domain.ParseError{Raw: text, Err: err}
	}
	if tree == nil {
		return nil, &domain.ParseError{Raw: text, Err: errors.New("decomposition is not a JSON object")}
	}

	var raw rawPlan
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       scalarToString,
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(tree); err != nil {
		return nil, &domain.ParseError{Raw: text, Err: err}
	}

	name := raw.AgentName
	if strings.TrimSpace(name) == "" {
		name = "Agent for " + objective
	}
	planObjective := raw.Objective
	if strings.TrimSpace(planObjective) == "" {
		planObjective = objective
	}

	plan := domain.NewPlan(name, planObjective)
	plan.StandardProcedure = procedure

	for _, rg := range raw.Goals {
		goal := domain.NewGoal(rg.Description)
		for _, rs := range rg.SubGoals {
			desc := rs.Description
			if strings.TrimSpace(rs.Name) != "" {
				desc = rs.Name + ": " + rs.Description
			}
			sub := domain.NewSubGoal(desc)
			for _, a := range rs.Actions {
				sub.AddAction(domain.NewAction(a))
			}
			goal.AddSubGoal(sub)
		}
		plan.AddGoal(goal)
	}
	return plan, nil
}
