package domain

import "github.com/google/uuid"

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Action is a leaf of the plan tree: one unit of work a system can perform.
type Action struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// NewAction creates an Action with a generated id.
func NewAction(description string) Action {
	return Action{ID: NewID(), Description: description}
}

// SubGoal groups the ordered actions needed to reach part of a Goal.
type SubGoal struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Actions     []Action `json:"actions"`
}

// NewSubGoal creates an empty SubGoal with a generated id.
func NewSubGoal(description string) SubGoal {
	return SubGoal{ID: NewID(), Description: description, Actions: []Action{}}
}

// AddAction appends an action, preserving insertion order.
func (s *SubGoal) AddAction(a Action) {
	s.Actions = append(s.Actions, a)
}

// Goal is the top level of decomposition below the objective.
type Goal struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	SubGoals    []SubGoal `json:"subgoals"`
}

// NewGoal creates an empty Goal with a generated id.
func NewGoal(description string) Goal {
	return Goal{ID: NewID(), Description: description, SubGoals: []SubGoal{}}
}

// AddSubGoal appends a subgoal, preserving insertion order.
func (g *Goal) AddSubGoal(s SubGoal) {
	g.SubGoals = append(g.SubGoals, s)
}

// Plan is the full hierarchical output of a decomposition.
// The wizard surfaces call it an "agent".
type Plan struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Objective         string `json:"objective"`
	StandardProcedure string `json:"standardProcedure,omitempty"`
	Goals             []Goal `json:"goals"`
}

// NewPlan creates an empty Plan with a generated id.
func NewPlan(name, objective string) *Plan {
	return &Plan{ID: NewID(), Name: name, Objective: objective, Goals: []Goal{}}
}

// AddGoal appends a goal, preserving insertion order.
func (p *Plan) AddGoal(g Goal) {
	p.Goals = append(p.Goals, g)
}

// ActionCount returns the number of leaves in the tree.
func (p *Plan) ActionCount() int {
	n := 0
	for _, g := range p.Goals {
		for _, s := range g.SubGoals {
			n += len(s.Actions)
		}
	}
	return n
}
