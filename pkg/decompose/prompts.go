package decompose

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const standardProcedureTemplate = `Objective: %s

Provide a detailed hierarchical analysis of the current standard procedure for this objective in pharmaceutical manufacturing, including:

1. All sequential phases of the process
2. Sub-stages within each phase
3. Specific tasks performed at each level
4. Personnel responsible for each task
5. Methodologies and tools employed
6. Documentation requirements
7. Decision points and escalation pathways
8. Regulatory considerations
9. Timeline expectations for each phase
10. Cross-functional interactions and handoffs

Format your response as a well-structured markdown document with clear headings, subheadings, bullet points, and numbered lists to represent the hierarchical nature of the procedure. Use markdown formatting features like headers (# for main phases, ## for sub-stages, ### for tasks), bullet points, numbered lists, tables, and emphasis where appropriate to make the information clear and easy to navigate.
`

const actionDecompositionTemplate = "Standard Procedure:\n```%s```\n\n" +
	"Now while keeping scope to the objective given below Objective: ```%s```\n" +
	"I want to decompose this objective into goals, it's sub goals and their actions. " +
	"Each action is a unit level work that the system can perform in order to progress further in the goal. " +
	"The core idea is that an objective when broken down into meaningful goals can be executed autonomously by a system which also has LLM capability. " +
	"It may have some checkpoints where it may require user approval before proceeding further. " +
	"Ensure each action is detailed enough.\n\n" +
	"Can you decompose my objective and give me in JSON:\n\n" +
	"```json\n" +
	`{
  "goals": [
    {
      "name": "Goal name",
      "description": "Goal description",
      "subgoals": [
        {
          "name": "Subgoal name",
          "description": "Subgoal description",
          "actions": [
            "Detailed action 1",
            "Detailed action 2",
            "Detailed action 3"
          ]
        }
      ]
    }
  ]
}
` + "```\n"

// Templates holds the two prompt templates. StandardProcedure takes the
// objective; ActionDecomposition takes the standard procedure, then the objective.
type Templates struct {
	StandardProcedure   string `yaml:"standard_procedure"`
	ActionDecomposition string `yaml:"action_decomposition"`
}

// DefaultTemplates returns the built-in prompts.
func DefaultTemplates() Templates {
	return Templates{
		StandardProcedure:   standardProcedureTemplate,
		ActionDecomposition: actionDecompositionTemplate,
	}
}

// ProcedurePrompt formats the phase-one prompt.
func (t Templates) ProcedurePrompt(objective string) string {
	return fmt.Sprintf(t.StandardProcedure, objective)
}

// DecompositionPrompt formats the phase-two prompt.
func (t Templates) DecompositionPrompt(objective, standardProcedure string) string {
	return fmt.Sprintf(t.ActionDecomposition, standardProcedure, objective)
}

// Validate checks that each template takes the expected number of %s verbs.
func (t Templates) Validate() error {
	if n := strings.Count(t.StandardProcedure, "%s"); n != 1 {
		return fmt.Errorf("standard_procedure template must contain one %%s, found %d", n)
	}
	if n := strings.Count(t.ActionDecomposition, "%s"); n != 2 {
		return fmt.Errorf("action_decomposition template must contain two %%s, found %d", n)
	}
	return nil
}

// LoadTemplates reads overrides from a YAML file. Keys left empty keep the
// built-in prompt.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read prompt templates: %w", err)
	}

	var override Templates
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	if strings.TrimSpace(override.StandardProcedure) != "" {
		t.StandardProcedure = override.StandardProcedure
	}
	if strings.TrimSpace(override.ActionDecomposition) != "" {
		t.ActionDecomposition = override.ActionDecomposition
	}
	if err := t.Validate(); err != nil {
		return DefaultTemplates(), err
	}
	return t, nil
}
