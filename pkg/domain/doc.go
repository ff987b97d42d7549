/*
Package domain contains the core models of the plan wizard.

It defines the plan tree produced by decomposition, the wizard session with its
enumerated states and transition table, the error taxonomy shared by every
component, and the lifecycle hooks used for observability. The package is kept
free of I/O.

# Key Entities

  - Plan: The hierarchical output (objective, standard procedure, goals).
  - Goal, SubGoal, Action: The three decreasing levels of the plan tree.
  - WizardSession: A per-caller handle tracking progress through the wizard states.
  - StateError, APIError, TransportError, RateLimitError, ParseError, ConfigurationError:
    The failure kinds callers discriminate with errors.As.
*/
package domain
