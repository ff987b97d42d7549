/*
Package ports defines the driven ports (interfaces) of the plan wizard.

These interfaces decouple the wizard from its collaborators, so the controller can
run against any session store and any decomposer, and the pipeline against any
completion service.

# Key Interfaces

  - SessionStore: Holds wizard sessions by key, safe for concurrent use.
  - Completer: Sends a prompt to a text-completion service.
  - Decomposer: Turns an objective into a plan.
  - SessionLocker: Serializes operations on one session key.
*/
package ports
