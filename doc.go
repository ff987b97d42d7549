/*
Package agentwizard turns a free-text objective into a three-level plan of goals,
subgoals and actions, using two calls to a large language model, and exposes
the process as a step-by-step wizard.

# Concept

Plan creation is a small state machine. A caller starts a session, submits an
objective, reviews the decomposed plan, and completes creation. The first model
call asks how the objective is conventionally carried out (the "standard
procedure"); the second decomposes the objective against that procedure and
answers in JSON, which is mapped onto a domain.Plan.

# Key Features

  - Resilient client: throttled and transient failures are retried with exponential backoff or the server's Retry-After hint.
  - Tolerant parsing: prose and markdown fences around the JSON are ignored.
  - Explicit lifecycle: the session store is constructed by New and cleared by Close.
  - Typed errors: callers discriminate failures with errors.As on the domain error types.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/agentwizard"
	)

	func main() {
		ctx := context.Background()

		wiz, err := agentwizard.New()
		if err != nil {
			log.Fatal(err)
		}
		defer wiz.Close(ctx)

		id, _ := wiz.StartSession(ctx)
		if _, err := wiz.ProcessObjective(ctx, id, "Investigate a deviation and find its root cause"); err != nil {
			log.Fatal(err)
		}
		if _, err := wiz.ReviewAgent(ctx, id); err != nil {
			log.Fatal(err)
		}
		plan, err := wiz.CompleteCreation(ctx, id)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(plan.Name, len(plan.Goals))
	}
*/
package agentwizard
