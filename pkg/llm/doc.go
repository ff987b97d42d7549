/*
Package llm is a client for the Anthropic messages API.

The client sends an optional system prompt and a user prompt, and returns the
text of the reply with markdown code fences removed. Throttled responses
(HTTP 429, an exhausted remaining-requests header, or rate-limit wording in the
error body) and transport failures are retried with exponential backoff, or
after the server's Retry-After hint. Structured API errors are returned
immediately as *domain.APIError.

	client := llm.NewClient(llm.DefaultConfig(), llm.StaticKey(os.Getenv("CLAUDE_API_KEY")))
	text, err := client.Send(ctx, "", "Summarise the deviation handling procedure")

Cancelling ctx aborts a pending retry wait with an error wrapping domain.ErrCanceled.
*/
package llm
