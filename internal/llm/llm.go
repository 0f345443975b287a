package llm

import "context"

// Temperature is fixed at zero so completions are greedy and repeatable.
const Temperature = 0.0

// Client is a minimal text-completion interface to allow pluggable providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
