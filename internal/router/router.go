package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"assistant/internal/completion"
	"assistant/internal/domain"
	"assistant/internal/llm"
	"assistant/internal/metrics"
	"assistant/internal/prompts"
)

// Router classifies a query into an intent with one model call.
type Router struct {
	llm llm.Client
	log *slog.Logger
}

func New(client llm.Client, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{llm: client, log: log}
}

// Route returns the model's decision for query. An unparseable completion
// yields the unknown fallback rather than an error; only a failed model
// call is returned as an error.
func (r *Router) Route(ctx context.Context, query string) (domain.RouteDecision, error) {
	start := time.Now()
	raw, err := r.llm.Complete(ctx, prompts.Router(query))
	metrics.ObserveLLM("router", start, err)
	if err != nil {
		return domain.RouteDecision{}, fmt.Errorf("router completion: %w", err)
	}

	decision, ok := completion.ParseRouteDecision(raw, query)
	if !ok {
		metrics.IncParseFallback("router")
		r.log.Warn("router response was not a JSON object; routing to unknown", "raw", truncate(raw, 500))
	}
	metrics.IncRouteDecision(string(decision.Intent))
	r.log.Debug("routed query", "intent", decision.Intent, "reasoning", decision.Reasoning)
	return decision, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
