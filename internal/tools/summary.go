package tools

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

// SummaryTool extracts issues, components and severity from an issue report.
type SummaryTool struct {
	llm llm.Client
	log *slog.Logger
}

func NewSummaryTool(client llm.Client, log *slog.Logger) *SummaryTool {
	if log == nil {
		log = slog.Default()
	}
	return &SummaryTool{llm: client, log: log}
}

func (t *SummaryTool) Run(ctx context.Context, issueText string) (domain.SummaryResult, error) {
	start := time.Now()
	raw, err := t.llm.Complete(ctx, prompts.Summary(issueText))
	metrics.ObserveLLM("summary", start, err)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("summary completion: %w", err)
	}

	result, ok := completion.ParseSummary(raw)
	if !ok {
		metrics.IncParseFallback("summary")
		t.log.Warn("summary response did not match the expected shape", "raw", raw)
	}
	return result, nil
}
