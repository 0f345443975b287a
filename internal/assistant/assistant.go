package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"assistant/internal/domain"
	"assistant/internal/tools"
)

// ErrEmptyQuery is returned for a query that is empty after trimming whitespace.
var ErrEmptyQuery = errors.New("query must not be empty")

// UnknownMessage is returned when the router finds no suitable tool.
const UnknownMessage = "I'm not sure how to process this query. Could you rephrase it?"

// Router decides which tool handles a query.
type Router interface {
	Route(ctx context.Context, query string) (domain.RouteDecision, error)
}

// UnknownResult is the result body for the unknown intent.
type UnknownResult struct {
	Message string `json:"message"`
}

// Assistant routes a query and dispatches it to the matching tool.
type Assistant struct {
	router  Router
	qa      tools.Tool[domain.QAResult]
	summary tools.Tool[domain.SummaryResult]
	log     *slog.Logger
}

func New(r Router, qa tools.Tool[domain.QAResult], summary tools.Tool[domain.SummaryResult], log *slog.Logger) *Assistant {
	if log == nil {
		log = slog.Default()
	}
	return &Assistant{router: r, qa: qa, summary: summary, log: log}
}

// Handle answers query. The chosen tool receives the reformulated query.
func (a *Assistant) Handle(ctx context.Context, query string) (domain.Response, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Response{}, ErrEmptyQuery
	}

	decision, err := a.router.Route(ctx, query)
	if err != nil {
		return domain.Response{}, err
	}

	resp := domain.Response{ToolUsed: decision.Intent, Reasoning: decision.Reasoning}
	switch decision.Intent {
	case domain.IntentQA:
		res, err := a.qa.Run(ctx, decision.ReformulatedQuery)
		if err != nil {
			return domain.Response{}, fmt.Errorf("qa tool: %w", err)
		}
		resp.Result = res
	case domain.IntentSummary:
		res, err := a.summary.Run(ctx, decision.ReformulatedQuery)
		if err != nil {
			return domain.Response{}, fmt.Errorf("summary tool: %w", err)
		}
		resp.Result = res
	default:
		resp.ToolUsed = domain.IntentUnknown
		resp.Result = UnknownResult{Message: UnknownMessage}
	}

	a.log.Info("handled query", "tool", resp.ToolUsed)
	return resp, nil
}
