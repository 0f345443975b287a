// Package domain holds the request-scoped value types shared by the router,
// the tools and the HTTP layer.
package domain

// Intent is the handling category chosen for a query.
type Intent string

const (
	IntentQA      Intent = "qa"
	IntentSummary Intent = "summary"
	IntentUnknown Intent = "unknown"
)

// ParseIntent maps a model-supplied label onto an Intent. Anything outside the
// known set, including case variants, becomes IntentUnknown.
func ParseIntent(label string) Intent {
	switch Intent(label) {
	case IntentQA, IntentSummary, IntentUnknown:
		return Intent(label)
	default:
		return IntentUnknown
	}
}

// RouteDecision is the router's classification of a single query.
type RouteDecision struct {
	Intent            Intent `json:"tool"`
	Reasoning         string `json:"reasoning"`
	ReformulatedQuery string `json:"reformulated_query"`
}

// SourceDocument is a preview of a retrieved fragment returned alongside an answer.
type SourceDocument struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// QAResult is the answer produced by the QA tool.
type QAResult struct {
	Answer  string           `json:"answer"`
	Sources []SourceDocument `json:"source_documents"`
}

// Severity rates a summarized issue.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityUnknown  Severity = "Unknown"
)

// SummaryResult is the structured summary produced by the summary tool.
type SummaryResult struct {
	ReportedIssues     []string `json:"reported_issues"`
	AffectedComponents []string `json:"affected_components"`
	Severity           Severity `json:"severity"`
}

// Response is the envelope returned for every handled query.
type Response struct {
	Result    any    `json:"result"`
	ToolUsed  Intent `json:"tool_used"`
	Reasoning string `json:"reasoning"`
}
