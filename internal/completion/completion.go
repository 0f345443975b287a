// Package completion turns raw model completions into strict records.
// Parsing never fails hard: malformed output maps to a fixed fallback value
// and the caller is told the fallback was used.
package completion

import (
	"strings"

	"github.com/tidwall/gjson"

	"assistant/internal/domain"
)

const (
	// RouteParseFailure is the reasoning attached to a decision whose completion was not a JSON object.
	RouteParseFailure = "Failed to parse router response"
	// NoReasoning is used when the router omitted its reasoning.
	NoReasoning = "No reasoning provided"

	SummaryParseFailure = "Error parsing summary"
	unknownComponent    = "Unknown"
)

// RouteFallback is the decision used when the router completion cannot be parsed.
func RouteFallback(query string) domain.RouteDecision {
	return domain.RouteDecision{
		Intent:            domain.IntentUnknown,
		Reasoning:         RouteParseFailure,
		ReformulatedQuery: query,
	}
}

// SummaryFallback is the sentinel summary used when the completion cannot be parsed.
func SummaryFallback() domain.SummaryResult {
	return domain.SummaryResult{
		ReportedIssues:     []string{SummaryParseFailure},
		AffectedComponents: []string{unknownComponent},
		Severity:           domain.SeverityUnknown,
	}
}

// ParseRouteDecision reads the router completion. Fields are defaulted one by
// one: an unrecognised tool becomes unknown, missing reasoning gets a
// placeholder and a missing reformulated query falls back to query.
// ok is false only when raw is not a JSON object.
func ParseRouteDecision(raw, query string) (decision domain.RouteDecision, ok bool) {
	obj, ok := parseObject(raw)
	if !ok {
		return RouteFallback(query), false
	}

	decision = domain.RouteDecision{
		Intent:            domain.IntentUnknown,
		Reasoning:         NoReasoning,
		ReformulatedQuery: query,
	}
	if tool := field(obj, "tool"); tool.Type == gjson.String {
		decision.Intent = domain.ParseIntent(tool.Str)
	}
	if reasoning := field(obj, "reasoning"); reasoning.Type == gjson.String {
		decision.Reasoning = reasoning.Str
	}
	if reformulated := field(obj, "reformulated_query"); reformulated.Type == gjson.String {
		decision.ReformulatedQuery = reformulated.Str
	}
	return decision, true
}

// ParseSummary reads the summary completion. Unlike ParseRouteDecision there
// is no per-field defaulting: all three keys must be present and well typed,
// otherwise the whole result is the sentinel.
func ParseSummary(raw string) (domain.SummaryResult, bool) {
	obj, ok := parseObject(raw)
	if !ok {
		return SummaryFallback(), false
	}

	issues, ok := stringArray(field(obj, "reported_issues"))
	if !ok {
		return SummaryFallback(), false
	}
	components, ok := stringArray(field(obj, "affected_components"))
	if !ok {
		return SummaryFallback(), false
	}
	severity := field(obj, "severity")
	if severity.Type != gjson.String {
		return SummaryFallback(), false
	}

	return domain.SummaryResult{
		ReportedIssues:     issues,
		AffectedComponents: components,
		Severity:           domain.Severity(severity.Str),
	}, true
}

func parseObject(raw string) (gjson.Result, bool) {
	trimmed := strings.TrimSpace(raw)
	if !gjson.Valid(trimmed) {
		return gjson.Result{}, false
	}
	obj := gjson.Parse(trimmed)
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	return obj, true
}

// field returns the value of key in obj. When the key repeats, the last
// occurrence wins, matching common JSON decoders; gjson's Get keeps the first.
func field(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			out = v
		}
		return true
	})
	return out
}

func stringArray(value gjson.Result) ([]string, bool) {
	if !value.IsArray() {
		return nil, false
	}
	items := value.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, false
		}
		out = append(out, item.Str)
	}
	return out, true
}
