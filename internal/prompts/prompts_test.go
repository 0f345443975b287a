package prompts

import (
	"strings"
	"testing"
)

func TestRouterEmbedsQueryAndContract(t *testing.T) {
	p := Router("What are the known login issues?")

	for _, want := range []string{
		"USER QUERY: What are the known login issues?",
		`"qa"`, `"summary"`, `"unknown"`,
		"tool", "reasoning", "reformulated_query",
		`{"tool": "summary"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("router prompt missing %q", want)
		}
	}
}

func TestRouterIsPure(t *testing.T) {
	if Router("a") != Router("a") {
		t.Fatal("expected identical prompts for identical input")
	}
	if Router("a") == Router("b") {
		t.Fatal("expected different prompts for different input")
	}
}

func TestRouterKeepsPercentSigns(t *testing.T) {
	p := Router("CPU at 100% since %s deploy")
	if !strings.Contains(p, "CPU at 100% since %s deploy") {
		t.Errorf("query was not embedded verbatim: %q", p)
	}
}

func TestQAJoinsContexts(t *testing.T) {
	p := QA("Why does login fail?", []string{"first fragment", "second fragment"})

	if !strings.Contains(p, "Question: Why does login fail?") {
		t.Error("question not embedded")
	}
	if !strings.Contains(p, "first fragment\n\nsecond fragment") {
		t.Error("contexts not joined by a blank line")
	}
	if !strings.Contains(p, InsufficientContextAnswer) {
		t.Error("refusal instruction missing")
	}
}

func TestQAWithoutContext(t *testing.T) {
	p := QA("anything?", nil)
	if !strings.Contains(p, "Context information from relevant documents:\n\n") {
		t.Errorf("expected empty context block, got %q", p)
	}
}

func TestSummaryEmbedsIssueText(t *testing.T) {
	p := Summary("The dashboard fails to load on Safari.")
	for _, want := range []string{
		"The dashboard fails to load on Safari.",
		"reported_issues", "affected_components", "severity",
		"Critical, High, Medium, Low",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("summary prompt missing %q", want)
		}
	}
}
