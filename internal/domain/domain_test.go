package domain

import "testing"

func TestParseIntent(t *testing.T) {
	tests := []struct {
		label string
		want  Intent
	}{
		{"qa", IntentQA},
		{"summary", IntentSummary},
		{"unknown", IntentUnknown},
		{"QA", IntentUnknown},
		{" qa", IntentUnknown},
		{"invalid_tool", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseIntent(tt.label); got != tt.want {
				t.Errorf("ParseIntent(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}
