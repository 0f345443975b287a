package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncRouteDecision(t *testing.T) {
	before := testutil.ToFloat64(routeDecisions.WithLabelValues("qa"))
	IncRouteDecision("qa")
	IncRouteDecision("qa")
	if got := testutil.ToFloat64(routeDecisions.WithLabelValues("qa")); got != before+2 {
		t.Errorf("expected %v, got %v", before+2, got)
	}
}

func TestObserveIndexBuild(t *testing.T) {
	okBefore := testutil.ToFloat64(indexRebuilds.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(indexRebuilds.WithLabelValues("error"))

	ObserveIndexBuild(42, nil)
	ObserveIndexBuild(0, errors.New("boom"))

	if got := testutil.ToFloat64(indexRebuilds.WithLabelValues("ok")); got != okBefore+1 {
		t.Errorf("ok builds: got %v", got)
	}
	if got := testutil.ToFloat64(indexRebuilds.WithLabelValues("error")); got != errBefore+1 {
		t.Errorf("failed builds: got %v", got)
	}
	if got := testutil.ToFloat64(indexFragments); got != 42 {
		t.Errorf("fragments gauge: got %v, want 42", got)
	}
}

func TestObserveLLMDoesNotPanic(t *testing.T) {
	ObserveLLM("router", time.Now(), nil)
	ObserveLLM("qa", time.Now(), errors.New("down"))
	IncParseFallback("summary")
	IncCacheLookup("hit")
	SetIndexFragments(3)
}
