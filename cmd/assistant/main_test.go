package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assistant/internal/assistant"
	"assistant/internal/cache"
	"assistant/internal/domain"
	"assistant/internal/index"
	"assistant/internal/logger"
	"assistant/internal/queue"
	"assistant/internal/reload"
	"assistant/internal/tools"
)

type fixture struct {
	router  *assistant.MockRouter
	qa      *tools.MockQATool
	summary *tools.MockSummaryTool
	builder *reload.MockBuilder
	srv     *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		router:  new(assistant.MockRouter),
		qa:      new(tools.MockQATool),
		summary: new(tools.MockSummaryTool),
		builder: new(reload.MockBuilder),
	}
	log := logger.Nop()
	a := assistant.New(f.router, f.qa, f.summary, log)
	rl := reload.New(f.builder, cache.NewNoOpCache(), queue.NewNoOpQueue(), log)
	f.srv = httptest.NewServer(newRouter(log, 5*time.Second, a, rl))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"status": "healthy"}, decode(t, resp))
}

func TestQueryHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(*fixture)
		wantStatusCode int
		check          func(*testing.T, map[string]any)
	}{
		{
			name: "qa envelope",
			body: `{"query":"What are the login issues?"}`,
			setup: func(f *fixture) {
				f.router.On("Route", mock.Anything, "What are the login issues?").Return(domain.RouteDecision{
					Intent: domain.IntentQA, Reasoning: "docs question", ReformulatedQuery: "List login issues",
				}, nil).Once()
				f.qa.On("Run", mock.Anything, "List login issues").Return(domain.QAResult{
					Answer:  "Unicode passwords crash login.",
					Sources: []domain.SourceDocument{{Content: "Login crashes...", Source: "data/auth.txt"}},
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "qa", body["tool_used"])
				assert.Equal(t, "docs question", body["reasoning"])
				result := body["result"].(map[string]any)
				assert.Equal(t, "Unicode passwords crash login.", result["answer"])
				sources := result["source_documents"].([]any)
				require.Len(t, sources, 1)
				assert.Equal(t, "data/auth.txt", sources[0].(map[string]any)["source"])
			},
		},
		{
			name: "summary envelope",
			body: `{"query":"Users say export fails"}`,
			setup: func(f *fixture) {
				f.router.On("Route", mock.Anything, "Users say export fails").Return(domain.RouteDecision{
					Intent: domain.IntentSummary, Reasoning: "issue report", ReformulatedQuery: "Summarize: export fails",
				}, nil).Once()
				f.summary.On("Run", mock.Anything, "Summarize: export fails").Return(domain.SummaryResult{
					ReportedIssues: []string{"export fails"}, AffectedComponents: []string{"export"}, Severity: domain.SeverityMedium,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "summary", body["tool_used"])
				result := body["result"].(map[string]any)
				assert.Equal(t, "Medium", result["severity"])
				assert.Equal(t, []any{"export"}, result["affected_components"])
			},
		},
		{
			name: "unknown envelope",
			body: `{"query":"hello"}`,
			setup: func(f *fixture) {
				f.router.On("Route", mock.Anything, "hello").Return(domain.RouteDecision{
					Intent: domain.IntentUnknown, Reasoning: "greeting", ReformulatedQuery: "hello",
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "unknown", body["tool_used"])
				assert.Equal(t, map[string]any{"message": assistant.UnknownMessage}, body["result"])
			},
		},
		{
			name:           "empty query",
			body:           `{"query":""}`,
			setup:          func(*fixture) {},
			wantStatusCode: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Query cannot be empty", body["detail"])
			},
		},
		{
			name:           "whitespace query",
			body:           `{"query":"   "}`,
			setup:          func(*fixture) {},
			wantStatusCode: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Query cannot be empty", body["detail"])
			},
		},
		{
			name:           "malformed json",
			body:           `{"query":`,
			setup:          func(*fixture) {},
			wantStatusCode: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "invalid payload", body["detail"])
			},
		},
		{
			name: "upstream failure",
			body: `{"query":"anything"}`,
			setup: func(f *fixture) {
				f.router.On("Route", mock.Anything, "anything").Return(domain.RouteDecision{}, errors.New("connection refused")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "failed to process query", body["detail"])
			},
		},
		{
			name: "index not ready",
			body: `{"query":"What is X?"}`,
			setup: func(f *fixture) {
				f.router.On("Route", mock.Anything, "What is X?").Return(domain.RouteDecision{
					Intent: domain.IntentQA, ReformulatedQuery: "What is X?",
				}, nil).Once()
				f.qa.On("Run", mock.Anything, "What is X?").Return(domain.QAResult{}, index.ErrNotReady).Once()
			},
			wantStatusCode: http.StatusServiceUnavailable,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "document index is not ready", body["detail"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			resp := f.post(t, "/query", tt.body)
			assert.Equal(t, tt.wantStatusCode, resp.StatusCode)
			tt.check(t, decode(t, resp))

			f.router.AssertExpectations(t)
			f.qa.AssertExpectations(t)
			f.summary.AssertExpectations(t)
		})
	}
}

func TestEmptyQueryNeverRoutes(t *testing.T) {
	f := newFixture(t)
	resp := f.post(t, "/query", `{"query":"\n\t "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	f.router.AssertNotCalled(t, "Route", mock.Anything, mock.Anything)
}

func TestReloadDocuments(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.builder.On("LoadOrBuild", mock.Anything, true).Return(nil).Once()

		resp := f.post(t, "/admin/reload-documents", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]any{"status": "Documents reloaded successfully"}, decode(t, resp))
		f.builder.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t)
		f.builder.On("LoadOrBuild", mock.Anything, true).Return(errors.New("embedder down")).Once()

		resp := f.post(t, "/admin/reload-documents", "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "failed to reload documents", decode(t, resp)["detail"])
	})
}

func TestReloadOutlivesCancelledRequest(t *testing.T) {
	b := new(reload.MockBuilder)
	b.On("LoadOrBuild", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return ctx.Err() == nil && hasDeadline
	}), true).Return(nil).Once()
	log := logger.Nop()
	rl := reload.New(b, cache.NewNoOpCache(), queue.NewNoOpQueue(), log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/admin/reload-documents", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handleReload(log, rl).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	b.AssertExpectations(t)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
