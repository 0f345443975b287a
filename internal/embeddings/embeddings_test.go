package embeddings

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float32
	}{
		{
			name:     "identical vectors",
			a:        Vector{1, 0, 0},
			b:        Vector{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        Vector{1, 0},
			b:        Vector{0, 1},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        Vector{1, 0},
			b:        Vector{-1, 0},
			expected: -1.0,
		},
		{
			name:     "empty vectors",
			a:        Vector{},
			b:        Vector{},
			expected: 0.0,
		},
		{
			name:     "different length vectors",
			a:        Vector{1, 2},
			b:        Vector{1, 2, 3},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        Vector{0, 0},
			b:        Vector{1, 1},
			expected: 0.0,
		},
		{
			name:     "normalized vectors 45 degrees",
			a:        Vector{1, 0},
			b:        Vector{0.707, 0.707},
			expected: 0.707,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(result-tt.expected)) > 0.01 {
				t.Errorf("got %f, want %f", result, tt.expected)
			}
		})
	}
}

func TestOllamaEmbedderBatchesAndKeepsOrder(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		// Answer in reverse order; the embedder must reorder by index.
		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Object: "embedding", Index: i, Embedding: []float64{float64(len(req.Input[i]))}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "model": req.Model, "data": data})
	}))
	defer srv.Close()

	e, err := NewOllamaEmbedder(srv.URL, "all-minilm")
	if err != nil {
		t.Fatalf("NewOllamaEmbedder: %v", err)
	}
	e.batchSize = 2

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
	for i, want := range []float32{1, 2, 3} {
		if len(vecs[i]) != 1 || vecs[i][0] != want {
			t.Errorf("vector %d = %v, want [%v]", i, vecs[i], want)
		}
	}

	single, err := e.Embed(context.Background(), "dddd")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if single[0] != 4 {
		t.Errorf("expected [4], got %v", single)
	}
}
