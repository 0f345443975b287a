package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"assistant/internal/llm"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings API (OpenAI or Ollama).
type OpenAIEmbedder struct {
	model     openai.EmbeddingModel
	client    *openai.Client
	batchSize int
}

const (
	defaultEmbeddingTimeout = 60 * time.Second
	defaultBatchSize        = 64
	defaultOllamaModel      = "all-minilm"
)

// NewOpenAIEmbedder creates an embedder against api.openai.com.
func NewOpenAIEmbedder(apiKey string, model openai.EmbeddingModel) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIEmbedder{model: model, client: &cli, batchSize: defaultBatchSize}, nil
}

// NewOllamaEmbedder creates an embedder against a local Ollama server.
func NewOllamaEmbedder(baseURL, model string) (*OpenAIEmbedder, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if model == "" {
		model = defaultOllamaModel
	}
	cli := openai.NewClient(
		option.WithBaseURL(llm.OllamaCompatURL(baseURL)),
		option.WithAPIKey("ollama"),
		option.WithMaxRetries(0),
	)
	return &OpenAIEmbedder{model: openai.EmbeddingModel(model), client: &cli, batchSize: defaultBatchSize}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in request-sized batches, preserving input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	if e == nil || e.client == nil {
		return nil, fmt.Errorf("nil openai embedder")
	}
	out := make([]Vector, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		if err := e.embedInto(ctx, texts[start:end], out[start:end]); err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
	}
	return out, nil
}

func (e *OpenAIEmbedder) embedInto(ctx context.Context, texts []string, dst []Vector) error {
	reqCtx, cancel := context.WithTimeout(ctx, defaultEmbeddingTimeout)
	defer cancel()

	resp, err := e.client.Embeddings.New(reqCtx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: e.model,
	})
	if err != nil {
		return err
	}
	if len(resp.Data) != len(texts) {
		return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	for i, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(dst) {
			idx = i
		}
		// Convert []float64 to []float32
		vec := make(Vector, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		dst[idx] = vec
	}
	return nil
}
