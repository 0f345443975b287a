package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls an OpenAI-compatible Chat Completions API. The same
// client serves hosted OpenAI and a local Ollama server through its /v1 endpoint.
type OpenAIClient struct {
	model   openai.ChatModel
	client  *openai.Client
	timeout time.Duration
}

const (
	defaultChatTimeout = 120 * time.Second
	defaultOllamaModel = "mistral:7b"

	// Ollama ignores the key but the SDK requires one.
	ollamaPlaceholderKey = "ollama"
)

var ErrEmptyCompletion = errors.New("llm: no completion returned")

// NewOpenAIClient builds a client against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{model: model, client: &cli, timeout: defaultChatTimeout}, nil
}

// NewOllamaClient builds a client against the OpenAI-compatible endpoint of
// the Ollama server at baseURL (e.g. http://localhost:11434).
func NewOllamaClient(baseURL string, model string) (*OpenAIClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if model == "" {
		model = defaultOllamaModel
	}
	cli := openai.NewClient(
		option.WithBaseURL(OllamaCompatURL(baseURL)),
		option.WithAPIKey(ollamaPlaceholderKey),
		option.WithMaxRetries(0),
	)
	return &OpenAIClient{model: openai.ChatModel(model), client: &cli, timeout: defaultChatTimeout}, nil
}

// OllamaCompatURL returns the OpenAI-compatible API root for an Ollama base URL.
func OllamaCompatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, "/v1") {
		return base + "/"
	}
	return base + "/v1/"
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string {
	return string(c.model)
}

// Complete sends prompt as a single user message and returns the text of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(prompt),
		Temperature: openai.Float(Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (model %s): %w", c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(prompt string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(prompt),
				},
			},
		},
	}
}
