package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIEmbedBatchSize = 64
	openAIMaxRetries     = 5
	openAIRetryDelay     = 3 * time.Second
)

// OpenAIClient talks to any OpenAI-compatible API (OpenAI, OpenRouter,
// Nebius). One client serves both embedding and chat roles.
type OpenAIClient struct {
	client     *openai.Client
	embedModel openai.EmbeddingModel
	chatModel  string
	dimension  int
}

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Dimension  int
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		embedModel: openai.EmbeddingModel(cfg.EmbedModel),
		chatModel:  cfg.ChatModel,
		dimension:  cfg.Dimension,
	}
}

func (c *OpenAIClient) Dimension() int { return c.dimension }

// Embed batches inputs and retries transient API failures.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += openAIEmbedBatchSize {
		end := min(i+openAIEmbedBatchSize, len(texts))
		vecs, err := c.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		results = append(results, vecs...)
	}
	return results, nil
}

func (c *OpenAIClient) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          batch,
		Model:          c.embedModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.dimension > 0 {
		req.Dimensions = c.dimension
	}

	var lastErr error
	for attempt := 0; attempt <= openAIMaxRetries; attempt++ {
		resp, err := c.client.CreateEmbeddings(ctx, req)
		if err == nil {
			if len(resp.Data) != len(batch) {
				return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(resp.Data), len(batch))
			}
			out := make([][]float32, len(batch))
			for _, item := range resp.Data {
				if item.Index < 0 || item.Index >= len(batch) {
					continue
				}
				out[item.Index] = item.Embedding
			}
			for i := range out {
				if len(out[i]) == 0 {
					return nil, fmt.Errorf("embedding missing at index %d", i)
				}
			}
			return out, nil
		}
		lastErr = parseAPIError(err)
		if !isRetryable(err) || attempt == openAIMaxRetries {
			break
		}
		if !waitOrCancel(ctx, openAIRetryDelay) {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// Complete runs one chat turn and returns the raw assistant text.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= openAIMaxRetries; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("empty completion response")
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = parseAPIError(err)
		if !isRetryable(err) || attempt == openAIMaxRetries {
			break
		}
		if !waitOrCancel(ctx, openAIRetryDelay) {
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// WithChatModel returns a shallow copy bound to a different chat model, so
// the extraction and generation calls can use separate models over the same
// connection settings.
func (c *OpenAIClient) WithChatModel(model string) *OpenAIClient {
	cp := *c
	cp.chatModel = model
	return &cp
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	return false
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("LLM API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("LLM API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	return err
}

func waitOrCancel(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
