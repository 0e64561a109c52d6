package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	geminiEmbedBatchSize  = 50
	geminiEmbedBatchDelay = 700 * time.Millisecond
	geminiRetryDelay      = 6 * time.Second
	geminiMaxRetries      = 5
)

// GeminiClient implements Embedder and Chat against the Gemini API.
type GeminiClient struct {
	client     *genai.Client
	embedModel string
	chatModel  string
	dimension  int
}

type GeminiConfig struct {
	APIKey     string
	EmbedModel string
	ChatModel  string
	Dimension  int
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{
		client:     client,
		embedModel: cfg.EmbedModel,
		chatModel:  cfg.ChatModel,
		dimension:  cfg.Dimension,
	}, nil
}

func (g *GeminiClient) Dimension() int { return g.dimension }

func (g *GeminiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var results [][]float32

	var config *genai.EmbedContentConfig
	if g.dimension > 0 {
		dim := int32(g.dimension)
		config = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	for i := 0; i < len(texts); i += geminiEmbedBatchSize {
		if i > 0 {
			if !waitOrCancel(ctx, geminiEmbedBatchDelay) {
				return nil, ctx.Err()
			}
		}
		end := min(i+geminiEmbedBatchSize, len(texts))
		batch := texts[i:end]

		contents := make([]*genai.Content, 0, len(batch))
		for _, text := range batch {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		var res *genai.EmbedContentResponse
		var err error
		for attempt := 0; attempt <= geminiMaxRetries; attempt++ {
			res, err = g.client.Models.EmbedContent(ctx, g.embedModel, contents, config)
			if err == nil {
				break
			}
			if !isRateLimitError(err) || attempt == geminiMaxRetries {
				return nil, fmt.Errorf("failed to embed text: %w", err)
			}
			if !waitOrCancel(ctx, geminiRetryDelay) {
				return nil, ctx.Err()
			}
		}

		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(res.Embeddings), len(batch))
		}
		for _, emb := range res.Embeddings {
			results = append(results, emb.Values)
		}
	}
	return results, nil
}

func (g *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	var lastErr error
	for attempt := 0; attempt <= geminiMaxRetries; attempt++ {
		resp, err := g.client.Models.GenerateContent(ctx, g.chatModel, genai.Text(user), config)
		if err == nil {
			text := resp.Text()
			if strings.TrimSpace(text) == "" {
				return "", fmt.Errorf("empty completion response")
			}
			return text, nil
		}
		lastErr = err
		if !isRateLimitError(err) || attempt == geminiMaxRetries {
			break
		}
		if !waitOrCancel(ctx, geminiRetryDelay) {
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// WithChatModel returns a shallow copy bound to a different chat model.
func (g *GeminiClient) WithChatModel(model string) *GeminiClient {
	cp := *g
	cp.chatModel = model
	return &cp
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "RESOURCE_EXHAUSTED") || strings.Contains(s, "quota")
}
