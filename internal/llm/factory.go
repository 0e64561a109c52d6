package llm

import (
	"context"
	"fmt"
	"strings"
)

// Options selects and configures a provider.
type Options struct {
	Provider     string
	APIKey       string
	BaseURL      string
	EmbedModel   string
	ChatModel    string
	ExtractModel string
	Dimension    int
}

// Clients bundles the three roles the pipeline needs. Extract and Generate
// may share a connection but usually run different models.
type Clients struct {
	Embedder Embedder
	Extract  Chat
	Generate Chat
}

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewClients builds provider clients by name.
func NewClients(ctx context.Context, opts Options) (*Clients, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openrouter"
	}

	switch provider {
	case "openai", "openrouter":
		baseURL := opts.BaseURL
		if baseURL == "" && provider == "openrouter" {
			baseURL = openRouterBaseURL
		}
		c := NewOpenAIClient(OpenAIConfig{
			APIKey:     opts.APIKey,
			BaseURL:    baseURL,
			EmbedModel: opts.EmbedModel,
			ChatModel:  opts.ChatModel,
			Dimension:  opts.Dimension,
		})
		return &Clients{
			Embedder: c,
			Extract:  c.WithChatModel(opts.ExtractModel),
			Generate: c,
		}, nil
	case "gemini":
		c, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:     opts.APIKey,
			EmbedModel: opts.EmbedModel,
			ChatModel:  opts.ChatModel,
			Dimension:  opts.Dimension,
		})
		if err != nil {
			return nil, err
		}
		return &Clients{
			Embedder: c,
			Extract:  c.WithChatModel(opts.ExtractModel),
			Generate: c,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", opts.Provider)
	}
}
