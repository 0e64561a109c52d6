package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI struct {
		Provider     string `yaml:"provider"` // openai, openrouter, gemini
		APIKey       string `yaml:"api_key"`
		BaseURL      string `yaml:"base_url"`
		EmbedModel   string `yaml:"embed_model"`
		ChatModel    string `yaml:"chat_model"`    // QA generation model
		ExtractModel string `yaml:"extract_model"` // entity extraction model
		Dimension    int    `yaml:"dimension"`
	} `yaml:"ai"`
	Chunking struct {
		Size    int `yaml:"size"`    // window length in characters
		Overlap int `yaml:"overlap"` // overlap between consecutive windows
	} `yaml:"chunking"`
	Resolver struct {
		Threshold float64 `yaml:"threshold"` // fuzzy acceptance cutoff, 0-1
	} `yaml:"resolver"`
	Retrieval struct {
		PDFChunks     int `yaml:"pdf_chunks"`     // top-k spec chunks per question
		ModelSnippets int `yaml:"model_snippets"` // top-n model snippets per question
	} `yaml:"retrieval"`
	Snippet struct {
		DepthLimit int `yaml:"depth_limit"` // 0 = unbounded
		MaxLen     int `yaml:"max_len"`     // rendered snippet cap in runes
	} `yaml:"snippet"`
	Pipeline struct {
		Workers            int `yaml:"workers"`
		QuestionTimeoutSec int `yaml:"question_timeout_sec"`
	} `yaml:"pipeline"`
	Cache struct {
		Path string `yaml:"path"` // SQLite embedding cache, empty disables
	} `yaml:"cache"`
	Logging struct {
		Env   string `yaml:"env"` // dev or prod
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads an optional YAML config file, layered under environment
// variables. A missing file is not an error; env-only setups are common
// when running from CI.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		file, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// 2. Override with environment variables if present
	if v := os.Getenv("MBSEQA_AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := firstEnv("MBSEQA_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := firstEnv("MBSEQA_BASE_URL", "OPENROUTER_BASE_URL", "OPENAI_API_BASE"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("MBSEQA_EMBED_MODEL"); v != "" {
		cfg.AI.EmbedModel = v
	}
	if v := os.Getenv("MBSEQA_CHAT_MODEL"); v != "" {
		cfg.AI.ChatModel = v
	}
	if v := os.Getenv("MBSEQA_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Workers = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AI.Provider == "" {
		c.AI.Provider = "openrouter"
	}
	if c.AI.EmbedModel == "" {
		c.AI.EmbedModel = "text-embedding-3-small"
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = "google/gemini-2.5-pro-preview"
	}
	if c.AI.ExtractModel == "" {
		c.AI.ExtractModel = "google/gemini-2.0-flash-001"
	}
	if c.Chunking.Size <= 0 {
		c.Chunking.Size = 750
	}
	if c.Chunking.Overlap <= 0 || c.Chunking.Overlap >= c.Chunking.Size {
		c.Chunking.Overlap = 100
	}
	if c.Resolver.Threshold <= 0 || c.Resolver.Threshold > 1 {
		c.Resolver.Threshold = 0.80
	}
	if c.Retrieval.PDFChunks <= 0 {
		c.Retrieval.PDFChunks = 5
	}
	if c.Retrieval.ModelSnippets <= 0 {
		c.Retrieval.ModelSnippets = 8
	}
	if c.Snippet.MaxLen <= 0 {
		c.Snippet.MaxLen = 600
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 1
	}
	if c.Pipeline.QuestionTimeoutSec <= 0 {
		c.Pipeline.QuestionTimeoutSec = 300
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI API key not configured (set MBSEQA_API_KEY or OPENROUTER_API_KEY)")
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
