package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"mbseqa/internal/llm"
)

// EntityExtractor pulls model element names out of a seed question via one
// LLM call. Duplicates and names absent from the graph are both valid
// outputs; the resolver deals with them.
type EntityExtractor struct {
	chat llm.Chat
}

func NewEntityExtractor(chat llm.Chat) *EntityExtractor {
	return &EntityExtractor{chat: chat}
}

type entityList struct {
	Entities []string `json:"entities"`
}

// Extract returns the entity names mentioned in the question, in the order
// the model produced them.
func (e *EntityExtractor) Extract(ctx context.Context, question string) ([]string, error) {
	raw, err := e.chat.Complete(ctx, extractSystemPrompt, question)
	if err != nil {
		return nil, &GenerationError{Stage: "extract", Err: err}
	}

	var parsed entityList
	if err := json.Unmarshal([]byte(stripCodeBlock(raw)), &parsed); err != nil {
		return nil, &GenerationError{
			Stage: "extract",
			Err:   fmt.Errorf("parse entities json: %w (raw: %s)", err, truncate(raw, 200)),
		}
	}
	return parsed.Entities, nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// stripCodeBlock removes a markdown fence when the model wraps its JSON in
// one anyway.
func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
