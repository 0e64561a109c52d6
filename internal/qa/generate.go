package qa

import (
	"context"
	"encoding/json"
	"fmt"

	"mbseqa/internal/llm"
)

// Generator runs the QA-generation call over one question's assembled
// context blocks.
type Generator struct {
	chat llm.Chat
}

func NewGenerator(chat llm.Chat) *Generator {
	return &Generator{chat: chat}
}

// Generate produces the ten-category QASet. A transport failure or a
// response that does not satisfy the schema both surface as
// *GenerationError.
func (g *Generator) Generate(ctx context.Context, question string, pdfBlocks, modelBlocks []string) (*QASet, error) {
	raw, err := g.chat.Complete(ctx, generateSystemPrompt(), generateUserPrompt(question, pdfBlocks, modelBlocks))
	if err != nil {
		return nil, &GenerationError{Stage: "generate", Err: err}
	}

	var set QASet
	if err := json.Unmarshal([]byte(stripCodeBlock(raw)), &set); err != nil {
		return nil, &GenerationError{
			Stage: "generate",
			Err:   fmt.Errorf("parse qa json: %w (raw: %s)", err, truncate(raw, 200)),
		}
	}
	if err := set.validate(); err != nil {
		return nil, &GenerationError{
			Stage: "generate",
			Err:   fmt.Errorf("schema-invalid qa set: %w", err),
		}
	}
	return &set, nil
}
