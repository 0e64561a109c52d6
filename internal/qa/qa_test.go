package qa

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChat returns canned output or a canned error.
type stubChat struct {
	reply string
	err   error
	// last prompts, for assertions
	system string
	user   string
}

func (s *stubChat) Complete(_ context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	return s.reply, s.err
}

func TestEntityExtractor(t *testing.T) {
	t.Run("Parses plain JSON", func(t *testing.T) {
		chat := &stubChat{reply: `{"entities": ["Pump", "Fuel Valve"]}`}
		ext := NewEntityExtractor(chat)

		entities, err := ext.Extract(context.Background(), "How does the Pump feed the Fuel Valve?")
		require.NoError(t, err)
		assert.Equal(t, []string{"Pump", "Fuel Valve"}, entities)
		assert.Contains(t, chat.user, "Pump")
	})

	t.Run("Strips markdown fences", func(t *testing.T) {
		chat := &stubChat{reply: "```json\n{\"entities\": [\"Pump\"]}\n```"}
		ext := NewEntityExtractor(chat)

		entities, err := ext.Extract(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, []string{"Pump"}, entities)
	})

	t.Run("Empty list is valid", func(t *testing.T) {
		chat := &stubChat{reply: `{"entities": []}`}
		ext := NewEntityExtractor(chat)

		entities, err := ext.Extract(context.Background(), "q")
		require.NoError(t, err)
		assert.Empty(t, entities)
	})

	t.Run("Transport failure becomes GenerationError", func(t *testing.T) {
		chat := &stubChat{err: errors.New("boom")}
		ext := NewEntityExtractor(chat)

		_, err := ext.Extract(context.Background(), "q")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "extract", genErr.Stage)
	})

	t.Run("Garbage output becomes GenerationError", func(t *testing.T) {
		chat := &stubChat{reply: "sure! here are the entities:"}
		ext := NewEntityExtractor(chat)

		_, err := ext.Extract(context.Background(), "q")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
	})
}

func validQASetJSON() string {
	categories := []string{
		"simple_fact", "simple_conditional", "comparison", "interpretative",
		"multi_answer", "aggregation", "multi_hop", "heavy_post",
		"erroneous", "summary",
	}
	out := "{"
	for i, c := range categories {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`%q: {"question": "q%d", "answer": "a%d [S00001]", "sources": ["S00001"]}`, c, i, i)
	}
	return out + "}"
}

func TestGenerator(t *testing.T) {
	t.Run("Valid ten-category set", func(t *testing.T) {
		chat := &stubChat{reply: validQASetJSON()}
		gen := NewGenerator(chat)

		set, err := gen.Generate(context.Background(), "seed", []string{"[S00001] (page 1)\ntext"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "a0 [S00001]", set.SimpleFact.Answer)
		assert.Len(t, set.Categories(), 10)
		assert.Contains(t, chat.user, "## Original question\nseed")
		assert.Contains(t, chat.system, "TEN Q-A pairs")
	})

	t.Run("Missing category is schema-invalid", func(t *testing.T) {
		chat := &stubChat{reply: `{"simple_fact": {"question": "q", "answer": "a", "sources": []}}`}
		gen := NewGenerator(chat)

		_, err := gen.Generate(context.Background(), "seed", nil, nil)
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "generate", genErr.Stage)
	})

	t.Run("Transport failure becomes GenerationError", func(t *testing.T) {
		chat := &stubChat{err: errors.New("rate limited")}
		gen := NewGenerator(chat)

		_, err := gen.Generate(context.Background(), "seed", nil, nil)
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
	})
}
