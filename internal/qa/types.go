package qa

import "fmt"

// QA is one question-answer pair with the citation tokens it relies on.
type QA struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

// QASet is the fixed ten-category output of one generation call. Every
// category must be present and answered for the set to be schema-valid.
type QASet struct {
	SimpleFact        QA `json:"simple_fact"`
	SimpleConditional QA `json:"simple_conditional"`
	Comparison        QA `json:"comparison"`
	Interpretative    QA `json:"interpretative"`
	MultiAnswer       QA `json:"multi_answer"`
	Aggregation       QA `json:"aggregation"`
	MultiHop          QA `json:"multi_hop"`
	HeavyPost         QA `json:"heavy_post"`
	Erroneous         QA `json:"erroneous"`
	Summary           QA `json:"summary"`
}

// Categories lists the QA pairs in schema order.
func (s *QASet) Categories() []QA {
	return []QA{
		s.SimpleFact, s.SimpleConditional, s.Comparison, s.Interpretative,
		s.MultiAnswer, s.Aggregation, s.MultiHop, s.HeavyPost,
		s.Erroneous, s.Summary,
	}
}

func (s *QASet) validate() error {
	names := []string{
		"simple_fact", "simple_conditional", "comparison", "interpretative",
		"multi_answer", "aggregation", "multi_hop", "heavy_post",
		"erroneous", "summary",
	}
	for i, pair := range s.Categories() {
		if pair.Answer == "" {
			return fmt.Errorf("category %q has no answer", names[i])
		}
	}
	return nil
}

// GenerationError reports a failed or schema-invalid LLM call. The batch
// runner records it on the question's result and moves on; it never aborts
// sibling questions.
type GenerationError struct {
	Stage string // "extract" or "generate"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
