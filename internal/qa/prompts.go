package qa

import "strings"

const extractSystemPrompt = `You are an assistant that extracts model element names from user queries.
Return them ONLY as JSON matching this schema, with no prose around it:

{"entities": ["<exact name as it appears in the model>", ...]}

Return an empty list when the query names no model elements.`

const categoryDescriptions = `
1. simple_fact          : a single factual answer.
2. simple_conditional   : answer depends on an 'if' condition.
3. comparison           : compare / evaluate two items.
4. interpretative       : requires interpretation of intent / rationale.
5. multi_answer         : expects a set/list of items.
6. aggregation          : numeric or textual aggregation.
7. multi_hop            : needs reasoning over >=2 facts.
8. heavy_post           : answer needs transformation (e.g., unit conversion).
9. erroneous            : user premise wrong; correct it politely.
10. summary             : produce a concise summary.
`

const qaSchema = `{
  "simple_fact":        {"question": "...", "answer": "...", "sources": ["S00001"]},
  "simple_conditional": {"question": "...", "answer": "...", "sources": ["..."]},
  "comparison":         {"question": "...", "answer": "...", "sources": ["..."]},
  "interpretative":     {"question": "...", "answer": "...", "sources": ["..."]},
  "multi_answer":       {"question": "...", "answer": "...", "sources": ["..."]},
  "aggregation":        {"question": "...", "answer": "...", "sources": ["..."]},
  "multi_hop":          {"question": "...", "answer": "...", "sources": ["..."]},
  "heavy_post":         {"question": "...", "answer": "...", "sources": ["..."]},
  "erroneous":          {"question": "...", "answer": "...", "sources": ["..."]},
  "summary":            {"question": "...", "answer": "...", "sources": ["..."]}
}`

func generateSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are an aerospace-domain assistant. Prefer document snippets for facts; ")
	b.WriteString("use model XML only as supplementary context and do NOT quote or leak any XML content in your output.\n\n")
	b.WriteString("Generate TEN Q-A pairs that follow the JSON schema below. ")
	b.WriteString("Every answer must cite at least one [S#####] token.\n\n")
	b.WriteString("Category definitions:\n")
	b.WriteString(categoryDescriptions)
	b.WriteString("\nSchema:\n")
	b.WriteString(qaSchema)
	return b.String()
}

func generateUserPrompt(question string, pdfBlocks, modelBlocks []string) string {
	var b strings.Builder
	b.WriteString("## Documents\n")
	b.WriteString(strings.Join(pdfBlocks, "\n\n"))
	b.WriteString("\n\n## Model\n")
	b.WriteString(strings.Join(modelBlocks, "\n\n"))
	b.WriteString("\n\n## Original question\n")
	b.WriteString(question)
	return b.String()
}
