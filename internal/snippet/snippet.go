package snippet

import (
	"sort"
	"strings"

	"mbseqa/internal/model"
)

// Options bounds the rendered snippet.
type Options struct {
	DepthLimit int // descendant levels to include, <=0 means unbounded
	MaxLen     int // cap in runes, <=0 means uncapped
}

// layoutTags mark subtrees that carry diagram geometry rather than model
// semantics; they add nothing to a prompt.
var layoutTags = map[string]bool{
	"ownedDiagrams": true,
	"layoutData":    true,
	"filters":       true,
}

// Extract renders a node and its descendants as a minified XML-like block
// for prompt inclusion. Children keep document order, attributes render in
// sorted key order, so repeated extraction of the same node is
// byte-identical. A leaf is a valid target and renders as a single element.
func Extract(g *model.Graph, id string, opts Options) string {
	n, ok := g.Get(id)
	if !ok {
		return ""
	}
	var b strings.Builder
	render(g, n, 0, opts.DepthLimit, &b)
	out := b.String()
	if opts.MaxLen > 0 {
		out = truncate(out, opts.MaxLen)
	}
	return out
}

func render(g *model.Graph, n *model.Node, depth, limit int, b *strings.Builder) {
	if layoutTags[n.Tag] {
		return
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	if n.Name != "" {
		b.WriteString(` name="`)
		b.WriteString(escape(n.Name))
		b.WriteByte('"')
	}
	for _, k := range sortedKeys(n.Attrs) {
		v := n.Attrs[k]
		if v == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escape(v))
		b.WriteByte('"')
	}

	atLimit := limit > 0 && depth >= limit
	if len(n.Children) == 0 || atLimit {
		b.WriteString("/>")
		return
	}

	b.WriteByte('>')
	for _, childID := range n.Children {
		child, ok := g.Get(childID)
		if !ok {
			continue
		}
		render(g, child, depth+1, limit, b)
	}
	b.WriteString(" </")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// escape collapses whitespace runs and escapes XML metacharacters so the
// rendering stays one dense line.
func escape(s string) string {
	return escaper.Replace(strings.Join(strings.Fields(s), " "))
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}
