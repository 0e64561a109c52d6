package model

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

const xmiNS = "http://www.omg.org/XMI"

// ParseError reports a malformed model source. The run cannot proceed
// without a graph, so callers treat this as fatal.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Build parses a Capella-style XML model file into a containment graph.
func Build(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	defer f.Close()
	return BuildFromReader(f, path)
}

// BuildFromReader streams XML tokens from r, so large models never have to
// fit in memory as a document tree. Every element becomes a node: elements
// without an id attribute get a synthesized positional identifier, and
// elements without a name are kept with an empty name so the containment
// structure stays complete. Callers filter, the builder does not drop.
func BuildFromReader(r io.Reader, source string) (*Graph, error) {
	dec := xml.NewDecoder(r)
	g := newGraph()

	var stack []string
	ordinal := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			ordinal++
			node := &Node{
				Tag:   t.Name.Local,
				Attrs: make(map[string]string),
			}
			var plainID string
			for _, a := range t.Attr {
				switch {
				case a.Name.Space == xmiNS && a.Name.Local == "id":
					// xmi:id wins over a plain id regardless of attribute order
					node.ID = a.Value
				case a.Name.Space == "" && a.Name.Local == "id":
					plainID = a.Value
				case a.Name.Space == "xmlns" || a.Name.Local == "xmlns":
					// namespace declarations are syntactic noise
				case a.Name.Local == "name":
					node.Name = a.Value
				default:
					node.Attrs[a.Name.Local] = a.Value
				}
			}
			if node.ID == "" {
				node.ID = plainID
			}
			if node.ID == "" {
				node.ID = fmt.Sprintf("%s@%d", t.Name.Local, ordinal)
			}
			if _, dup := g.nodes[node.ID]; dup {
				// ids must be unique within a graph instance; a colliding
				// source id is disambiguated rather than dropped
				node.ID = fmt.Sprintf("%s@%d", node.ID, ordinal)
			}
			g.add(node)
			if len(stack) > 0 {
				g.link(stack[len(stack)-1], node.ID)
			}
			stack = append(stack, node.ID)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(g.order) == 0 {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("no elements found")}
	}
	return g, nil
}
