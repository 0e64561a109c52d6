package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type exportEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type exportDoc struct {
	Nodes []*Node      `json:"nodes"`
	Edges []exportEdge `json:"edges"`
}

// Export writes a node-link JSON snapshot of the graph: a flat node list
// and a directed edge list, in document order. Meant for inspection and
// debugging, not for round-tripping.
func Export(g *Graph, w io.Writer) error {
	doc := exportDoc{
		Nodes: make([]*Node, 0, g.NumNodes()),
		Edges: make([]exportEdge, 0, g.NumEdges()),
	}
	for _, id := range g.IDs() {
		n, _ := g.Get(id)
		doc.Nodes = append(doc.Nodes, n)
		for _, child := range n.Children {
			doc.Edges = append(doc.Edges, exportEdge{Source: id, Target: child})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// ExportFile writes the node-link snapshot to a file.
func ExportFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	defer f.Close()
	return Export(g, f)
}
