package model

// Node is a single structural element of the containment graph.
// Parent is a lookup key only; ownership stays with the Graph arena.
type Node struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Tag      string            `json:"type"`
	Attrs    map[string]string `json:"attributes,omitempty"`
	Children []string          `json:"-"`
	Parent   string            `json:"-"`
}

// Description returns the element's description attribute, falling back to
// its display name. Used as the embeddable text when ranking snippets.
func (n *Node) Description() string {
	if d := n.Attrs["description"]; d != "" {
		return d
	}
	return n.Name
}

// Graph is an arena of nodes indexed by stable identifier, plus a
// name→identifiers index for resolution. Immutable after Build returns.
type Graph struct {
	nodes     map[string]*Node
	order     []string // insertion order, i.e. document order
	nameIndex map[string][]string
	edgeCount int
}

func newGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		nameIndex: make(map[string][]string),
	}
}

func (g *Graph) add(n *Node) {
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	if n.Name != "" {
		g.nameIndex[n.Name] = append(g.nameIndex[n.Name], n.ID)
	}
}

func (g *Graph) link(parentID, childID string) {
	parent, ok := g.nodes[parentID]
	if !ok {
		return
	}
	parent.Children = append(parent.Children, childID)
	g.nodes[childID].Parent = parentID
	g.edgeCount++
}

// Get returns the node with the given identifier.
func (g *Graph) Get(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// ByName returns the identifiers of all nodes with the exact display name,
// in document order. Names are not unique in real models.
func (g *Graph) ByName(name string) []string {
	return g.nameIndex[name]
}

// IDs returns all node identifiers in document order.
func (g *Graph) IDs() []string {
	return g.order
}

// Depth returns the number of ancestors of the node, 0 for roots.
func (g *Graph) Depth(id string) int {
	d := 0
	n := g.nodes[id]
	for n != nil && n.Parent != "" {
		d++
		n = g.nodes[n.Parent]
	}
	return d
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.order) }

// NumEdges returns the containment edge count.
func (g *Graph) NumEdges() int { return g.edgeCount }
