package models

// Node is a graph vertex. A full node is built from a decoded document; a
// shallow node only knows the id it was referenced by.
type Node struct {
	ID    string  `json:"id"`
	Title *string `json:"title,omitempty"`
	Tag   *string `json:"tag,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// FullNode projects document metadata onto a graph node.
func FullNode(m Metadata) Node {
	title, tag, icon := m.Title, m.Tag, m.Icon
	return Node{ID: m.ID, Title: &title, Tag: &tag, Icon: &icon}
}

// ShallowNode returns a node carrying only an id.
func ShallowNode(id string) Node {
	return Node{ID: id}
}

// IsShallow reports whether the node was only inferred from a link target.
func (n Node) IsShallow() bool {
	return n.Title == nil && n.Tag == nil && n.Icon == nil
}

// Link is a directed edge from the document containing a reference to the
// document it references.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the site graph consumed by the visualization.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// NewGraph returns an empty graph whose slices encode as JSON arrays.
func NewGraph() *Graph {
	return &Graph{Nodes: []Node{}, Links: []Link{}}
}
