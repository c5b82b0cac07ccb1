package scene

// Version is the PAGX format version written by this package.
const Version = "1.0"

// Document owns every node of a scene through Nodes. Layers and every node
// field are non-owning references into that set.
type Document struct {
	Version string
	Width   float32
	Height  float32
	Nodes   []Node
	Layers  []*Layer
}

// New returns an empty document with the given canvas size.
func New(width, height float32) *Document {
	return &Document{Version: Version, Width: width, Height: height}
}

// Add transfers ownership of n to d and returns n.
func Add[T Node](d *Document, n T) T {
	d.Nodes = append(d.Nodes, n)
	return n
}

// FindNode returns the first owned node with the given id.
func (d *Document) FindNode(id string) Node {
	if id == "" {
		return nil
	}
	for _, n := range d.Nodes {
		if n.NodeID() == id {
			return n
		}
	}
	return nil
}

// RemoveNodes drops every owned node for which keep returns false, preserving
// the order of the rest. It returns the number of nodes removed.
func (d *Document) RemoveNodes(keep func(Node) bool) int {
	kept := d.Nodes[:0]
	for _, n := range d.Nodes {
		if keep(n) {
			kept = append(kept, n)
		}
	}
	removed := len(d.Nodes) - len(kept)
	clear(d.Nodes[len(kept):])
	d.Nodes = kept
	return removed
}

// NodesOfType returns the owned nodes of kind t in document order.
func (d *Document) NodesOfType(t NodeType) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.NodeType() == t {
			out = append(out, n)
		}
	}
	return out
}

// IDs returns the set of ids currently in use.
func (d *Document) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		if id := n.NodeID(); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// SetID assigns id to n. Nodes are created with their id field already set by
// the parser; SetID is for synthesized nodes.
func SetID(n Node, id string) {
	if s, ok := n.(interface{ setID(string) }); ok {
		s.setID(id)
	}
}

func (b *base) setID(id string) { b.ID = id }
