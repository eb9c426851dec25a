package story

// StartNode returns the first start node in insertion order, or nil.
// The single-start invariant is Validate's job, not this accessor's.
func (d *Document) StartNode() *StartNode {
	var found *StartNode
	d.Nodes.Range(func(_ string, n Node) bool {
		if sn, ok := n.(*StartNode); ok {
			found = sn
			return false
		}
		return true
	})
	return found
}

// SceneNodes returns all scene nodes in insertion order.
func (d *Document) SceneNodes() []*SceneNode {
	var out []*SceneNode
	d.Nodes.Range(func(_ string, n Node) bool {
		if sn, ok := n.(*SceneNode); ok {
			out = append(out, sn)
		}
		return true
	})
	return out
}

// EndNodes returns all end nodes in insertion order.
func (d *Document) EndNodes() []*EndNode {
	var out []*EndNode
	d.Nodes.Range(func(_ string, n Node) bool {
		if en, ok := n.(*EndNode); ok {
			out = append(out, en)
		}
		return true
	})
	return out
}

// Scene returns the scene node with the given id, or nil if the id is
// absent or names a different variant.
func (d *Document) Scene(id string) *SceneNode {
	n, ok := d.Nodes.Get(id)
	if !ok {
		return nil
	}
	sn, _ := n.(*SceneNode)
	return sn
}

// OutgoingEdges returns every edge whose source is nodeID, in insertion order.
func (d *Document) OutgoingEdges(nodeID string) []*Edge {
	var out []*Edge
	d.Edges.Range(func(_ string, e *Edge) bool {
		if e.From == nodeID {
			out = append(out, e)
		}
		return true
	})
	return out
}

// IncomingEdges returns every edge whose target is nodeID, in insertion order.
func (d *Document) IncomingEdges(nodeID string) []*Edge {
	var out []*Edge
	d.Edges.Range(func(_ string, e *Edge) bool {
		if e.To == nodeID {
			out = append(out, e)
		}
		return true
	})
	return out
}

// ConnectedNodeIDs returns the deduplicated union of outgoing targets and
// incoming sources of nodeID. Order is unspecified.
func (d *Document) ConnectedNodeIDs(nodeID string) []string {
	seen := make(map[string]struct{})
	d.Edges.Range(func(_ string, e *Edge) bool {
		if e.From == nodeID {
			seen[e.To] = struct{}{}
		}
		if e.To == nodeID {
			seen[e.From] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}
