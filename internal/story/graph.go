// Package story defines the narrative graph model: a document of typed
// nodes (start, scene, end) connected by flow and choice edges, plus the
// query, mutation, validation, and summary operations over it.
package story

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NodeType discriminates the node variants.
type NodeType string

const (
	NodeStart NodeType = "start"
	NodeScene NodeType = "scene"
	NodeEnd   NodeType = "end"
)

// EdgeType is derived at construction: choice iff the edge carries a choiceId.
type EdgeType string

const (
	EdgeFlow   EdgeType = "flow"
	EdgeChoice EdgeType = "choice"
)

// Document is the root narrative unit.
type Document struct {
	Version  int      `yaml:"version"`
	Metadata Metadata `yaml:"metadata"`
	Nodes    NodeMap  `yaml:"nodes"`
	Edges    EdgeMap  `yaml:"edges"`
}

// Metadata holds document-level fields. Unknown keys from hand-edited
// files are preserved in Extra and round-trip through serialization.
type Metadata struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	CreatedAt   string         `yaml:"createdAt"`
	UpdatedAt   string         `yaml:"updatedAt"`
	Extra       map[string]any `yaml:",inline"`
}

// Node is implemented by the three node variants.
type Node interface {
	Base() *NodeBase
	Type() NodeType
}

// NodeBase carries the fields common to all node variants.
type NodeBase struct {
	ID       string   `yaml:"id"`
	NodeType NodeType `yaml:"nodeType"`
	Name     string   `yaml:"name"`
	PosX     float64  `yaml:"posX"`
	PosY     float64  `yaml:"posY"`
}

// StartNode marks the entry point of a story. Exactly one is expected in a
// well-formed document; deletion through normal operations is refused.
type StartNode struct {
	NodeBase `yaml:",inline"`
}

func (n *StartNode) Base() *NodeBase { return &n.NodeBase }
func (n *StartNode) Type() NodeType  { return NodeStart }

// SceneNode is the primary interactive unit: dialogues, choices, and weak
// references to characters and a location owned by an external store.
type SceneNode struct {
	NodeBase       `yaml:",inline"`
	LocationID     string          `yaml:"locationId,omitempty"`
	Characters     []CharacterRef  `yaml:"characters"`
	Dialogues      []Dialogue      `yaml:"dialogues"`
	Choices        []Choice        `yaml:"choices"`
	Effects        []Effect        `yaml:"effects,omitempty"`
	EntityTriggers []EntityTrigger `yaml:"entityTriggers,omitempty"`
}

func (n *SceneNode) Base() *NodeBase { return &n.NodeBase }
func (n *SceneNode) Type() NodeType  { return NodeScene }

// EndNode terminates a story path.
type EndNode struct {
	NodeBase   `yaml:",inline"`
	EndingType string `yaml:"endingType,omitempty"`
}

func (n *EndNode) Base() *NodeBase { return &n.NodeBase }
func (n *EndNode) Type() NodeType  { return NodeEnd }

// CharacterRef is a weak reference to a character entity plus display fields.
type CharacterRef struct {
	CharacterID string         `yaml:"characterId"`
	Position    string         `yaml:"position,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// Dialogue is a single line of narrative text, owned by its scene.
type Dialogue struct {
	ID      string         `yaml:"id"`
	Speaker string         `yaml:"speaker"`
	Text    string         `yaml:"text"`
	Extra   map[string]any `yaml:",inline"`
}

// Choice is a player-facing branching option, owned by its scene. An edge
// activates a choice by referencing its id; a choice without an edge is legal.
type Choice struct {
	ID    string         `yaml:"id"`
	Label string         `yaml:"label"`
	Extra map[string]any `yaml:",inline"`
}

// Effect is applied when a scene is entered during playback.
type Effect struct {
	Type   string `yaml:"type"`
	Target string `yaml:"target,omitempty"`
	Value  string `yaml:"value,omitempty"`
}

// EntityTrigger is an opaque hook consumed by the embedding application.
type EntityTrigger struct {
	EntityID string `yaml:"entityId"`
	Action   string `yaml:"action"`
}

// Edge is a directed connection between two nodes. Condition is an opaque
// predicate string interpreted by the playback runtime, not by the model.
// Priority is a tie-break hint among eligible flow edges.
type Edge struct {
	ID        string   `yaml:"id"`
	From      string   `yaml:"from"`
	To        string   `yaml:"to"`
	EdgeType  EdgeType `yaml:"edgeType"`
	ChoiceID  string   `yaml:"choiceId,omitempty"`
	Condition string   `yaml:"condition,omitempty"`
	Priority  int      `yaml:"priority,omitempty"`
}

// NodeMap is an insertion-ordered mapping from node id to Node. Order is
// irrelevant for correctness but preserved for stable re-serialization.
type NodeMap struct {
	order []string
	nodes map[string]Node
}

// Len returns the number of nodes.
func (m *NodeMap) Len() int { return len(m.order) }

// Get returns the node for id, or nil and false.
func (m *NodeMap) Get(id string) (Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Has reports whether id is present.
func (m *NodeMap) Has(id string) bool {
	_, ok := m.nodes[id]
	return ok
}

// Set inserts or replaces the node for id, preserving first-insertion order.
func (m *NodeMap) Set(id string, n Node) {
	if m.nodes == nil {
		m.nodes = make(map[string]Node)
	}
	if _, ok := m.nodes[id]; !ok {
		m.order = append(m.order, id)
	}
	m.nodes[id] = n
}

// Delete removes id and reports whether it was present.
func (m *NodeMap) Delete(id string) bool {
	if _, ok := m.nodes[id]; !ok {
		return false
	}
	delete(m.nodes, id)
	for i, k := range m.order {
		if k == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the node ids in insertion order.
func (m *NodeMap) IDs() []string {
	return append([]string(nil), m.order...)
}

// Range calls fn for each node in insertion order until fn returns false.
func (m *NodeMap) Range(fn func(id string, n Node) bool) {
	for _, id := range m.order {
		if !fn(id, m.nodes[id]) {
			return
		}
	}
}

// MarshalYAML encodes the map as a YAML mapping in insertion order.
func (m NodeMap) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range m.order {
		var key, val yaml.Node
		if err := key.Encode(id); err != nil {
			return nil, err
		}
		if err := val.Encode(m.nodes[id]); err != nil {
			return nil, err
		}
		out.Content = append(out.Content, &key, &val)
	}
	return out, nil
}

// UnmarshalYAML decodes a YAML mapping, dispatching each entry on its
// nodeType discriminator to the matching node variant.
func (m *NodeMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("nodes: expected a mapping, got %s", yamlKind(value.Kind))
	}
	m.order = nil
	m.nodes = make(map[string]Node)
	for i := 0; i+1 < len(value.Content); i += 2 {
		id := value.Content[i].Value
		node, err := decodeNode(id, value.Content[i+1])
		if err != nil {
			return err
		}
		m.Set(id, node)
	}
	return nil
}

func decodeNode(id string, value *yaml.Node) (Node, error) {
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("node %s: expected a mapping, got %s", id, yamlKind(value.Kind))
	}
	var nt string
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "nodeType" {
			nt = value.Content[i+1].Value
			break
		}
	}
	switch NodeType(nt) {
	case NodeStart:
		var n StartNode
		if err := value.Decode(&n); err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		return &n, nil
	case NodeScene:
		var n SceneNode
		if err := value.Decode(&n); err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		return &n, nil
	case NodeEnd:
		var n EndNode
		if err := value.Decode(&n); err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("node %s: unknown nodeType %q", id, nt)
	}
}

// EdgeMap is an insertion-ordered mapping from edge id to Edge.
type EdgeMap struct {
	order []string
	edges map[string]*Edge
}

// Len returns the number of edges.
func (m *EdgeMap) Len() int { return len(m.order) }

// Get returns the edge for id, or nil and false.
func (m *EdgeMap) Get(id string) (*Edge, bool) {
	e, ok := m.edges[id]
	return e, ok
}

// Set inserts or replaces the edge for id, preserving first-insertion order.
func (m *EdgeMap) Set(id string, e *Edge) {
	if m.edges == nil {
		m.edges = make(map[string]*Edge)
	}
	if _, ok := m.edges[id]; !ok {
		m.order = append(m.order, id)
	}
	m.edges[id] = e
}

// Delete removes id and reports whether it was present.
func (m *EdgeMap) Delete(id string) bool {
	if _, ok := m.edges[id]; !ok {
		return false
	}
	delete(m.edges, id)
	for i, k := range m.order {
		if k == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the edge ids in insertion order.
func (m *EdgeMap) IDs() []string {
	return append([]string(nil), m.order...)
}

// Range calls fn for each edge in insertion order until fn returns false.
func (m *EdgeMap) Range(fn func(id string, e *Edge) bool) {
	for _, id := range m.order {
		if !fn(id, m.edges[id]) {
			return
		}
	}
}

// MarshalYAML encodes the map as a YAML mapping in insertion order.
func (m EdgeMap) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range m.order {
		var key, val yaml.Node
		if err := key.Encode(id); err != nil {
			return nil, err
		}
		if err := val.Encode(m.edges[id]); err != nil {
			return nil, err
		}
		out.Content = append(out.Content, &key, &val)
	}
	return out, nil
}

// UnmarshalYAML decodes a YAML mapping of edges.
func (m *EdgeMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("edges: expected a mapping, got %s", yamlKind(value.Kind))
	}
	m.order = nil
	m.edges = make(map[string]*Edge)
	for i := 0; i+1 < len(value.Content); i += 2 {
		id := value.Content[i].Value
		var e Edge
		if err := value.Content[i+1].Decode(&e); err != nil {
			return fmt.Errorf("edge %s: %w", id, err)
		}
		m.Set(id, &e)
	}
	return nil
}

func yamlKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
