// Package model defines the configuration model built from a parsed Cola
// document: an arena-owned tree of entities, plural collections, and typed
// scalar fields. The model builder populates it from the parse tree; the
// generator reads it to emit typed configuration code.
package model

import (
	"fmt"
	"iter"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mlwelles/colaGen/parser"
)

// NodeID is a stable index into the model's node arena.
type NodeID int

// InvalidID marks the absence of a node reference.
const InvalidID NodeID = -1

// NodeKind distinguishes the two node variants of the model tree.
type NodeKind int

const (
	// KindEntity is a named container of fields and child nodes.
	KindEntity NodeKind = iota
	// KindPlural is a named collection of entities of one singular type,
	// keyed by instance name.
	KindPlural
)

func (k NodeKind) String() string {
	if k == KindPlural {
		return "plural"
	}
	return "entity"
}

// RootName is the instance and type name of the synthetic root entity.
const RootName = "root"

// Node is one node of the configuration tree. For entity nodes, Name is the
// instance name and TypeName the declared singular type (equal to Name for
// entities declared standalone). For plural nodes, Name is the plural
// collection name and TypeName the declared singular type of its children.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Name     string
	TypeName string
	Parent   NodeID
	Fields   *orderedmap.OrderedMap[string, Value]
	Children *orderedmap.OrderedMap[string, NodeID]
	Pos      parser.Position
}

// IsPlural reports whether the node is a plural collection node.
func (n *Node) IsPlural() bool {
	return n.Kind == KindPlural
}

// Field returns the named field value of an entity node.
func (n *Node) Field(name string) (Value, bool) {
	return n.Fields.Get(name)
}

// Model owns all nodes of one configuration tree. Edges are NodeID
// references: parents hold child ids, children hold their parent id. The
// model is built once per input and is immutable afterwards.
type Model struct {
	nodes  []*Node
	rootID NodeID
}

// NewModel returns a model holding only the synthetic root entity.
func NewModel() *Model {
	m := &Model{}
	m.rootID = m.AddNode(KindEntity, RootName, RootName, InvalidID, parser.Position{})
	return m
}

// AddNode appends a node to the arena and returns its id. The node is not
// yet reachable from its parent; use AddChild for that.
func (m *Model) AddNode(kind NodeKind, name, typeName string, parent NodeID, pos parser.Position) NodeID {
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, &Node{
		ID:       id,
		Kind:     kind,
		Name:     name,
		TypeName: typeName,
		Parent:   parent,
		Fields:   orderedmap.New[string, Value](),
		Children: orderedmap.New[string, NodeID](),
		Pos:      pos,
	})
	return id
}

// AddChild registers child under parent, keyed by the child's name.
// Registering a second child with the same name fails.
func (m *Model) AddChild(parent, child NodeID) error {
	p := m.Node(parent)
	c := m.Node(child)
	if p == nil || c == nil {
		return fmt.Errorf("no such node: parent %d, child %d", parent, child)
	}
	if _, exists := p.Children.Get(c.Name); exists {
		return fmt.Errorf("duplicate child %q under %q", c.Name, p.Name)
	}
	p.Children.Set(c.Name, child)
	c.Parent = parent
	return nil
}

// SetField sets a field on an entity node. Setting a field that already
// exists fails; the language treats duplicate fields as an error.
func (m *Model) SetField(id NodeID, name string, value Value) error {
	n := m.Node(id)
	if n == nil {
		return fmt.Errorf("no such node: %d", id)
	}
	if _, exists := n.Fields.Get(name); exists {
		return fmt.Errorf("duplicate field %q on %q", name, n.Name)
	}
	n.Fields.Set(name, value)
	return nil
}

// RootID returns the id of the synthetic root entity.
func (m *Model) RootID() NodeID {
	return m.rootID
}

// Node returns the node with the given id, or nil if the id is out of range.
func (m *Model) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(m.nodes) {
		return nil
	}
	return m.nodes[id]
}

// Len returns the number of nodes in the arena.
func (m *Model) Len() int {
	return len(m.nodes)
}

// FieldValue returns the named field of the entity with the given id.
func (m *Model) FieldValue(id NodeID, name string) (Value, bool) {
	n := m.Node(id)
	if n == nil {
		return Value{}, false
	}
	return n.Field(name)
}

// FindChildEntityByName returns the id of the named direct child of parent.
func (m *Model) FindChildEntityByName(parent NodeID, name string) (NodeID, bool) {
	p := m.Node(parent)
	if p == nil {
		return InvalidID, false
	}
	id, ok := p.Children.Get(name)
	if !ok {
		return InvalidID, false
	}
	return id, true
}

// FindEntityByPath resolves a slash-separated path like "llm/openai/api"
// from the root. Each component matches a child's name; for plural nodes
// the declared singular type name is accepted as well, so paths written
// against the singular form keep resolving.
func (m *Model) FindEntityByPath(path string) (NodeID, bool) {
	if path == "" {
		return m.rootID, true
	}
	current := m.rootID
	for _, component := range strings.Split(path, "/") {
		next := InvalidID
		node := m.Node(current)
		for pair := node.Children.Oldest(); pair != nil; pair = pair.Next() {
			child := m.Node(pair.Value)
			if child.Name == component || (child.IsPlural() && child.TypeName == component) {
				next = pair.Value
				break
			}
		}
		if next == InvalidID {
			return InvalidID, false
		}
		current = next
	}
	return current, true
}

// ChildrenOfPlural iterates the (instance name, id) pairs of a plural
// node's children in source order.
func (m *Model) ChildrenOfPlural(parent NodeID) iter.Seq2[string, NodeID] {
	return func(yield func(string, NodeID) bool) {
		p := m.Node(parent)
		if p == nil {
			return
		}
		for pair := p.Children.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// String renders the model back as Cola source. Reparsing the output yields
// an isomorphic model.
func (m *Model) String() string {
	var b strings.Builder
	root := m.Node(m.rootID)
	for pair := root.Children.Oldest(); pair != nil; pair = pair.Next() {
		m.writeNode(&b, pair.Value, 0)
	}
	return b.String()
}

func (m *Model) writeNode(b *strings.Builder, id NodeID, depth int) {
	n := m.Node(id)
	indent := strings.Repeat("    ", depth)
	if n.IsPlural() {
		fmt.Fprintf(b, "%s%s plural %s:\n", indent, n.TypeName, n.Name)
	} else {
		fmt.Fprintf(b, "%s%s:\n", indent, n.Name)
	}

	fields := make([]string, 0, n.Fields.Len())
	for pair := n.Fields.Oldest(); pair != nil; pair = pair.Next() {
		fields = append(fields, fmt.Sprintf("%s%s: %s", strings.Repeat("    ", depth+1), pair.Key, pair.Value))
	}
	if len(fields) > 0 {
		b.WriteString(strings.Join(fields, ",\n"))
		b.WriteString("\n")
	}

	for pair := n.Children.Oldest(); pair != nil; pair = pair.Next() {
		m.writeNode(b, pair.Value, depth+1)
	}
	fmt.Fprintf(b, "%s;\n", indent)
}

// PrettyString renders the tree with box-drawing connectors for display.
func (m *Model) PrettyString() string {
	var b strings.Builder
	root := m.Node(m.rootID)
	b.WriteString(RootName + "\n")
	count := root.Children.Len()
	i := 0
	for pair := root.Children.Oldest(); pair != nil; pair = pair.Next() {
		i++
		m.prettyNode(&b, pair.Value, "", i == count)
	}
	return b.String()
}

func (m *Model) prettyNode(b *strings.Builder, id NodeID, prefix string, last bool) {
	n := m.Node(id)
	connector := "├── "
	childPrefix := prefix + "│   "
	if last {
		connector = "└── "
		childPrefix = prefix + "    "
	}

	if n.IsPlural() {
		fmt.Fprintf(b, "%s%s%s plural %s\n", prefix, connector, n.TypeName, n.Name)
	} else {
		fmt.Fprintf(b, "%s%s%s\n", prefix, connector, n.Name)
	}

	total := n.Fields.Len() + n.Children.Len()
	i := 0
	for pair := n.Fields.Oldest(); pair != nil; pair = pair.Next() {
		i++
		fc := "├── "
		if i == total {
			fc = "└── "
		}
		fmt.Fprintf(b, "%s%s%s: %s\n", childPrefix, fc, pair.Key, pair.Value)
	}
	for pair := n.Children.Oldest(); pair != nil; pair = pair.Next() {
		i++
		m.prettyNode(b, pair.Value, childPrefix, i == total)
	}
}
