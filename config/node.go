package config

import (
	"slices"
)

// Node is the configuration tree contract definitions are persisted
// through. Attributes are multi-valued; GetAttribute returns nil for an
// absent attribute and a non-nil, possibly empty slice for a present one.
type Node interface {
	Name() string
	Children() []Node
	GetChild(name string) Node
	GetAttribute(name string) []string
	SetAttribute(name string, values []string)
	AddChild(node Node)
	RemoveChild(name string)
}

// attributeLister is implemented by nodes that can enumerate their
// attributes. The codec needs it to serialize a tree.
type attributeLister interface {
	AttributeNames() []string
}

// TreeNode is the in-memory [Node]. It is not safe for concurrent use; the
// [Store] serializes access to it.
type TreeNode struct {
	name     string
	attrs    map[string][]string
	children []Node
}

// NewNode returns an empty node called name.
func NewNode(name string) *TreeNode {
	return &TreeNode{name: name, attrs: make(map[string][]string)}
}

// Name returns the node name.
func (n *TreeNode) Name() string { return n.name }

// Children returns the children in insertion order. The slice is a copy.
func (n *TreeNode) Children() []Node { return slices.Clone(n.children) }

// GetChild returns the first child called name, or nil.
func (n *TreeNode) GetChild(name string) Node {
	for _, c := range n.children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// GetAttribute returns a copy of the attribute values, or nil when absent.
func (n *TreeNode) GetAttribute(name string) []string {
	v, ok := n.attrs[name]
	if !ok {
		return nil
	}
	return append([]string{}, v...)
}

// SetAttribute stores a copy of values. A nil slice is stored as present
// and empty.
func (n *TreeNode) SetAttribute(name string, values []string) {
	n.attrs[name] = append([]string{}, values...)
}

// RemoveAttribute makes name absent.
func (n *TreeNode) RemoveAttribute(name string) {
	delete(n.attrs, name)
}

// AttributeNames returns the attribute names in sorted order.
func (n *TreeNode) AttributeNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// AddChild appends node. A nil node is ignored.
func (n *TreeNode) AddChild(node Node) {
	if node != nil {
		n.children = append(n.children, node)
	}
}

// RemoveChild removes every child called name.
func (n *TreeNode) RemoveChild(name string) {
	n.children = slices.DeleteFunc(n.children, func(c Node) bool { return c.Name() == name })
}

// childrenNamed returns every child of n called name.
func childrenNamed(n Node, name string) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// firstValue returns the first value of attribute name and whether the
// attribute is present.
func firstValue(n Node, name string) (string, bool) {
	v := n.GetAttribute(name)
	if v == nil {
		return "", false
	}
	if len(v) == 0 {
		return "", true
	}
	return v[0], true
}
