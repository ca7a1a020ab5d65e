package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeNode_Attributes(t *testing.T) {
	n := NewNode("n")

	assert.Nil(t, n.GetAttribute("missing"), "absent attribute must be nil")

	n.SetAttribute("empty", nil)
	got := n.GetAttribute("empty")
	require.NotNil(t, got, "present attribute must not be nil")
	assert.Empty(t, got)

	values := []string{"a", "b"}
	n.SetAttribute("list", values)
	values[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, n.GetAttribute("list"), "SetAttribute must copy")

	n.GetAttribute("list")[1] = "changed"
	assert.Equal(t, []string{"a", "b"}, n.GetAttribute("list"), "GetAttribute must copy")

	assert.Equal(t, []string{"empty", "list"}, n.AttributeNames())

	n.RemoveAttribute("list")
	assert.Nil(t, n.GetAttribute("list"))
}

func TestTreeNode_Children(t *testing.T) {
	root := NewNode("root")
	first := NewNode("dup")
	first.SetAttribute("order", []string{"1"})
	second := NewNode("dup")
	second.SetAttribute("order", []string{"2"})

	root.AddChild(first)
	root.AddChild(NewNode("other"))
	root.AddChild(second)
	root.AddChild(nil)

	require.Len(t, root.Children(), 3)
	assert.Same(t, first, root.GetChild("dup"), "GetChild returns the first match")
	assert.Nil(t, root.GetChild("none"))
	assert.Len(t, childrenNamed(root, "dup"), 2)

	root.RemoveChild("dup")
	require.Len(t, root.Children(), 1)
	assert.Equal(t, "other", root.Children()[0].Name())

	root.RemoveChild("none")
	assert.Len(t, root.Children(), 1)
}

func TestNumbered(t *testing.T) {
	root := NewNode("root")
	for _, name := range []string{"parameter_10", "parameter_2", "other", "parameter_x", "parameter_0"} {
		root.AddChild(NewNode(name))
	}

	var names []string
	for _, n := range numbered(root, prefixParameter) {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"parameter_0", "parameter_2", "parameter_10"}, names)
	assert.Equal(t, 11, nextIndex(root, prefixParameter))
	assert.Equal(t, 0, nextIndex(root, prefixObject))
	assert.Nil(t, numbered(nil, prefixParameter))
}
