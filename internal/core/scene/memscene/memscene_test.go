package memscene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/provision/internal/core/scene"
)

func TestParentingAndSiblingOrder(t *testing.T) {
	h := NewHost()
	ui := h.UIRoot()
	assert.Same(t, ui, h.UIRoot())

	var nodes []scene.Node
	for _, name := range []string{"a", "b", "c"} {
		n := h.NewNode(name)
		n.SetParent(ui)
		nodes = append(nodes, n)
	}
	assert.Equal(t, 3, ui.ChildCount())
	assert.Equal(t, 2, nodes[2].SiblingIndex())

	nodes[2].SetSiblingIndex(0)
	assert.Equal(t, []string{"c", "a", "b"}, childNames(h.UI()))

	nodes[0].SetSiblingIndex(99)
	assert.Equal(t, []string{"c", "b", "a"}, childNames(h.UI()))

	nodes[1].SetSiblingIndex(-5)
	assert.Equal(t, []string{"b", "c", "a"}, childNames(h.UI()))

	nodes[1].SetParent(h.WorldRoot())
	assert.Equal(t, []string{"c", "a"}, childNames(h.UI()))
	assert.Same(t, h.WorldRoot(), nodes[1].Parent())

	nodes[1].SetParent(nil)
	assert.Nil(t, nodes[1].Parent())
	assert.Equal(t, 0, h.World().ChildCount())
}

func TestDestroyIsRecursive(t *testing.T) {
	h := NewHost()
	root := h.NewHoldingRoot("orc")
	assert.False(t, root.Active())
	child := h.NewNode("orc#1")
	child.SetParent(root)

	h.Destroy(root)
	h.Destroy(root)
	assert.True(t, root.(*Node).Destroyed())
	assert.True(t, child.(*Node).Destroyed())
	assert.Equal(t, 2, h.DestroyedCount())
	assert.Equal(t, 2, h.Created())
}

func TestRecorder(t *testing.T) {
	h := NewHost()
	r := NewRecorder()
	n := h.NewNode("x")
	r.Apply(n, scene.Attributes{Name: "x", Tag: "Enemy"})

	attrs, ok := r.Last(n)
	require.True(t, ok)
	assert.Equal(t, "Enemy", attrs.Tag)
	assert.Equal(t, 1, r.Calls())
	assert.False(t, attrs.HasUI())
}

func childNames(n *Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Name())
	}
	return out
}
