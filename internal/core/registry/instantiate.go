package registry

import (
	"github.com/zeusync/provision/internal/core/scene"
)

// instantiate creates a node for m, places it and hands the resolved
// attributes to the applier.
func (r *Registry) instantiate(m *managed) scene.Node {
	node := r.host.NewNode(m.def.DisplayName(m.id))
	if node == nil {
		return nil
	}
	attrs := cloneAttributes(m.attrs)
	attrs.Placement, attrs.SiblingIndex = r.place(m, node)
	r.applier.Apply(node, attrs)
	return node
}

// place parents node under the UI root or the world root. Entities
// classified as UI are moved to their sort order, clamped to the children
// of the UI root.
func (r *Registry) place(m *managed, node scene.Node) (scene.Placement, int) {
	if m.placement != scene.PlaceUI {
		node.SetParent(r.host.WorldRoot())
		return scene.PlaceWorld, node.SiblingIndex()
	}

	root := r.host.UIRoot()
	node.SetParent(root)
	if m.ui {
		last := max(0, root.ChildCount()-1)
		node.SetSiblingIndex(clamp(m.uiOrder, 0, last))
	}
	return scene.PlaceUI, node.SiblingIndex()
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
