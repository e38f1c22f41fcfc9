// Package memscene is an in-memory scene graph used by tests and the CLI.
package memscene

import (
	"slices"

	"github.com/zeusync/provision/internal/core/scene"
)

var (
	_ scene.Node    = (*Node)(nil)
	_ scene.Host    = (*Host)(nil)
	_ scene.Applier = (*Recorder)(nil)
)

type Node struct {
	name      string
	parent    *Node
	children  []*Node
	active    bool
	destroyed bool
}

func newNode(name string) *Node {
	return &Node{name: name, active: true}
}

func (n *Node) Name() string { return n.name }

func (n *Node) SetParent(parent scene.Node) {
	p, _ := parent.(*Node)
	if n.parent == p && p != nil {
		return
	}
	n.detach()
	if p != nil {
		n.parent = p
		p.children = append(p.children, n)
	}
}

func (n *Node) Parent() scene.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) ChildCount() int { return len(n.children) }

func (n *Node) SetSiblingIndex(index int) {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	from := slices.Index(siblings, n)
	index = max(0, min(index, len(siblings)-1))
	if from == index {
		return
	}
	siblings = slices.Delete(siblings, from, from+1)
	n.parent.children = slices.Insert(siblings, index, n)
}

func (n *Node) SiblingIndex() int {
	if n.parent == nil {
		return 0
	}
	return slices.Index(n.parent.children, n)
}

func (n *Node) SetActive(active bool) { n.active = active }
func (n *Node) Active() bool          { return n.active }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

func (n *Node) Destroyed() bool { return n.destroyed }

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	if i := slices.Index(n.parent.children, n); i >= 0 {
		n.parent.children = slices.Delete(n.parent.children, i, i+1)
	}
	n.parent = nil
}

// Host is a scene.Host over plain Go values. It is not safe for concurrent use.
type Host struct {
	world     *Node
	ui        *Node
	created   int
	destroyed int
}

func NewHost() *Host {
	return &Host{world: newNode("World")}
}

func (h *Host) NewNode(name string) scene.Node {
	h.created++
	return newNode(name)
}

func (h *Host) WorldRoot() scene.Node { return h.world }

func (h *Host) UIRoot() scene.Node {
	if h.ui == nil {
		h.ui = newNode("Canvas")
	}
	return h.ui
}

func (h *Host) NewHoldingRoot(name string) scene.Node {
	h.created++
	root := newNode("Pool:" + name)
	root.active = false
	return root
}

func (h *Host) Destroy(node scene.Node) {
	n, ok := node.(*Node)
	if !ok || n.destroyed {
		return
	}
	n.detach()
	h.destroy(n)
}

func (h *Host) destroy(n *Node) {
	for _, c := range n.children {
		c.parent = nil
		h.destroy(c)
	}
	n.children = nil
	n.destroyed = true
	h.destroyed++
}

// World is the concrete world root.
func (h *Host) World() *Node { return h.world }

// UI is the concrete UI root, or nil before first use.
func (h *Host) UI() *Node { return h.ui }

// Created counts nodes made through NewNode and NewHoldingRoot.
func (h *Host) Created() int { return h.created }

// DestroyedCount counts nodes torn down, children included.
func (h *Host) DestroyedCount() int { return h.destroyed }

// Recorder is an Applier that remembers the last attribute set per node.
type Recorder struct {
	last  map[scene.Node]scene.Attributes
	calls int
}

func NewRecorder() *Recorder {
	return &Recorder{last: make(map[scene.Node]scene.Attributes)}
}

func (r *Recorder) Apply(node scene.Node, attrs scene.Attributes) {
	r.last[node] = attrs
	r.calls++
}

func (r *Recorder) Last(node scene.Node) (scene.Attributes, bool) {
	attrs, ok := r.last[node]
	return attrs, ok
}

func (r *Recorder) Calls() int { return r.calls }
