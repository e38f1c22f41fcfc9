package scene

// Node is one element of the host scene graph.
type Node interface {
	Name() string
	// SetParent reparents the node as the last child of parent. A nil parent
	// detaches it.
	SetParent(parent Node)
	Parent() Node
	ChildCount() int
	// SetSiblingIndex moves the node within its parent's children. The index
	// is clamped by the host.
	SetSiblingIndex(index int)
	SiblingIndex() int
	SetActive(active bool)
	Active() bool
}

// Host creates and destroys nodes and owns the shared roots.
type Host interface {
	NewNode(name string) Node
	// WorldRoot is the default parent for non-UI entities.
	WorldRoot() Node
	// UIRoot is the shared UI canvas, created on first use.
	UIRoot() Node
	// NewHoldingRoot creates a private parent for parked pool instances.
	NewHoldingRoot(name string) Node
	Destroy(node Node)
}

// Applier realises an accumulated attribute set on a node. The engine never
// queries it back.
type Applier interface {
	Apply(node Node, attrs Attributes)
}

type ApplierFunc func(node Node, attrs Attributes)

func (f ApplierFunc) Apply(node Node, attrs Attributes) { f(node, attrs) }

// NopApplier discards attribute sets.
var NopApplier Applier = ApplierFunc(func(Node, Attributes) {})
