package component

import (
	"strings"

	"github.com/zeusync/provision/pkg/encoding/jsonvalue"
)

// Kind is the closed set of component semantics the engine understands.
// Bundles whose type is not recognised decode as KindOpaque.
type Kind uint8

const (
	KindOpaque Kind = iota
	KindTag
	KindRenderLayer
	KindTransform
	KindHealth
	KindAI
	KindInput
	KindUITransform
	KindTextContent
	KindTextStyle
	KindTextColor
	// KindVisual is an untyped bundle carrying primitive, material or color.
	KindVisual
)

var kindNames = [...]string{
	KindOpaque:      "Opaque",
	KindTag:         "Tag",
	KindRenderLayer: "RenderLayer",
	KindTransform:   "Transform",
	KindHealth:      "Health",
	KindAI:          "AI",
	KindInput:       "Input",
	KindUITransform: "UITransform",
	KindTextContent: "TextContent",
	KindTextStyle:   "TextStyle",
	KindTextColor:   "TextColor",
	KindVisual:      "Visual",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ParseKind maps a bundle "type" string to its Kind. Matching is exact, like
// the catalog files are authored.
func ParseKind(typ string) Kind {
	switch typ {
	case "Tag":
		return KindTag
	case "RenderLayer":
		return KindRenderLayer
	case "Transform":
		return KindTransform
	case "Health":
		return KindHealth
	case "AI":
		return KindAI
	case "Input":
		return KindInput
	case "UITransform":
		return KindUITransform
	case "TextContent":
		return KindTextContent
	case "TextStyle":
		return KindTextStyle
	case "TextColor":
		return KindTextColor
	default:
		return KindOpaque
	}
}

// Opt is a field that may be absent from its bundle. Absent fields leave
// earlier components' values in place when attributes accumulate.
type Opt[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Opt[T] { return Opt[T]{Value: v, Set: true} }

func (o Opt[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

// OptVec2 holds a two-element array whose axes decode independently.
type OptVec2 struct {
	X, Y Opt[float64]
	Set  bool
}

func (o OptVec2) Or(fallback jsonvalue.Vec2) jsonvalue.Vec2 {
	if !o.Set {
		return fallback
	}
	return jsonvalue.Vec2{X: o.X.Or(fallback.X), Y: o.Y.Or(fallback.Y)}
}

// Payload is the decoded form of a bundle, one concrete type per Kind.
type Payload interface {
	Kind() Kind
}

type (
	Opaque struct{}

	Tag struct {
		Value Opt[string]
	}

	RenderLayer struct {
		Layer string
		Order Opt[int]
	}

	Transform struct {
		Position OptVec2
		Rotation Opt[float64]
	}

	Health struct {
		Max     Opt[float64]
		Current Opt[float64]
	}

	AI struct {
		Behavior Opt[string]
	}

	Input struct {
		Scheme Opt[string]
	}

	UITransform struct {
		Anchor           Opt[string]
		AnchoredPosition OptVec2
		Size             OptVec2
	}

	TextContent struct {
		Value Opt[string]
	}

	TextStyle struct {
		FontSize      Opt[float64]
		LetterSpacing Opt[float64]
	}

	TextColor struct {
		Value Opt[string]
	}

	Visual struct {
		Primitive Opt[string]
		Material  Opt[string]
		Color     Opt[string]
	}
)

func (Opaque) Kind() Kind      { return KindOpaque }
func (Tag) Kind() Kind         { return KindTag }
func (RenderLayer) Kind() Kind { return KindRenderLayer }
func (Transform) Kind() Kind   { return KindTransform }
func (Health) Kind() Kind      { return KindHealth }
func (AI) Kind() Kind          { return KindAI }
func (Input) Kind() Kind       { return KindInput }
func (UITransform) Kind() Kind { return KindUITransform }
func (TextContent) Kind() Kind { return KindTextContent }
func (TextStyle) Kind() Kind   { return KindTextStyle }
func (TextColor) Kind() Kind   { return KindTextColor }
func (Visual) Kind() Kind      { return KindVisual }

// IsUI reports whether the layer is the UI layer, case-insensitively.
func (r RenderLayer) IsUI() bool {
	return strings.EqualFold(r.Layer, "ui")
}

// Component is one catalog entry: its raw bundle plus the payload decoded
// from it at merge time.
type Component struct {
	ID      string
	Type    string
	Bundle  *jsonvalue.Object
	Payload Payload
	// Source is the file the winning definition came from.
	Source string
}

func (c Component) Kind() Kind {
	if c.Payload == nil {
		return KindOpaque
	}
	return c.Payload.Kind()
}

// TagValue returns the declared value of a Tag component.
func (c Component) TagValue() (string, bool) {
	t, ok := c.Payload.(Tag)
	if !ok || !t.Value.Set {
		return "", false
	}
	return t.Value.Value, true
}
