package scene

type Vec2 struct {
	X, Y float64
}

type Placement uint8

const (
	PlaceWorld Placement = iota
	PlaceUI
)

func (p Placement) String() string {
	if p == PlaceUI {
		return "ui"
	}
	return "world"
}

type Transform struct {
	Position Vec2
	Rotation float64
}

type Health struct {
	Max     float64
	Current float64
}

type UILayer struct {
	Order int
}

type UITransform struct {
	Anchor           string
	AnchoredPosition Vec2
	Size             Vec2
}

type Text struct {
	Value         string
	FontSize      float64
	LetterSpacing float64
	Color         string
}

type Visual struct {
	Primitive string
	Material  string
	Color     string
}

// LegacyText and LegacyImage carry the pre-component UI blocks.
type LegacyText struct {
	Text             string
	FontSize         float64
	Anchor           string
	AnchoredPosition Vec2
	Color            string
}

type LegacyImage struct {
	Anchor           string
	AnchoredPosition Vec2
	Size             Vec2
	Color            string
	Sprite           string
}

// Attributes is the resolved state for one instantiation. Nil sections were
// not declared by any component.
type Attributes struct {
	EntityID     string
	Name         string
	Placement    Placement
	SiblingIndex int

	Transform   *Transform
	Health      *Health
	AI          *string
	Input       *string
	Tag         string
	UILayer     *UILayer
	UITransform *UITransform
	Text        *Text
	Visual      *Visual

	LegacyText  *LegacyText
	LegacyImage *LegacyImage
}

// HasUI reports whether any UI section is present.
func (a Attributes) HasUI() bool {
	return a.UILayer != nil || a.UITransform != nil || a.Text != nil ||
		a.LegacyText != nil || a.LegacyImage != nil
}
