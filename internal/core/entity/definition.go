package entity

import (
	"slices"
	"strings"

	"github.com/zeusync/provision/pkg/encoding/jsonvalue"
)

// Legacy discriminators carried in Definition.Type.
const (
	TypeUIText  = "UI_text"
	TypeUIImage = "UI_image"
)

const (
	DefaultFontSize  = 36.0
	DefaultImageSide = 128.0
)

// Definition is one declarative entity: an ordered component list plus its
// spawn policy. Ids are assigned by the registry, never read from input.
type Definition struct {
	Name            string
	Type            string
	Components      []string
	CreateOnStart   bool
	ObjectPooling   bool
	PoolInitialSize int
	// PoolMaxSize of zero or less means unbounded.
	PoolMaxSize int

	UIText  *LegacyText
	UIImage *LegacyImage

	// Source is the file or payload the definition was decoded from.
	Source string
}

// LegacyText is the pre-component UI_text block.
type LegacyText struct {
	Text             string
	FontSize         float64
	AnchoredPosition jsonvalue.Vec2
	Anchor           string
	Color            string
}

// LegacyImage is the pre-component UI_image block.
type LegacyImage struct {
	Size             jsonvalue.Vec2
	AnchoredPosition jsonvalue.Vec2
	Anchor           string
	Color            string
	Sprite           string
}

type LegacyKind uint8

const (
	LegacyNone LegacyKind = iota
	LegacyUIText
	LegacyUIImage
)

// Legacy reports which legacy UI discriminator Type names, case-insensitively.
func (d Definition) Legacy() LegacyKind {
	switch {
	case strings.EqualFold(d.Type, TypeUIText):
		return LegacyUIText
	case strings.EqualFold(d.Type, TypeUIImage):
		return LegacyUIImage
	default:
		return LegacyNone
	}
}

// Clone returns a deep copy, so a registered definition cannot be mutated
// through the caller's value.
func (d Definition) Clone() Definition {
	out := d
	out.Components = slices.Clone(d.Components)
	if d.UIText != nil {
		t := *d.UIText
		out.UIText = &t
	}
	if d.UIImage != nil {
		img := *d.UIImage
		out.UIImage = &img
	}
	return out
}

// DisplayName is the name used for host nodes.
func (d Definition) DisplayName(fallback string) string {
	if strings.TrimSpace(d.Name) != "" {
		return d.Name
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return "entity"
}
