package registry

import (
	"strings"

	"github.com/zeusync/provision/internal/core/component"
	"github.com/zeusync/provision/internal/core/entity"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/internal/core/scene"
	"github.com/zeusync/provision/pkg/encoding/jsonvalue"
)

const defaultTextColor = "white"

// classify decides whether an entity lives on the UI layer. A legacy UI type
// marks it UI with order 0; otherwise the first RenderLayer(ui) in declared
// component order wins and supplies the order.
func classify(def entity.Definition, catalog Catalog) (ui bool, order int) {
	if def.Legacy() != entity.LegacyNone {
		ui = true
	}
	for _, id := range def.Components {
		if strings.TrimSpace(id) == "" {
			continue
		}
		comp, ok := catalog.Get(id)
		if !ok {
			continue
		}
		if rl, isLayer := comp.Payload.(component.RenderLayer); isLayer && rl.IsUI() {
			return true, rl.Order.Or(0)
		}
	}
	return ui, order
}

// resolve folds the entity's components into one attribute set. Components
// apply in declared order and a field absent from a later bundle keeps the
// value accumulated so far. Unknown ids are warned about and skipped.
func resolve(def entity.Definition, entityID string, catalog Catalog, logger log.Log) scene.Attributes {
	attrs := scene.Attributes{
		EntityID: entityID,
		Name:     def.DisplayName(entityID),
	}

	var (
		tag     string
		hasUI   bool
		uiOrder int
	)

	for _, id := range def.Components {
		if strings.TrimSpace(id) == "" {
			continue
		}
		comp, ok := catalog.Get(id)
		if !ok {
			logger.Warn("unknown component id",
				log.String("component_id", id),
				log.String("entity_id", entityID))
			continue
		}

		switch p := comp.Payload.(type) {
		case component.Tag:
			tag = p.Value.Or(tag)
		case component.RenderLayer:
			if p.IsUI() {
				hasUI = true
				uiOrder = p.Order.Or(uiOrder)
			}
		case component.Transform:
			t := orZero(attrs.Transform)
			t.Position = vec(p.Position.Or(unvec(t.Position)))
			t.Rotation = p.Rotation.Or(t.Rotation)
			attrs.Transform = &t
		case component.Health:
			h := orZero(attrs.Health)
			h.Max = p.Max.Or(h.Max)
			h.Current = p.Current.Or(h.Current)
			attrs.Health = &h
		case component.AI:
			b := p.Behavior.Or(deref(attrs.AI))
			attrs.AI = &b
		case component.Input:
			s := p.Scheme.Or(deref(attrs.Input))
			attrs.Input = &s
		case component.UITransform:
			u := orZero(attrs.UITransform)
			u.Anchor = p.Anchor.Or(u.Anchor)
			u.AnchoredPosition = vec(p.AnchoredPosition.Or(unvec(u.AnchoredPosition)))
			u.Size = vec(p.Size.Or(unvec(u.Size)))
			attrs.UITransform = &u
		case component.TextContent:
			t := textOrDefault(attrs.Text)
			t.Value = p.Value.Or(t.Value)
			attrs.Text = &t
		case component.TextStyle:
			t := textOrDefault(attrs.Text)
			t.FontSize = p.FontSize.Or(t.FontSize)
			t.LetterSpacing = p.LetterSpacing.Or(t.LetterSpacing)
			attrs.Text = &t
		case component.TextColor:
			t := textOrDefault(attrs.Text)
			t.Color = p.Value.Or(t.Color)
			attrs.Text = &t
		case component.Visual:
			v := orZero(attrs.Visual)
			v.Primitive = p.Primitive.Or(v.Primitive)
			v.Material = p.Material.Or(v.Material)
			v.Color = p.Color.Or(v.Color)
			attrs.Visual = &v
		}
	}

	if strings.TrimSpace(tag) != "" {
		attrs.Tag = tag
	}
	if hasUI {
		attrs.UILayer = &scene.UILayer{Order: uiOrder}
	}
	if attrs.Text != nil && attrs.Text.FontSize <= 0 {
		attrs.Text.FontSize = entity.DefaultFontSize
	}

	// The legacy blocks only apply to entities that declare no
	// component-driven UI, so the two paths never overwrite each other.
	if attrs.UILayer == nil && attrs.UITransform == nil && attrs.Text == nil {
		switch def.Legacy() {
		case entity.LegacyUIText:
			attrs.LegacyText = legacyText(def.UIText)
		case entity.LegacyUIImage:
			attrs.LegacyImage = legacyImage(def.UIImage)
		}
	}
	return attrs
}

func legacyText(src *entity.LegacyText) *scene.LegacyText {
	out := &scene.LegacyText{FontSize: entity.DefaultFontSize, Color: defaultTextColor}
	if src == nil {
		return out
	}
	out.Text = src.Text
	out.Anchor = src.Anchor
	out.AnchoredPosition = vec(src.AnchoredPosition)
	if src.FontSize > 0 {
		out.FontSize = src.FontSize
	}
	if strings.TrimSpace(src.Color) != "" {
		out.Color = src.Color
	}
	return out
}

func legacyImage(src *entity.LegacyImage) *scene.LegacyImage {
	out := &scene.LegacyImage{
		Size:  scene.Vec2{X: entity.DefaultImageSide, Y: entity.DefaultImageSide},
		Color: defaultTextColor,
	}
	if src == nil {
		return out
	}
	out.Anchor = src.Anchor
	out.AnchoredPosition = vec(src.AnchoredPosition)
	out.Size = vec(src.Size)
	out.Sprite = src.Sprite
	if strings.TrimSpace(src.Color) != "" {
		out.Color = src.Color
	}
	return out
}

// cloneAttributes copies every section so appliers cannot alter the cached
// template through the pointers they receive.
func cloneAttributes(a scene.Attributes) scene.Attributes {
	out := a
	out.Transform = clonePtr(a.Transform)
	out.Health = clonePtr(a.Health)
	out.AI = clonePtr(a.AI)
	out.Input = clonePtr(a.Input)
	out.UILayer = clonePtr(a.UILayer)
	out.UITransform = clonePtr(a.UITransform)
	out.Text = clonePtr(a.Text)
	out.Visual = clonePtr(a.Visual)
	out.LegacyText = clonePtr(a.LegacyText)
	out.LegacyImage = clonePtr(a.LegacyImage)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func orZero[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func textOrDefault(t *scene.Text) scene.Text {
	if t == nil {
		return scene.Text{FontSize: entity.DefaultFontSize, Color: defaultTextColor}
	}
	return *t
}

func vec(v jsonvalue.Vec2) scene.Vec2   { return scene.Vec2{X: v.X, Y: v.Y} }
func unvec(v scene.Vec2) jsonvalue.Vec2 { return jsonvalue.Vec2{X: v.X, Y: v.Y} }
