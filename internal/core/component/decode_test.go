package component

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/provision/pkg/encoding/jsonvalue"
)

func bundle(t *testing.T, text string) *jsonvalue.Object {
	t.Helper()
	v, err := jsonvalue.Parse(text)
	require.NoError(t, err)
	obj, ok := v.Object()
	require.True(t, ok)
	return obj
}

func TestDecodeKinds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Payload
	}{
		{"tag", `{"type": "Tag", "value": "Enemy"}`, Tag{Value: Some("Enemy")}},
		{"tag without value", `{"type": "Tag"}`, Tag{}},
		{"render layer", `{"type": "RenderLayer", "layer": "UI", "order": "2"}`, RenderLayer{Layer: "UI", Order: Some(2)}},
		{"render layer zero order", `{"type": "RenderLayer", "layer": "ui", "order": 0}`, RenderLayer{Layer: "ui", Order: Some(0)}},
		{"render layer bad order", `{"type": "RenderLayer", "layer": "ui", "order": "front"}`, RenderLayer{Layer: "ui"}},
		{"render layer huge order", `{"type": "RenderLayer", "layer": "ui", "order": -1e20}`, RenderLayer{Layer: "ui", Order: Some(math.MinInt)}},
		{"transform", `{"type": "Transform", "position": [1, "x"], "rotation": 90}`, Transform{
			Position: OptVec2{X: Some(1.0), Set: true},
			Rotation: Some(90.0),
		}},
		{"short vector", `{"type": "Transform", "position": [1]}`, Transform{}},
		{"health", `{"type": "Health", "max": 100, "current": "75.5"}`, Health{Max: Some(100.0), Current: Some(75.5)}},
		{"health bad number", `{"type": "Health", "max": "lots"}`, Health{}},
		{"ai", `{"type": "AI", "behavior": "chase"}`, AI{Behavior: Some("chase")}},
		{"input", `{"type": "Input", "scheme": "wasd"}`, Input{Scheme: Some("wasd")}},
		{"ui transform", `{"type": "UITransform", "anchor": "top_left", "size": [200, 50]}`, UITransform{
			Anchor: Some("top_left"),
			Size:   OptVec2{X: Some(200.0), Y: Some(50.0), Set: true},
		}},
		{"text content", `{"type": "TextContent", "value": 42}`, TextContent{Value: Some("42")}},
		{"text style", `{"type": "TextStyle", "font_size": 24}`, TextStyle{FontSize: Some(24.0)}},
		{"text color", `{"type": "TextColor", "value": "#ff0000"}`, TextColor{Value: Some("#ff0000")}},
		{"visual", `{"primitive": "sphere", "color": "red"}`, Visual{Primitive: Some("sphere"), Color: Some("red")}},
		{"untyped empty", `{"speed": 3}`, Opaque{}},
		{"unknown type", `{"type": "Inventory", "primitive": "cube"}`, Opaque{}},
		{"case sensitive type", `{"type": "tag", "value": "x"}`, Opaque{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Decode("id", bundle(t, tt.in))
			assert.Equal(t, tt.want, c.Payload)
			assert.Equal(t, tt.want.Kind(), c.Kind())
		})
	}
}

func TestDecodeKeepsBundle(t *testing.T) {
	b := bundle(t, `{"type": "Inventory", "slots": 8}`)
	c := Decode("Bag", b)
	assert.Equal(t, "Inventory", c.Type)
	assert.Equal(t, KindOpaque, c.Kind())
	assert.Equal(t, 8, jsonvalue.GetInt(c.Bundle, "slots", 0))
	assert.Equal(t, "Opaque", c.Kind().String())
}

func TestOptVec2Or(t *testing.T) {
	fallback := jsonvalue.Vec2{X: 5, Y: 6}
	assert.Equal(t, fallback, OptVec2{}.Or(fallback))
	assert.Equal(t, jsonvalue.Vec2{X: 1, Y: 6}, OptVec2{X: Some(1.0), Set: true}.Or(fallback))
}
