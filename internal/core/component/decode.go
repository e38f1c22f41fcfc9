package component

import (
	"math"

	"github.com/zeusync/provision/pkg/encoding/jsonvalue"
)

// Decode builds the Component for one catalog entry. It never fails: bundles
// with an unrecognised type keep their raw fields and decode as Opaque.
func Decode(id string, bundle *jsonvalue.Object) Component {
	typ := jsonvalue.GetStringOr(bundle, "type", "")
	c := Component{ID: id, Type: typ, Bundle: bundle}

	switch ParseKind(typ) {
	case KindTag:
		c.Payload = Tag{Value: optString(bundle, "value")}
	case KindRenderLayer:
		c.Payload = RenderLayer{
			Layer: jsonvalue.GetStringOr(bundle, "layer", ""),
			Order: optInt(bundle, "order"),
		}
	case KindTransform:
		c.Payload = Transform{
			Position: optVec2(bundle, "position"),
			Rotation: optFloat(bundle, "rotation"),
		}
	case KindHealth:
		c.Payload = Health{Max: optFloat(bundle, "max"), Current: optFloat(bundle, "current")}
	case KindAI:
		c.Payload = AI{Behavior: optString(bundle, "behavior")}
	case KindInput:
		c.Payload = Input{Scheme: optString(bundle, "scheme")}
	case KindUITransform:
		c.Payload = UITransform{
			Anchor:           optString(bundle, "anchor"),
			AnchoredPosition: optVec2(bundle, "anchored_position"),
			Size:             optVec2(bundle, "size"),
		}
	case KindTextContent:
		c.Payload = TextContent{Value: optString(bundle, "value")}
	case KindTextStyle:
		c.Payload = TextStyle{
			FontSize:      optFloat(bundle, "font_size"),
			LetterSpacing: optFloat(bundle, "letter_spacing"),
		}
	case KindTextColor:
		c.Payload = TextColor{Value: optString(bundle, "value")}
	default:
		c.Payload = decodeUntyped(typ, bundle)
	}
	return c
}

func decodeUntyped(typ string, bundle *jsonvalue.Object) Payload {
	if typ != "" {
		return Opaque{}
	}
	v := Visual{
		Primitive: optString(bundle, "primitive"),
		Material:  optString(bundle, "material"),
		Color:     optString(bundle, "color"),
	}
	if !v.Primitive.Set && !v.Material.Set && !v.Color.Set {
		return Opaque{}
	}
	return v
}

func optString(obj *jsonvalue.Object, key string) Opt[string] {
	if s, ok := jsonvalue.GetString(obj, key); ok {
		return Some(s)
	}
	return Opt[string]{}
}

func optFloat(obj *jsonvalue.Object, key string) Opt[float64] {
	if !obj.Has(key) {
		return Opt[float64]{}
	}
	f := jsonvalue.GetFloat(obj, key, math.NaN())
	if math.IsNaN(f) {
		return Opt[float64]{}
	}
	return Some(f)
}

func optInt(obj *jsonvalue.Object, key string) Opt[int] {
	if !obj.Has(key) {
		return Opt[int]{}
	}
	// Two fallbacks tell "unreadable" apart from any real value.
	i := jsonvalue.GetInt(obj, key, 0)
	if i == 0 && jsonvalue.GetInt(obj, key, 1) == 1 {
		return Opt[int]{}
	}
	return Some(i)
}

func optVec2(obj *jsonvalue.Object, key string) OptVec2 {
	items, ok := jsonvalue.GetArray(obj, key)
	if !ok || len(items) < 2 {
		return OptVec2{}
	}
	out := OptVec2{Set: true}
	if x, isNum := items[0].Float(); isNum {
		out.X = Some(x)
	}
	if y, isNum := items[1].Float(); isNum {
		out.Y = Some(y)
	}
	return out
}
