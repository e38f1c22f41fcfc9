package entity

import (
	"fmt"
	"strings"

	"github.com/zeusync/provision/pkg/encoding/jsonvalue"
)

// Decode parses an entity payload. Accepted shapes are a bare array of
// entity objects, an object with an "entities" array, or a single entity
// object. Only a syntax error fails the call; bad entries are skipped.
func Decode(payload []byte) ([]Definition, error) {
	root, err := jsonvalue.ParseBytes(payload)
	if err != nil {
		return nil, err
	}
	return DecodeValue(root)
}

// DecodeValue is Decode over an already parsed value.
func DecodeValue(root jsonvalue.Value) ([]Definition, error) {
	if items, ok := root.Array(); ok {
		return decodeList(items), nil
	}
	obj, ok := root.Object()
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedShape, root.Kind())
	}
	if items, ok := jsonvalue.GetArray(obj, "entities"); ok {
		return decodeList(items), nil
	}
	return []Definition{decodeEntity(obj)}, nil
}

func decodeList(items []jsonvalue.Value) []Definition {
	defs := make([]Definition, 0, len(items))
	for _, item := range items {
		obj, ok := item.Object()
		if !ok {
			continue
		}
		defs = append(defs, decodeEntity(obj))
	}
	return defs
}

func decodeEntity(obj *jsonvalue.Object) Definition {
	def := Definition{
		Name:            jsonvalue.GetStringOr(obj, "name", ""),
		Type:            jsonvalue.GetStringOr(obj, "type", ""),
		CreateOnStart:   jsonvalue.GetBool(obj, "create_on_start", false),
		ObjectPooling:   jsonvalue.GetBool(obj, "object_pooling", false),
		PoolInitialSize: jsonvalue.GetInt(obj, "pool_initial_size", 0),
		PoolMaxSize:     jsonvalue.GetInt(obj, "pool_max_size", 0),
	}

	if items, ok := jsonvalue.GetArray(obj, "components"); ok {
		for _, item := range items {
			id, isScalar := item.Text()
			if !isScalar || strings.TrimSpace(id) == "" {
				continue
			}
			def.Components = append(def.Components, id)
		}
	}

	if block, ok := jsonvalue.GetObject(obj, "UI_text"); ok {
		def.UIText = &LegacyText{
			Text:             jsonvalue.GetStringOr(block, "text", ""),
			FontSize:         jsonvalue.GetFloat(block, "font_size", 0),
			AnchoredPosition: jsonvalue.GetVec2(block, "anchored_position", jsonvalue.Vec2{}),
			Anchor:           jsonvalue.GetStringOr(block, "anchor", ""),
			Color:            jsonvalue.GetStringOr(block, "color", ""),
		}
	}
	if block, ok := jsonvalue.GetObject(obj, "UI_image"); ok {
		def.UIImage = &LegacyImage{
			Size:             jsonvalue.GetVec2(block, "size", jsonvalue.Vec2{X: DefaultImageSide, Y: DefaultImageSide}),
			AnchoredPosition: jsonvalue.GetVec2(block, "anchored_position", jsonvalue.Vec2{}),
			Anchor:           jsonvalue.GetStringOr(block, "anchor", ""),
			Color:            jsonvalue.GetStringOr(block, "color", ""),
			Sprite:           jsonvalue.GetStringOr(block, "sprite", ""),
		}
	}
	return def
}
