package jsonvalue

import (
	"math"
	"strconv"
	"strings"
)

// GetString returns the scalar at key rendered as text. Missing keys, null,
// arrays and objects report false.
func GetString(obj *Object, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v, ok := obj.Get(key)
	if !ok {
		return "", false
	}
	return v.Text()
}

// GetStringOr is GetString with a fallback.
func GetStringOr(obj *Object, key, fallback string) string {
	if s, ok := GetString(obj, key); ok {
		return s
	}
	return fallback
}

// GetInt reads an int, truncating floats (saturating out of range) and
// parsing numeric strings.
func GetInt(obj *Object, key string, fallback int) int {
	v, ok := obj.Get(key)
	if !ok || key == "" {
		return fallback
	}
	switch v.Kind() {
	case KindInt, KindFloat:
		i, _ := v.Int()
		return clampInt(i)
	case KindString:
		s, _ := v.Str()
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i
		}
	}
	return fallback
}

// GetFloat reads a number, parsing numeric strings.
func GetFloat(obj *Object, key string, fallback float64) float64 {
	v, ok := obj.Get(key)
	if !ok || key == "" {
		return fallback
	}
	if f, isNum := v.Float(); isNum {
		return f
	}
	if s, isStr := v.Str(); isStr {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetBool reads a bool. Numbers are true when non-zero; strings go through
// strconv.ParseBool.
func GetBool(obj *Object, key string, fallback bool) bool {
	v, ok := obj.Get(key)
	if !ok || key == "" {
		return fallback
	}
	if b, isBool := v.Bool(); isBool {
		return b
	}
	if f, isNum := v.Float(); isNum {
		return f != 0
	}
	if s, isStr := v.Str(); isStr {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return fallback
}

// Vec2 is a pair of floats read from a two-element array.
type Vec2 struct {
	X, Y float64
}

// GetVec2 reads [x, y]. Arrays shorter than two elements yield fallback;
// non-numeric elements fall back per axis.
func GetVec2(obj *Object, key string, fallback Vec2) Vec2 {
	v, ok := obj.Get(key)
	if !ok {
		return fallback
	}
	items, isArr := v.Array()
	if !isArr || len(items) < 2 {
		return fallback
	}
	out := fallback
	if x, isNum := items[0].Float(); isNum {
		out.X = x
	}
	if y, isNum := items[1].Float(); isNum {
		out.Y = y
	}
	return out
}

// GetObject returns the nested object at key.
func GetObject(obj *Object, key string) (*Object, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	return v.Object()
}

// GetArray returns the nested array at key.
func GetArray(obj *Object, key string) ([]Value, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	return v.Array()
}

func clampInt(i int64) int {
	if i > math.MaxInt {
		return math.MaxInt
	}
	if i < math.MinInt {
		return math.MinInt
	}
	return int(i)
}
