package jsonvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustObject(t *testing.T, text string) *Object {
	t.Helper()
	v, err := Parse(text)
	require.NoError(t, err)
	obj, ok := v.Object()
	require.True(t, ok)
	return obj
}

func TestFieldCoercions(t *testing.T) {
	obj := mustObject(t, `{
		"i": 7, "f": 2.9, "s": "12", "bad": "x", "flag": 1, "zero": 0.0,
		"bs": "true", "name": "orc", "n": null, "arr": [1], "vec": [3, "y"]
	}`)

	assert.Equal(t, 7, GetInt(obj, "i", -1))
	assert.Equal(t, 2, GetInt(obj, "f", -1))
	assert.Equal(t, 12, GetInt(obj, "s", -1))
	assert.Equal(t, -1, GetInt(obj, "bad", -1))
	assert.Equal(t, -1, GetInt(obj, "missing", -1))

	assert.Equal(t, 2.9, GetFloat(obj, "f", 0))
	assert.Equal(t, 12.0, GetFloat(obj, "s", 0))
	assert.Equal(t, 7.0, GetFloat(obj, "i", 0))

	assert.True(t, GetBool(obj, "flag", false))
	assert.False(t, GetBool(obj, "zero", true))
	assert.True(t, GetBool(obj, "bs", false))
	assert.True(t, GetBool(obj, "bad", true))

	s, ok := GetString(obj, "name")
	assert.True(t, ok)
	assert.Equal(t, "orc", s)
	s, ok = GetString(obj, "i")
	assert.True(t, ok)
	assert.Equal(t, "7", s)
	_, ok = GetString(obj, "n")
	assert.False(t, ok)
	_, ok = GetString(obj, "")
	assert.False(t, ok)

	assert.Equal(t, Vec2{X: 9, Y: 9}, GetVec2(obj, "arr", Vec2{X: 9, Y: 9}))
	assert.Equal(t, Vec2{X: 3, Y: 9}, GetVec2(obj, "vec", Vec2{X: 9, Y: 9}))
}

func TestGetIntSaturatesLargeFloats(t *testing.T) {
	obj := mustObject(t, `{"big": 1e20, "small": -1e20, "huge": 1e999, "edge": 9223372036854775807.0}`)

	assert.Equal(t, math.MaxInt, GetInt(obj, "big", 0))
	assert.Equal(t, math.MinInt, GetInt(obj, "small", 0))
	assert.Equal(t, math.MaxInt, GetInt(obj, "huge", 0))
	assert.Equal(t, math.MaxInt, GetInt(obj, "edge", 0))

	v, _ := obj.Get("small")
	i, ok := v.Int()
	require.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), i)
}

func TestNilObjectIsEmpty(t *testing.T) {
	var obj *Object
	assert.Equal(t, 0, obj.Len())
	assert.Nil(t, obj.Keys())
	assert.Equal(t, 5, GetInt(obj, "x", 5))
	_, ok := obj.Get("x")
	assert.False(t, ok)
}
