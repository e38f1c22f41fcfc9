package jsonvalue

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
	}{
		{"null", "null", KindNull},
		{"true", " true ", KindBool},
		{"false", "false", KindBool},
		{"int", "42", KindInt},
		{"negative int", "-7", KindInt},
		{"plus sign", "+5", KindInt},
		{"float", "3.25", KindFloat},
		{"exponent", "1e3", KindFloat},
		{"int64 overflow", "99999999999999999999", KindFloat},
		{"string", `"hi"`, KindString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestParseNumbers(t *testing.T) {
	v, err := Parse("+12")
	require.NoError(t, err)
	i, ok := v.Int()
	require.True(t, ok)
	assert.Equal(t, int64(12), i)

	v, err = Parse("9223372036854775807")
	require.NoError(t, err)
	i, _ = v.Int()
	assert.Equal(t, int64(math.MaxInt64), i)

	v, err = Parse("9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, v.Kind())
	f, _ := v.Float()
	assert.InDelta(t, 9.223372036854775808e18, f, 1e4)

	v, err = Parse("-2.5e-1")
	require.NoError(t, err)
	f, _ = v.Float()
	assert.Equal(t, -0.25, f)
}

func TestParseObjectOrderAndDuplicates(t *testing.T) {
	v, err := Parse(`{"b": 1, "a": 2, "b": 3}`)
	require.NoError(t, err)
	obj, ok := v.Object()
	require.True(t, ok)

	assert.Equal(t, []string{"b", "a"}, obj.Keys())
	b, _ := obj.Get("b")
	bi, _ := b.Int()
	assert.Equal(t, int64(3), bi)
}

func TestParseNested(t *testing.T) {
	v, err := Parse(`{"components": {"Solid": {"type": "RenderLayer", "layer": "world", "pos": [1, 2.5]}}}`)
	require.NoError(t, err)
	root, _ := v.Object()
	comps, ok := GetObject(root, "components")
	require.True(t, ok)
	solid, ok := GetObject(comps, "Solid")
	require.True(t, ok)
	assert.Equal(t, "RenderLayer", GetStringOr(solid, "type", ""))
	assert.Equal(t, Vec2{X: 1, Y: 2.5}, GetVec2(solid, "pos", Vec2{}))
}

func TestParseEscapes(t *testing.T) {
	v, err := Parse(`"a\n\"b\"\\\/Aé"`)
	require.NoError(t, err)
	s, _ := v.Str()
	assert.Equal(t, "a\n\"b\"\\/Aé", s)

	v, err = Parse(`"\ud83d\ude00"`)
	require.NoError(t, err)
	s, _ = v.Str()
	assert.Equal(t, "😀", s)
}

func TestParseEscapedStringsDoNotShareBuffers(t *testing.T) {
	v, err := Parse(`{"long": "` + strings.Repeat(`x\t`, 64) + `", "short": "\n", "next": "y\"z"}`)
	require.NoError(t, err)
	obj, ok := v.Object()
	require.True(t, ok)

	long, _ := GetString(obj, "long")
	assert.Equal(t, strings.Repeat("x\t", 64), long)
	short, _ := GetString(obj, "short")
	assert.Equal(t, "\n", short)
	next, _ := GetString(obj, "next")
	assert.Equal(t, `y"z`, next)
}

func TestParseLenientUnicodeEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"invalid hex", `"x\uZZZZy"`, "x" + string(utf8.RuneError) + "ZZZZy"},
		{"truncated", `"\u12"`, string(utf8.RuneError) + "12"},
		{"lone high surrogate", `"\ud83dA"`, string(utf8.RuneError) + "A"},
		{"lone low surrogate", `"\ude00"`, string(utf8.RuneError)},
		{"high then non-low escape", `"\ud83d\u0041"`, string(utf8.RuneError) + "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.in)
			require.NoError(t, err)
			s, _ := v.Str()
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"{",
		`{"a" 1}`,
		`{"a": 1,}`,
		"[1, 2",
		`"unterminated`,
		"tru",
		"nul",
		"-",
		"1e",
		"{} extra",
		"@",
		`{1: 2}`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			v, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))
			assert.True(t, v.IsNull(), "failed parse must not yield a partial value")

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.GreaterOrEqual(t, perr.Offset, 0)
		})
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := make([]byte, 0, 2*(MaxDepth+2))
	for i := 0; i < MaxDepth+2; i++ {
		deep = append(deep, '[')
	}
	for i := 0; i < MaxDepth+2; i++ {
		deep = append(deep, ']')
	}
	_, err := Parse(string(deep))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooDeep))
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestParseBytesEncodings(t *testing.T) {
	utf8BOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"k": "v"}`)...)
	v, err := ParseBytes(utf8BOM)
	require.NoError(t, err)
	obj, _ := v.Object()
	assert.Equal(t, "v", GetStringOr(obj, "k", ""))

	// UTF-16LE with BOM: {"k":1}
	src := `{"k":1}`
	utf16le := []byte{0xFF, 0xFE}
	for _, r := range src {
		utf16le = append(utf16le, byte(r), 0)
	}
	v, err = ParseBytes(utf16le)
	require.NoError(t, err)
	obj, _ = v.Object()
	assert.Equal(t, 1, GetInt(obj, "k", 0))
}
