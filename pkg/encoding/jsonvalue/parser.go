package jsonvalue

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/zeusync/provision/pkg/generic"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxDepth bounds array/object nesting.
const MaxDepth = 512

// buffers keeps their capacity across strings; String copies out.
var buffers = generic.NewResetPool(
	func() *bytes.Buffer { return new(bytes.Buffer) },
	func(b *bytes.Buffer) { b.Reset() },
)

// Parse parses a complete JSON document. It either returns the whole value or
// a *ParseError; partial values are never returned.
func Parse(text string) (Value, error) {
	p := parser{src: text}
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Value{}, p.fail("unexpected end of input")
	}
	v, err := p.value(0)
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return Value{}, p.fail(fmt.Sprintf("unexpected %q after document", p.src[p.pos]))
	}
	return v, nil
}

// ParseBytes decodes data as UTF-8, or as UTF-16 when it starts with a UTF-16
// byte order mark, and parses the result. A UTF-8 BOM is dropped.
func ParseBytes(data []byte) (Value, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return Value{}, &ParseError{Offset: 0, Msg: "undecodable text: " + err.Error()}
	}
	return Parse(string(decoded))
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(msg string) error {
	return &ParseError{Offset: p.pos, Msg: msg}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) value(depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, &ParseError{Offset: p.pos, Msg: "nesting exceeds limit", cause: ErrTooDeep}
	}
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Value{}, p.fail("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.object(depth)
	case c == '[':
		return p.array(depth)
	case c == '"':
		s, err := p.str()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case c == 't':
		return p.literal("true", Bool(true))
	case c == 'f':
		return p.literal("false", Bool(false))
	case c == 'n':
		return p.literal("null", Null())
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return Value{}, p.fail(fmt.Sprintf("unexpected %q", c))
	}
}

func (p *parser) literal(word string, v Value) (Value, error) {
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return Value{}, p.fail("invalid literal")
	}
	p.pos += len(word)
	return v, nil
}

func (p *parser) object(depth int) (Value, error) {
	p.pos++ // '{'
	obj := NewObject()
	p.skipSpace()
	if p.consume('}') {
		return FromObject(obj), nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			return Value{}, p.fail("expected object key")
		}
		key, err := p.str()
		if err != nil {
			return Value{}, err
		}
		p.skipSpace()
		if !p.consume(':') {
			return Value{}, p.fail("expected ':'")
		}
		v, err := p.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)
		p.skipSpace()
		if p.consume('}') {
			return FromObject(obj), nil
		}
		if !p.consume(',') {
			return Value{}, p.fail("expected ',' or '}'")
		}
	}
}

func (p *parser) array(depth int) (Value, error) {
	p.pos++ // '['
	var items []Value
	p.skipSpace()
	if p.consume(']') {
		return Array(), nil
	}
	for {
		v, err := p.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.consume(']') {
			return Array(items...), nil
		}
		if !p.consume(',') {
			return Value{}, p.fail("expected ',' or ']'")
		}
	}
}

func (p *parser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// str reads a quoted string starting at the opening quote.
func (p *parser) str() (string, error) {
	start := p.pos
	p.pos++ // '"'

	// Fast path: no escapes.
	for i := p.pos; i < len(p.src); i++ {
		switch p.src[i] {
		case '"':
			s := p.src[p.pos:i]
			p.pos = i + 1
			return s, nil
		case '\\':
			return p.escapedStr(start)
		}
	}
	p.pos = start
	return "", p.fail("unterminated string")
}

func (p *parser) escapedStr(start int) (string, error) {
	b := buffers.Get()
	defer buffers.Put(b)

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		if c == '"' {
			return b.String(), nil
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if p.pos >= len(p.src) {
			break
		}
		esc := p.src[p.pos]
		p.pos++
		switch esc {
		case '"', '\\', '/':
			b.WriteByte(esc)
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			b.WriteRune(p.unicodeEscape())
		default:
			b.WriteByte(esc)
		}
	}
	p.pos = start
	return "", p.fail("unterminated string")
}

// unicodeEscape decodes the four hex digits after `\u`, pairing surrogates.
// Malformed or truncated escapes yield utf8.RuneError and consume only what
// was valid.
func (p *parser) unicodeEscape() rune {
	r, ok := p.hex4()
	if !ok {
		return utf8.RuneError
	}
	if !utf16.IsSurrogate(r) {
		return r
	}
	if r >= 0xDC00 || !strings.HasPrefix(p.src[p.pos:], `\u`) {
		return utf8.RuneError
	}
	save := p.pos
	p.pos += 2
	lo, ok := p.hex4()
	if !ok {
		p.pos = save
		return utf8.RuneError
	}
	combined := utf16.DecodeRune(r, lo)
	if combined == utf8.RuneError {
		p.pos = save
	}
	return combined
}

func (p *parser) hex4() (rune, bool) {
	if p.pos+4 > len(p.src) {
		return 0, false
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, false
	}
	p.pos += 4
	return rune(n), true
}

// number accepts an optional sign (including '+'), digits, fraction and
// exponent. Integral tokens that fit int64 become KindInt.
func (p *parser) number() (Value, error) {
	start := p.pos
	if p.src[p.pos] == '-' || p.src[p.pos] == '+' {
		p.pos++
	}
	digits := p.digits()
	integral := true
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		integral = false
		p.pos++
		digits += p.digits()
	}
	if digits == 0 {
		p.pos = start
		return Value{}, p.fail("invalid number")
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		integral = false
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
			p.pos++
		}
		if p.digits() == 0 {
			return Value{}, p.fail("invalid exponent")
		}
	}

	token := p.src[start:p.pos]
	if integral {
		if i, err := strconv.ParseInt(token, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		// Out of range still yields ±Inf from ParseFloat; anything else is malformed.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			p.pos = start
			return Value{}, p.fail("invalid number")
		}
	}
	return Float(f), nil
}

func (p *parser) digits() int {
	n := 0
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
		n++
	}
	return n
}
