// Package luxem reads and writes the luxem textual document format.
//
// A luxem document is a sequence of values. A value is a primitive (a bare
// word or a quoted string), an object {key: value, ...}, or an array
// [value, ...], optionally prefixed by a type tag in parentheses:
//
//	(rule) {from: 4, to: 5}
//
// Trailing commas are permitted and a document may contain several root
// values.
package luxem

import (
	"fmt"

	"github.com/Rendaw/luxemog/tree"
)

// SyntaxError reports malformed input together with the byte offset where
// decoding stopped.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("luxem: %s at offset %d", e.Msg, e.Offset)
}

// Decode parses data and returns every root value in order.
func Decode(data []byte) ([]tree.Value, error) {
	p := &parser{data: data}
	var roots []tree.Value
	for {
		p.skipSpace()
		if p.done() {
			return roots, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		roots = append(roots, v)
	}
}

// DecodeString is Decode over a string.
func DecodeString(text string) ([]tree.Value, error) {
	return Decode([]byte(text))
}

// DecodeOne parses data expecting exactly one root value.
func DecodeOne(data []byte) (tree.Value, error) {
	roots, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(roots) != 1 {
		return nil, &SyntaxError{Offset: len(data), Msg: fmt.Sprintf("expected one root value, found %d", len(roots))}
	}
	return roots[0], nil
}

type parser struct {
	data []byte
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.data) }

func (p *parser) peek() byte { return p.data[p.pos] }

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for !p.done() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// isDelimiter reports whether c ends a bare word.
func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '{', '}', '[', ']', '(', ')', ',', ':', '"':
		return true
	}
	return false
}

func (p *parser) parseValue() (tree.Value, error) {
	p.skipSpace()
	if p.done() {
		return nil, p.errorf("expected value, found end of input")
	}

	var typeName string
	hasType := false
	if p.peek() == '(' {
		p.pos++
		start := p.pos
		for {
			if p.done() {
				return nil, p.errorf("unterminated type tag")
			}
			if p.peek() == ')' {
				break
			}
			p.pos++
		}
		typeName = string(p.data[start:p.pos])
		hasType = true
		p.pos++
		p.skipSpace()
	}

	var out tree.Value
	switch {
	case p.done(), p.peek() == ',', p.peek() == '}', p.peek() == ']':
		// A type tag directly followed by a delimiter tags an empty
		// primitive, e.g. "from: (*wild),".
		if !hasType {
			return nil, p.errorf("expected value")
		}
		out = tree.NewPrimitive("")
	case p.peek() == '{':
		obj, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		out = obj
	case p.peek() == '[':
		arr, err := p.parseArray()
		if err != nil {
			return nil, err
		}
		out = arr
	case p.peek() == '"':
		text, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		out = tree.NewPrimitive(text)
	default:
		word, err := p.parseWord()
		if err != nil {
			return nil, err
		}
		out = tree.NewPrimitive(word)
	}
	if hasType {
		out.SetType(typeName)
	}
	return out, nil
}

func (p *parser) parseWord() (string, error) {
	start := p.pos
	for !p.done() && !isDelimiter(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected value, found %q", string(p.peek()))
	}
	return string(p.data[start:p.pos]), nil
}

func (p *parser) parseQuoted() (string, error) {
	p.pos++ // opening quote
	var out []byte
	for {
		if p.done() {
			return "", p.errorf("unterminated string")
		}
		c := p.peek()
		p.pos++
		switch c {
		case '"':
			return string(out), nil
		case '\\':
			if p.done() {
				return "", p.errorf("unterminated escape")
			}
			out = append(out, p.peek())
			p.pos++
		default:
			out = append(out, c)
		}
	}
}

func (p *parser) parseObject() (*tree.Object, error) {
	p.pos++ // '{'
	out := tree.NewObject()
	for {
		p.skipSpace()
		if p.done() {
			return nil, p.errorf("unterminated object")
		}
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		var key string
		var err error
		if p.peek() == '"' {
			key, err = p.parseQuoted()
		} else {
			key, err = p.parseWord()
		}
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.done() || p.peek() != ':' {
			return nil, p.errorf("expected ':' after object key %q", key)
		}
		p.pos++
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := out.Set(key, value); err != nil {
			return nil, p.errorf("%s", err)
		}
		p.skipSpace()
		if !p.done() && p.peek() == ',' {
			p.pos++
		} else {
			p.skipSpace()
			if p.done() || p.peek() != '}' {
				return nil, p.errorf("expected ',' or '}' in object")
			}
		}
	}
}

func (p *parser) parseArray() (*tree.Array, error) {
	p.pos++ // '['
	out := tree.NewArray()
	for {
		p.skipSpace()
		if p.done() {
			return nil, p.errorf("unterminated array")
		}
		if p.peek() == ']' {
			p.pos++
			return out, nil
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out.Append(value)
		p.skipSpace()
		if !p.done() && p.peek() == ',' {
			p.pos++
		} else {
			p.skipSpace()
			if p.done() || p.peek() != ']' {
				return nil, p.errorf("expected ',' or ']' in array")
			}
		}
	}
}
