package luxem

import (
	"bytes"
	"strings"

	"github.com/Rendaw/luxemog/tree"
)

// EncodeOptions control serialization. The zero value produces minimized
// output with no inter-token whitespace.
type EncodeOptions struct {
	// Pretty inserts newlines and indentation.
	Pretty bool
	// IndentChar is the indent character for pretty output, tab when zero.
	IndentChar byte
	// IndentCount is how many IndentChars make one level, 1 when zero.
	IndentCount int
}

func (o EncodeOptions) indent(depth int) string {
	c := o.IndentChar
	if c == 0 {
		c = '\t'
	}
	n := o.IndentCount
	if n <= 0 {
		n = 1
	}
	return strings.Repeat(string(c), n*depth)
}

// Encode serializes a single value.
func Encode(v tree.Value, opts EncodeOptions) []byte {
	var buf bytes.Buffer
	encodeValue(&buf, v, opts, 0)
	if opts.Pretty {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// EncodeAll serializes a sequence of root values, one per line.
func EncodeAll(values []tree.Value, opts EncodeOptions) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		encodeValue(&buf, v, opts, 0)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// String returns the minimized serialization, for diagnostics and tests.
func String(v tree.Value) string {
	return string(Encode(v, EncodeOptions{}))
}

func encodeValue(buf *bytes.Buffer, v tree.Value, opts EncodeOptions, depth int) {
	if v.HasType() {
		buf.WriteByte('(')
		buf.WriteString(v.Type())
		buf.WriteByte(')')
		if opts.Pretty {
			buf.WriteByte(' ')
		}
	}
	switch n := v.(type) {
	case *tree.Primitive:
		encodeText(buf, n.Text())
	case *tree.Object:
		if n.Len() == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteByte('{')
		first := true
		n.Each(func(key string, child tree.Value) {
			if opts.Pretty {
				buf.WriteByte('\n')
				buf.WriteString(opts.indent(depth + 1))
			} else if !first {
				buf.WriteByte(',')
			}
			first = false
			encodeText(buf, key)
			buf.WriteByte(':')
			if opts.Pretty {
				buf.WriteByte(' ')
			}
			encodeValue(buf, child, opts, depth+1)
			if opts.Pretty {
				buf.WriteByte(',')
			}
		})
		if opts.Pretty {
			buf.WriteByte('\n')
			buf.WriteString(opts.indent(depth))
		}
		buf.WriteByte('}')
	case *tree.Array:
		if n.Len() == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteByte('[')
		for i := 0; i < n.Len(); i++ {
			if opts.Pretty {
				buf.WriteByte('\n')
				buf.WriteString(opts.indent(depth + 1))
			} else if i > 0 {
				buf.WriteByte(',')
			}
			encodeValue(buf, n.At(i), opts, depth+1)
			if opts.Pretty {
				buf.WriteByte(',')
			}
		}
		if opts.Pretty {
			buf.WriteByte('\n')
			buf.WriteString(opts.indent(depth))
		}
		buf.WriteByte(']')
	}
}

// encodeText writes a primitive or key, quoting when the bare form would not
// survive a round trip.
func encodeText(buf *bytes.Buffer, text string) {
	if !needsQuoting(text) {
		buf.WriteString(text)
		return
	}
	buf.WriteByte('"')
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '"' || c == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')
}

func needsQuoting(text string) bool {
	if len(text) == 0 {
		return true
	}
	for i := 0; i < len(text); i++ {
		if isDelimiter(text[i]) || text[i] == '\\' {
			return true
		}
	}
	return false
}
