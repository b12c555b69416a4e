package luxem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rendaw/luxemog/tree"
)

func decodeOne(t *testing.T, text string) tree.Value {
	t.Helper()
	v, err := DecodeOne([]byte(text))
	require.NoError(t, err)
	return v
}

func TestDecodePrimitives(t *testing.T) {
	v := decodeOne(t, "hello")
	p := v.(*tree.Primitive)
	assert.Equal(t, "hello", p.Text())
	assert.False(t, p.HasType())

	v = decodeOne(t, "(int) 6")
	p = v.(*tree.Primitive)
	assert.Equal(t, "6", p.Text())
	assert.Equal(t, "int", p.Type())

	v = decodeOne(t, `"hello friend"`)
	assert.Equal(t, "hello friend", v.(*tree.Primitive).Text())

	v = decodeOne(t, `"say \"hi\" \\ now"`)
	assert.Equal(t, `say "hi" \ now`, v.(*tree.Primitive).Text())
}

func TestDecodeTypeWithSpaces(t *testing.T) {
	v := decodeOne(t, "(dog adhesive) []")
	assert.Equal(t, "dog adhesive", v.Type())
	assert.IsType(t, &tree.Array{}, v)
}

func TestDecodeEmptyTypedPrimitive(t *testing.T) {
	// A bare type tag before a delimiter tags an empty primitive, the form
	// specials like (*wild) take in rule files.
	v := decodeOne(t, "{from: (*wild), to: 5}")
	obj := v.(*tree.Object)
	from, ok := obj.Get("from")
	require.True(t, ok)
	assert.Equal(t, "*wild", from.Type())
	assert.Equal(t, "", from.(*tree.Primitive).Text())
}

func TestDecodeNested(t *testing.T) {
	v := decodeOne(t, "{key: val, list: [1, (int) 2,], inner: {a: b}}")
	obj := v.(*tree.Object)
	assert.Equal(t, []string{"key", "list", "inner"}, obj.Keys())

	list, _ := obj.Get("list")
	arr := list.(*tree.Array)
	require.Equal(t, 2, arr.Len())
	assert.Equal(t, "int", arr.At(1).Type())
}

func TestDecodeMultipleRoots(t *testing.T) {
	roots, err := DecodeString("1 {a: b}\n[2]")
	require.NoError(t, err)
	require.Len(t, roots, 3)
	assert.IsType(t, &tree.Primitive{}, roots[0])
	assert.IsType(t, &tree.Object{}, roots[1])
	assert.IsType(t, &tree.Array{}, roots[2])
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"unterminated object", "{a: b"},
		{"unterminated array", "[1, 2"},
		{"unterminated string", `"abc`},
		{"unterminated type", "(int 4"},
		{"missing colon", "{a b}"},
		{"missing comma", "[1 2]"},
		{"duplicate key", "{a: 1, a: 2}"},
		{"bare delimiter", ":"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeString(tc.text)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"4",
		"(int) 6",
		`"hello friend"`,
		"{}",
		"(qog) {}",
		"{key: val, card: cad}",
		"[[22, 735], 735]",
		"(luxemog 0.0.1) [{from: (*match) {id: w/e, pattern: 4}, to: 5}]",
		`{quoted: "a, b: c", empty: ""}`,
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			original := decodeOne(t, text)
			for _, opts := range []EncodeOptions{
				{},
				{Pretty: true},
				{Pretty: true, IndentChar: ' ', IndentCount: 4},
			} {
				encoded := Encode(original, opts)
				again, err := DecodeOne(encoded)
				require.NoError(t, err, "re-decoding %q", encoded)
				assert.True(t, tree.Equal(original, again), "round trip of %q via %q", text, encoded)
			}
		})
	}
}

func TestEncodeMinimized(t *testing.T) {
	v := decodeOne(t, "{key: val, list: [1, (int) 2]}")
	assert.Equal(t, "{key:val,list:[1,(int)2]}", String(v))
}

func TestEncodePretty(t *testing.T) {
	v := decodeOne(t, "{key: val, list: [1]}")
	got := string(Encode(v, EncodeOptions{Pretty: true}))
	assert.Equal(t, "{\n\tkey: val,\n\tlist: [\n\t\t1,\n\t],\n}\n", got)
}

func TestEncodeAllSeparatesRoots(t *testing.T) {
	roots, err := DecodeString("1 2")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", string(EncodeAll(roots, EncodeOptions{})))
}
