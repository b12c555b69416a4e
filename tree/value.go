// Package tree defines the document tree that luxemog rewrites: primitives,
// ordered objects, and arrays, each carrying an optional type string.
package tree

// Value is one node of a document tree. Exactly three concrete shapes
// implement it: *Primitive, *Object, and *Array.
type Value interface {
	// HasType reports whether the node carries a type string.
	HasType() bool
	// Type returns the type string. It is only meaningful when HasType is true.
	Type() string
	// SetType attaches a type string to the node.
	SetType(name string)
	// ClearType removes the type string.
	ClearType()
	// Clone returns an independent deep copy sharing no nodes with the
	// original.
	Clone() Value
}

// typed holds the optional type tag shared by all node shapes.
type typed struct {
	typ    string
	tagged bool
}

func (t *typed) HasType() bool { return t.tagged }

func (t *typed) Type() string { return t.typ }

func (t *typed) SetType(name string) {
	t.typ = name
	t.tagged = true
}

func (t *typed) ClearType() {
	t.typ = ""
	t.tagged = false
}

// copyTypeFrom mirrors the type tag of src onto dst.
func copyTypeFrom(dst Value, src Value) {
	if src.HasType() {
		dst.SetType(src.Type())
	}
}

// Primitive is a textual scalar.
type Primitive struct {
	typed
	text string
}

// NewPrimitive returns an untyped primitive holding text.
func NewPrimitive(text string) *Primitive {
	return &Primitive{text: text}
}

// NewTypedPrimitive returns a primitive carrying a type string.
func NewTypedPrimitive(typeName, text string) *Primitive {
	p := NewPrimitive(text)
	p.SetType(typeName)
	return p
}

// Text returns the scalar text.
func (p *Primitive) Text() string { return p.text }

// SetText replaces the scalar text.
func (p *Primitive) SetText(text string) { p.text = text }

func (p *Primitive) Clone() Value {
	out := NewPrimitive(p.text)
	copyTypeFrom(out, p)
	return out
}

type field struct {
	key   string
	value Value
}

// Object is an ordered mapping from string keys to child values. Insertion
// order is preserved and duplicate keys are rejected.
type Object struct {
	typed
	fields []field
	index  map[string]int
}

// NewObject returns an empty untyped object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.fields) }

// Get returns the child bound to key.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.fields[i].value, true
}

// Set appends key with value. Setting a key that is already present is an
// error; use Replace to reassign a child slot.
func (o *Object) Set(key string, value Value) error {
	if _, ok := o.index[key]; ok {
		return &DuplicateKeyError{Key: key}
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, field{key: key, value: value})
	return nil
}

// Replace reassigns the child slot for key, reporting whether key existed.
func (o *Object) Replace(key string, value Value) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.fields[i].value = value
	return true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.key
	}
	return keys
}

// Each calls fn for every key/value pair in insertion order.
func (o *Object) Each(fn func(key string, value Value)) {
	for _, f := range o.fields {
		fn(f.key, f.value)
	}
}

func (o *Object) Clone() Value {
	out := NewObject()
	copyTypeFrom(out, o)
	for _, f := range o.fields {
		out.index[f.key] = len(out.fields)
		out.fields = append(out.fields, field{key: f.key, value: f.value.Clone()})
	}
	return out
}

// Array is an ordered sequence of child values.
type Array struct {
	typed
	items []Value
}

// NewArray returns an untyped array holding items.
func NewArray(items ...Value) *Array {
	return &Array{items: items}
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at index i.
func (a *Array) At(i int) Value { return a.items[i] }

// SetAt reassigns the child slot at index i.
func (a *Array) SetAt(i int, value Value) { a.items[i] = value }

// Append adds value at the end.
func (a *Array) Append(value Value) { a.items = append(a.items, value) }

func (a *Array) Clone() Value {
	out := &Array{items: make([]Value, len(a.items))}
	copyTypeFrom(out, a)
	for i, item := range a.items {
		out.items[i] = item.Clone()
	}
	return out
}

// Equal reports structural equality: matching shapes, matching type tags,
// and recursively equal payloads. Arrays compare positionally, objects by
// key.
func Equal(a, b Value) bool {
	if a.HasType() != b.HasType() {
		return false
	}
	if a.HasType() && a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case *Primitive:
		bv, ok := b.(*Primitive)
		return ok && av.text == bv.text
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, f := range av.fields {
			other, ok := bv.Get(f.key)
			if !ok || !Equal(f.value, other) {
				return false
			}
		}
		return true
	case *Array:
		bv, ok := b.(*Array)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i, item := range av.items {
			if !Equal(item, bv.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
