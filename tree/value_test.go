package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectOrderAndDuplicates(t *testing.T) {
	obj := NewObject()
	require.NoError(t, obj.Set("b", NewPrimitive("1")))
	require.NoError(t, obj.Set("a", NewPrimitive("2")))
	require.NoError(t, obj.Set("c", NewPrimitive("3")))

	assert.Equal(t, []string{"b", "a", "c"}, obj.Keys())
	assert.Equal(t, 3, obj.Len())

	err := obj.Set("a", NewPrimitive("4"))
	require.Error(t, err)
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Key)

	v, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", v.(*Primitive).Text())
}

func TestObjectReplace(t *testing.T) {
	obj := NewObject()
	require.NoError(t, obj.Set("k", NewPrimitive("old")))
	assert.True(t, obj.Replace("k", NewPrimitive("new")))
	assert.False(t, obj.Replace("missing", NewPrimitive("x")))

	v, _ := obj.Get("k")
	assert.Equal(t, "new", v.(*Primitive).Text())
	assert.Equal(t, []string{"k"}, obj.Keys())
}

func TestTypeTag(t *testing.T) {
	p := NewPrimitive("6")
	assert.False(t, p.HasType())
	p.SetType("int")
	assert.True(t, p.HasType())
	assert.Equal(t, "int", p.Type())
	p.ClearType()
	assert.False(t, p.HasType())
}

func TestEqual(t *testing.T) {
	makeTree := func() Value {
		obj := NewObject()
		_ = obj.Set("a", NewTypedPrimitive("int", "1"))
		_ = obj.Set("b", NewArray(NewPrimitive("x"), NewPrimitive("y")))
		obj.SetType("thing")
		return obj
	}

	assert.True(t, Equal(makeTree(), makeTree()))

	cases := []struct {
		name   string
		mutate func(Value)
	}{
		{"type removed", func(v Value) { v.ClearType() }},
		{"type changed", func(v Value) { v.SetType("other") }},
		{"text changed", func(v Value) {
			p, _ := v.(*Object).Get("a")
			p.(*Primitive).SetText("2")
		}},
		{"element changed", func(v Value) {
			arr, _ := v.(*Object).Get("b")
			arr.(*Array).SetAt(1, NewPrimitive("z"))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			changed := makeTree()
			tc.mutate(changed)
			assert.False(t, Equal(makeTree(), changed))
		})
	}

	// Shape mismatches
	assert.False(t, Equal(NewPrimitive("1"), NewArray(NewPrimitive("1"))))
	assert.False(t, Equal(NewObject(), NewArray()))

	// Object equality is by key, not insertion order
	left := NewObject()
	_ = left.Set("a", NewPrimitive("1"))
	_ = left.Set("b", NewPrimitive("2"))
	right := NewObject()
	_ = right.Set("b", NewPrimitive("2"))
	_ = right.Set("a", NewPrimitive("1"))
	assert.True(t, Equal(left, right))
}

func TestCloneIsDeep(t *testing.T) {
	obj := NewObject()
	_ = obj.Set("list", NewArray(NewTypedPrimitive("int", "1")))
	obj.SetType("root")

	clone := obj.Clone().(*Object)
	require.True(t, Equal(obj, clone))

	inner, _ := clone.Get("list")
	inner.(*Array).At(0).(*Primitive).SetText("mutated")

	original, _ := obj.Get("list")
	assert.Equal(t, "1", original.(*Array).At(0).(*Primitive).Text())
}
