package transform

import (
	"github.com/Rendaw/luxemog/tree"
)

// buildTemplate produces a fresh tree from a to template and the captures of
// a successful match. Captured subtrees are deep-cloned on the way in, so
// the output never shares nodes with the input or the template.
func buildTemplate(tpl node, caps *MatchMap) (tree.Value, error) {
	switch t := tpl.(type) {
	case *litPrimitive:
		out := tree.NewPrimitive(t.text)
		applyTag(out, t.typ)
		return out, nil
	case *litObject:
		out := tree.NewObject()
		applyTag(out, t.typ)
		for _, fld := range t.fields {
			child, err := buildTemplate(fld.pat, caps)
			if err != nil {
				return nil, err
			}
			if err := out.Set(fld.key, child); err != nil {
				return nil, buildErrorf("%s", err)
			}
		}
		return out, nil
	case *litArray:
		out := tree.NewArray()
		applyTag(out, t.typ)
		for _, elem := range t.elems {
			child, err := buildTemplate(elem, caps)
			if err != nil {
				return nil, err
			}
			out.Append(child)
		}
		return out, nil
	case *matchNode:
		captured, ok := caps.Tree(t.id)
		if !ok {
			return nil, bindingErrorf("match %s, required by output, is missing", t.id)
		}
		return captured.Clone(), nil
	case *errorNode:
		return nil, forbiddenError(t.message)
	case *stringNode:
		text, err := expandFormat(t.format, caps)
		if err != nil {
			return nil, err
		}
		return tree.NewPrimitive(text), nil
	case *typeNode:
		inner, err := buildTemplate(t.inner, caps)
		if err != nil {
			return nil, err
		}
		typeName, err := expandFormat(t.format, caps)
		if err != nil {
			return nil, err
		}
		inner.SetType(typeName)
		return inner, nil
	case *wildNode, *altNode, *regexNode, *typeRegexNode:
		return nil, placementErrorf("%s may only appear in a from pattern", tpl.specialName())
	}
	return nil, engineErrorf("unknown template node")
}

func applyTag(v tree.Value, tag typeTag) {
	if tag.present {
		v.SetType(tag.name)
	}
}
