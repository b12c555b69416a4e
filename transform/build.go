package transform

import (
	"strings"

	"github.com/grafana/regexp"

	"github.com/Rendaw/luxemog/tree"
)

// buildContext tracks the capture descriptors declared while compiling one
// rule, so every reference to an id inside the rule resolves to the same
// matchNode.
type buildContext struct {
	matches map[string]*matchNode
}

// BuildRule compiles a rule document into an immutable Rule. A rule document
// is an object with a from pattern, an optional to template, an optional
// matches array pre-declaring capture ids, and optional nested
// subtransforms.
func BuildRule(doc tree.Value) (*Rule, error) {
	obj, ok := doc.(*tree.Object)
	if !ok {
		return nil, buildErrorf("rule document must be an object")
	}
	ctx := &buildContext{matches: make(map[string]*matchNode)}
	rule := &Rule{}

	if pre, ok := obj.Get("matches"); ok {
		arr, ok := pre.(*tree.Array)
		if !ok {
			return nil, buildErrorf("matches must be an array of *match declarations")
		}
		for i := 0; i < arr.Len(); i++ {
			decl := arr.At(i)
			if !decl.HasType() || decl.Type() != "*match" {
				return nil, buildErrorf("matches may only hold *match declarations")
			}
			if _, err := ctx.build(decl); err != nil {
				return nil, err
			}
		}
	}

	fromDoc, ok := obj.Get("from")
	if !ok {
		return nil, buildErrorf("rule is missing required field from")
	}
	from, err := ctx.build(fromDoc)
	if err != nil {
		return nil, err
	}
	rule.from = from

	if toDoc, ok := obj.Get("to"); ok {
		to, err := ctx.build(toDoc)
		if err != nil {
			return nil, err
		}
		rule.to = to
	}

	if subsDoc, ok := obj.Get("subtransforms"); ok {
		arr, ok := subsDoc.(*tree.Array)
		if !ok {
			return nil, buildErrorf("subtransforms must be an array of rule documents")
		}
		for i := 0; i < arr.Len(); i++ {
			sub, err := BuildRule(arr.At(i))
			if err != nil {
				return nil, err
			}
			rule.subs = append(rule.subs, sub)
		}
	}

	return rule, nil
}

// build compiles one node of a rule document. Type strings beginning with
// "*" select specials; any other "*"-prefixed type has the "*" stripped, the
// escape for literal types that would otherwise collide.
func (c *buildContext) build(v tree.Value) (node, error) {
	if v.HasType() && strings.HasPrefix(v.Type(), "*") {
		switch v.Type() {
		case "*match":
			return c.buildMatch(v)
		case "*wild":
			return &wildNode{}, nil
		case "*alt":
			return c.buildAlt(v)
		case "*regex":
			spec, err := buildRegexSpec(v)
			if err != nil {
				return nil, err
			}
			return &regexNode{specs: []regexSpec{spec}}, nil
		case "*type_regex":
			return c.buildTypeRegex(v)
		case "*string":
			p, ok := v.(*tree.Primitive)
			if !ok {
				return nil, buildErrorf("*string must be a primitive format string")
			}
			return &stringNode{format: p.Text()}, nil
		case "*type":
			return c.buildTypeTemplate(v)
		case "*error":
			p, ok := v.(*tree.Primitive)
			if !ok {
				return nil, buildErrorf("*error must be a primitive message")
			}
			return &errorNode{message: p.Text()}, nil
		default:
			return c.buildLiteral(v, typeTag{name: v.Type()[1:], present: true})
		}
	}
	var tag typeTag
	if v.HasType() {
		tag = typeTag{name: v.Type(), present: true}
	}
	return c.buildLiteral(v, tag)
}

func (c *buildContext) buildLiteral(v tree.Value, tag typeTag) (node, error) {
	switch n := v.(type) {
	case *tree.Primitive:
		return &litPrimitive{typ: tag, text: n.Text()}, nil
	case *tree.Object:
		out := &litObject{typ: tag}
		for _, key := range n.Keys() {
			child, _ := n.Get(key)
			pat, err := c.build(child)
			if err != nil {
				return nil, err
			}
			out.fields = append(out.fields, patternField{key: key, pat: pat})
		}
		return out, nil
	case *tree.Array:
		out := &litArray{typ: tag}
		for i := 0; i < n.Len(); i++ {
			pat, err := c.build(n.At(i))
			if err != nil {
				return nil, err
			}
			out.elems = append(out.elems, pat)
		}
		return out, nil
	}
	return nil, buildErrorf("unsupported rule document node")
}

func (c *buildContext) buildMatch(v tree.Value) (node, error) {
	switch n := v.(type) {
	case *tree.Primitive:
		return c.declareMatch(n.Text(), nil)
	case *tree.Object:
		idVal, ok := n.Get("id")
		if !ok {
			return nil, buildErrorf("*match object is missing required field id")
		}
		idPrim, ok := idVal.(*tree.Primitive)
		if !ok {
			return nil, buildErrorf("*match id must be a primitive")
		}
		var sub node
		if patVal, ok := n.Get("pattern"); ok {
			var err error
			sub, err = c.build(patVal)
			if err != nil {
				return nil, err
			}
		}
		return c.declareMatch(idPrim.Text(), sub)
	}
	return nil, buildErrorf("*match must be a primitive id or an object")
}

// declareMatch resolves id to its canonical descriptor, creating one with a
// wildcard sub-pattern on first sight.
func (c *buildContext) declareMatch(id string, sub node) (node, error) {
	if id == "" {
		return nil, buildErrorf("*match requires a non-empty id")
	}
	def, ok := c.matches[id]
	if !ok {
		def = &matchNode{id: id, sub: &wildNode{}}
		c.matches[id] = def
	}
	if sub != nil {
		if _, isWild := def.sub.(*wildNode); !isWild {
			return nil, buildErrorf("match %s declares more than one pattern", id)
		}
		def.sub = sub
	}
	return def, nil
}

func (c *buildContext) buildAlt(v tree.Value) (node, error) {
	arr, ok := v.(*tree.Array)
	if !ok {
		return nil, buildErrorf("*alt must be an array of alternatives")
	}
	if arr.Len() == 0 {
		return nil, buildErrorf("*alt requires at least one alternative")
	}
	out := &altNode{}
	for i := 0; i < arr.Len(); i++ {
		branch, err := c.build(arr.At(i))
		if err != nil {
			return nil, err
		}
		out.branches = append(out.branches, branch)
	}
	return out, nil
}

func (c *buildContext) buildTypeRegex(v tree.Value) (node, error) {
	obj, ok := v.(*tree.Object)
	if !ok {
		return nil, buildErrorf("*type_regex must be an object")
	}
	expVal, ok := obj.Get("exp")
	if !ok {
		return nil, buildErrorf("*type_regex is missing required field exp")
	}
	expArr, ok := expVal.(*tree.Array)
	if !ok {
		return nil, buildErrorf("*type_regex exp must be an array of regex specs")
	}
	out := &typeRegexNode{}
	for i := 0; i < expArr.Len(); i++ {
		spec, err := buildRegexSpec(expArr.At(i))
		if err != nil {
			return nil, err
		}
		out.specs = append(out.specs, spec)
	}
	valueVal, ok := obj.Get("value")
	if !ok {
		return nil, buildErrorf("*type_regex is missing required field value")
	}
	inner, err := c.build(valueVal)
	if err != nil {
		return nil, err
	}
	// Specials such as (*wild) are allowed; a literal type on the value is
	// rejected because the matcher ignores the input's type at that position.
	var tagged bool
	switch n := inner.(type) {
	case *litPrimitive:
		tagged = n.typ.present
	case *litObject:
		tagged = n.typ.present
	case *litArray:
		tagged = n.typ.present
	}
	if tagged {
		return nil, buildErrorf("*type_regex value must not carry a type")
	}
	out.inner = inner
	return out, nil
}

func (c *buildContext) buildTypeTemplate(v tree.Value) (node, error) {
	obj, ok := v.(*tree.Object)
	if !ok {
		return nil, buildErrorf("*type must be an object")
	}
	formatVal, ok := obj.Get("format")
	if !ok {
		return nil, buildErrorf("*type is missing required field format")
	}
	formatPrim, ok := formatVal.(*tree.Primitive)
	if !ok {
		return nil, buildErrorf("*type format must be a primitive")
	}
	valueVal, ok := obj.Get("value")
	if !ok {
		return nil, buildErrorf("*type is missing required field value")
	}
	inner, err := c.build(valueVal)
	if err != nil {
		return nil, err
	}
	return &typeNode{format: formatPrim.Text(), inner: inner}, nil
}

// buildRegexSpec compiles one regex spec: a bare expression, or an object
// with exp, an optional capture id, and an optional replace string that
// switches the spec to search-and-replace.
func buildRegexSpec(v tree.Value) (regexSpec, error) {
	switch n := v.(type) {
	case *tree.Primitive:
		exp, err := regexp.Compile(n.Text())
		if err != nil {
			return regexSpec{}, buildErrorf("invalid regex %q: %v", n.Text(), err)
		}
		return regexSpec{exp: exp}, nil
	case *tree.Object:
		expVal, ok := n.Get("exp")
		if !ok {
			return regexSpec{}, buildErrorf("regex spec is missing required field exp")
		}
		expPrim, ok := expVal.(*tree.Primitive)
		if !ok {
			return regexSpec{}, buildErrorf("regex spec exp must be a primitive")
		}
		exp, err := regexp.Compile(expPrim.Text())
		if err != nil {
			return regexSpec{}, buildErrorf("invalid regex %q: %v", expPrim.Text(), err)
		}
		spec := regexSpec{exp: exp}
		if idVal, ok := n.Get("id"); ok {
			idPrim, ok := idVal.(*tree.Primitive)
			if !ok {
				return regexSpec{}, buildErrorf("regex spec id must be a primitive")
			}
			spec.id = idPrim.Text()
		}
		if repVal, ok := n.Get("replace"); ok {
			repPrim, ok := repVal.(*tree.Primitive)
			if !ok {
				return regexSpec{}, buildErrorf("regex spec replace must be a primitive")
			}
			spec.replace = repPrim.Text()
			spec.hasReplace = true
		}
		if spec.hasReplace && spec.id == "" {
			return regexSpec{}, buildErrorf("substitution regex requires an id to store its result")
		}
		return spec, nil
	}
	return regexSpec{}, buildErrorf("regex spec must be a primitive expression or an object")
}
