package transform

import (
	"github.com/Rendaw/luxemog/tree"
)

// Rule is one compiled rewrite: a from pattern, an optional to template, and
// an ordered list of sub-rules applied inside each match site. Rules are
// immutable after BuildRule.
type Rule struct {
	from node
	to   node
	subs []*Rule
}

// Apply rewrites every position of root where the rule matches, top-down in
// pre-order, and returns the possibly-replaced root. reverse swaps the roles
// of from and to for this call; a rule without a to template is unaffected
// by reversal.
func (r *Rule) Apply(root tree.Value, reverse bool) (tree.Value, error) {
	return r.apply(root, reverse, nil)
}

// apply is one driver descent. base carries the captures of an enclosing
// rule when this is a sub-rule invocation; every position's attempt starts
// from a fork of it, so parent captures stay visible and attempts stay
// isolated from each other.
func (r *Rule) apply(v tree.Value, reverse bool, base *MatchMap) (tree.Value, error) {
	from, to := r.from, r.to
	if reverse && to != nil {
		from, to = to, from
	}

	caps := base.fork()
	matched, err := match(v, from, caps)
	if err != nil {
		return v, err
	}
	if matched {
		if to != nil {
			built, err := buildTemplate(to, caps)
			if err != nil {
				return v, err
			}
			v = built
		}
		for _, sub := range r.subs {
			v, err = sub.apply(v, reverse, caps)
			if err != nil {
				return v, err
			}
		}
	}

	// Descend into the possibly-new node, so rewrites can cascade into
	// substituted output. Termination is the rule author's responsibility.
	switch n := v.(type) {
	case *tree.Object:
		for _, key := range n.Keys() {
			child, _ := n.Get(key)
			replaced, err := r.apply(child, reverse, base)
			if err != nil {
				return v, err
			}
			n.Replace(key, replaced)
		}
	case *tree.Array:
		for i := 0; i < n.Len(); i++ {
			replaced, err := r.apply(n.At(i), reverse, base)
			if err != nil {
				return v, err
			}
			n.SetAt(i, replaced)
		}
	}
	return v, nil
}
