// Package transform compiles declarative pattern-rewrite rules and applies
// them to luxem document trees: a small tree-rewriting machine with
// backtracking alternatives, named captures, and recursive sub-rules.
package transform

import (
	"github.com/Rendaw/luxemog/tree"
)

// Version is the required root type of a transform document.
const Version = "luxemog 0.0.1"

// List is an ordered collection of rules applied in sequence.
type List struct {
	rules []*Rule
}

// LoadList compiles a transform document: a root value typed with Version
// holding an array of rule documents.
func LoadList(root tree.Value) (*List, error) {
	if !root.HasType() {
		return nil, buildErrorf("transform document is missing its version type")
	}
	if root.Type() != Version {
		return nil, buildErrorf("unknown transform version %q", root.Type())
	}
	arr, ok := root.(*tree.Array)
	if !ok {
		return nil, buildErrorf("transform document must be an array of rules")
	}
	list := &List{}
	for i := 0; i < arr.Len(); i++ {
		rule, err := BuildRule(arr.At(i))
		if err != nil {
			return nil, err
		}
		list.rules = append(list.rules, rule)
	}
	return list, nil
}

// LoadAll compiles several transform documents into one list, in order. The
// original reader fires once per root value, so a transforms file may hold
// more than one versioned document.
func LoadAll(roots []tree.Value) (*List, error) {
	list := &List{}
	for _, root := range roots {
		part, err := LoadList(root)
		if err != nil {
			return nil, err
		}
		list.rules = append(list.rules, part.rules...)
	}
	return list, nil
}

// NewList builds a façade over already-compiled rules.
func NewList(rules ...*Rule) *List {
	return &List{rules: rules}
}

// Len returns the number of rules.
func (l *List) Len() int { return len(l.rules) }

// Apply runs every rule against root in order and returns the
// possibly-replaced root. reverse swaps from and to for every rule. No
// engine state survives the call.
func (l *List) Apply(root tree.Value, reverse bool) (tree.Value, error) {
	var err error
	for _, rule := range l.rules {
		root, err = rule.Apply(root, reverse)
		if err != nil {
			return root, err
		}
	}
	return root, nil
}
