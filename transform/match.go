package transform

import (
	"github.com/Rendaw/luxemog/tree"
)

// MatchMap holds the captures bound during one rule application attempt.
// Tree captures and string captures are disjoint key spaces; an id may be
// written at most once across both.
type MatchMap struct {
	trees   map[string]tree.Value
	strings map[string]string
}

// NewMatchMap returns an empty capture set.
func NewMatchMap() *MatchMap {
	return &MatchMap{
		trees:   make(map[string]tree.Value),
		strings: make(map[string]string),
	}
}

// Tree returns the subtree bound to id.
func (m *MatchMap) Tree(id string) (tree.Value, bool) {
	v, ok := m.trees[id]
	return v, ok
}

// String returns the string bound to id.
func (m *MatchMap) String(id string) (string, bool) {
	s, ok := m.strings[id]
	return s, ok
}

func (m *MatchMap) bound(id string) bool {
	if _, ok := m.trees[id]; ok {
		return true
	}
	_, ok := m.strings[id]
	return ok
}

func (m *MatchMap) bindTree(id string, v tree.Value) error {
	if m.bound(id) {
		return bindingErrorf("match %s matched multiple times, matches must only occur once", id)
	}
	m.trees[id] = v
	return nil
}

func (m *MatchMap) bindString(id, s string) error {
	if m.bound(id) {
		return bindingErrorf("match %s matched multiple times, matches must only occur once", id)
	}
	m.strings[id] = s
	return nil
}

// fork returns an independent copy used as the baseline of one application
// attempt. The captured values themselves stay borrowed.
func (m *MatchMap) fork() *MatchMap {
	out := NewMatchMap()
	if m == nil {
		return out
	}
	for id, v := range m.trees {
		out.trees[id] = v
	}
	for id, s := range m.strings {
		out.strings[id] = s
	}
	return out
}

// snapshot and restore bracket one alt branch, making its capture writes
// provisional.
type matchSnapshot struct {
	trees   map[string]tree.Value
	strings map[string]string
}

func (m *MatchMap) snapshot() matchSnapshot {
	s := matchSnapshot{
		trees:   make(map[string]tree.Value, len(m.trees)),
		strings: make(map[string]string, len(m.strings)),
	}
	for id, v := range m.trees {
		s.trees[id] = v
	}
	for id, v := range m.strings {
		s.strings[id] = v
	}
	return s
}

func (m *MatchMap) restore(s matchSnapshot) {
	m.trees = s.trees
	m.strings = s.strings
}

// maxMatchSteps caps scheduler iterations per rule application. No valid
// pattern approaches it on finite input; hitting it indicates an engine bug.
const maxMatchSteps = 1_000_000

// stepResult is the verdict of one scheduler step.
type stepResult int

const (
	// stepContinue keeps the current frame on the stack.
	stepContinue stepResult = iota
	// stepPush means a child frame was pushed and must run first.
	stepPush
	// stepBreak pops the frame: its sub-match succeeded.
	stepBreak
	// stepFail pops the frame and propagates failure to its parent.
	stepFail
)

// stepFrame drives one composite sub-match, one child per step. last carries
// the result of the frame's previous operation, so a frame observes whether
// the child it pushed succeeded.
type stepFrame interface {
	step(m *matcher, last stepResult) (stepResult, error)
}

// matcher walks an input subtree against a pattern with an explicit work
// list instead of recursion, so match depth is independent of call depth.
type matcher struct {
	caps  *MatchMap
	stack []stepFrame
	steps int
}

// match reports whether input matches pat, binding captures into caps.
// Failure leaves the input untouched; capture writes from a failed attempt
// are discarded by the caller along with caps.
func match(input tree.Value, pat node, caps *MatchMap) (bool, error) {
	m := &matcher{caps: caps}
	last, err := m.enter(input, pat, false)
	if err != nil {
		return false, err
	}
	for len(m.stack) > 0 {
		m.steps++
		if m.steps > maxMatchSteps {
			return false, engineErrorf("match exceeded %d scheduler steps", maxMatchSteps)
		}
		top := m.stack[len(m.stack)-1]
		r, err := top.step(m, last)
		if err != nil {
			return false, err
		}
		if r == stepBreak || r == stepFail {
			m.stack = m.stack[:len(m.stack)-1]
		}
		last = r
	}
	return last == stepBreak, nil
}

func (m *matcher) push(f stepFrame) {
	m.stack = append(m.stack, f)
}

// enter resolves one input/pattern pair: leaves settle immediately with
// stepBreak or stepFail, composites push a frame and return stepPush.
// ignoreType suppresses the type comparison at this position only; it
// implements *type_regex's "peel off type, apply inner to the value".
func (m *matcher) enter(input tree.Value, pat node, ignoreType bool) (stepResult, error) {
	typeOK := func(tag typeTag) bool {
		return ignoreType || tag.matches(input.HasType(), input.Type())
	}
	switch p := pat.(type) {
	case *litPrimitive:
		in, ok := input.(*tree.Primitive)
		if !ok || !typeOK(p.typ) || in.Text() != p.text {
			return stepFail, nil
		}
		return stepBreak, nil
	case *litObject:
		in, ok := input.(*tree.Object)
		if !ok || !typeOK(p.typ) || in.Len() != len(p.fields) {
			return stepFail, nil
		}
		if len(p.fields) == 0 {
			return stepBreak, nil
		}
		m.push(&objectFrame{input: in, pat: p})
		return stepPush, nil
	case *litArray:
		in, ok := input.(*tree.Array)
		if !ok || !typeOK(p.typ) || in.Len() != len(p.elems) {
			return stepFail, nil
		}
		if len(p.elems) == 0 {
			return stepBreak, nil
		}
		m.push(&arrayFrame{input: in, pat: p})
		return stepPush, nil
	case *wildNode:
		return stepBreak, nil
	case *matchNode:
		if _, isWild := p.sub.(*wildNode); isWild {
			if err := m.caps.bindTree(p.id, input); err != nil {
				return stepFail, err
			}
			return stepBreak, nil
		}
		m.push(&matchFrame{pat: p, input: input, ignoreType: ignoreType})
		return stepPush, nil
	case *altNode:
		m.push(&altFrame{input: input, branches: p.branches, ignoreType: ignoreType})
		return stepPush, nil
	case *regexNode:
		in, ok := input.(*tree.Primitive)
		if !ok {
			return stepFail, nil
		}
		ok, err := evalRegexSpecs(p.specs, in.Text(), m.caps)
		if err != nil || !ok {
			return stepFail, err
		}
		return stepBreak, nil
	case *typeRegexNode:
		if !input.HasType() {
			return stepFail, nil
		}
		ok, err := evalRegexSpecs(p.specs, input.Type(), m.caps)
		if err != nil || !ok {
			return stepFail, err
		}
		return m.enter(input, p.inner, true)
	case *errorNode, *stringNode, *typeNode:
		return stepFail, placementErrorf("%s may only appear in a to template", pat.specialName())
	}
	return stepFail, engineErrorf("unknown pattern node")
}

// evalRegexSpecs evaluates a regex conjunction against text. Every spec must
// succeed. A search spec captures the first marked sub-expression when the
// expression has one, otherwise the whole match. A replace spec must match
// and captures the globally substituted string.
func evalRegexSpecs(specs []regexSpec, text string, caps *MatchMap) (bool, error) {
	for _, s := range specs {
		if s.hasReplace {
			if s.exp.FindStringIndex(text) == nil {
				return false, nil
			}
			if err := caps.bindString(s.id, s.exp.ReplaceAllString(text, s.replace)); err != nil {
				return false, err
			}
			continue
		}
		loc := s.exp.FindStringSubmatchIndex(text)
		if loc == nil {
			return false, nil
		}
		if s.id == "" {
			continue
		}
		capture := text[loc[0]:loc[1]]
		if s.exp.NumSubexp() > 0 && loc[2] >= 0 {
			capture = text[loc[2]:loc[3]]
		}
		if err := caps.bindString(s.id, capture); err != nil {
			return false, err
		}
	}
	return true, nil
}

// objectFrame walks a literal object pattern one field per step. Sizes and
// types were checked on entry; a missing key or a failed child fails the
// whole frame.
type objectFrame struct {
	input *tree.Object
	pat   *litObject
	idx   int
}

func (f *objectFrame) step(m *matcher, last stepResult) (stepResult, error) {
	if last == stepFail {
		return stepFail, nil
	}
	if f.idx >= len(f.pat.fields) {
		return stepBreak, nil
	}
	fld := f.pat.fields[f.idx]
	f.idx++
	child, ok := f.input.Get(fld.key)
	if !ok {
		return stepFail, nil
	}
	r, err := m.enter(child, fld.pat, false)
	if err != nil {
		return stepFail, err
	}
	if r == stepBreak {
		return stepContinue, nil
	}
	return r, nil
}

// arrayFrame walks a literal array pattern positionally, one element per
// step.
type arrayFrame struct {
	input *tree.Array
	pat   *litArray
	idx   int
}

func (f *arrayFrame) step(m *matcher, last stepResult) (stepResult, error) {
	if last == stepFail {
		return stepFail, nil
	}
	if f.idx >= len(f.pat.elems) {
		return stepBreak, nil
	}
	elem := f.pat.elems[f.idx]
	child := f.input.At(f.idx)
	f.idx++
	r, err := m.enter(child, elem, false)
	if err != nil {
		return stepFail, err
	}
	if r == stepBreak {
		return stepContinue, nil
	}
	return r, nil
}

// matchFrame runs a capture's sub-pattern, then binds the input node under
// the capture id. Binding an already-bound id is a rule error, not a match
// failure.
type matchFrame struct {
	pat        *matchNode
	input      tree.Value
	ignoreType bool
	entered    bool
}

func (f *matchFrame) step(m *matcher, last stepResult) (stepResult, error) {
	if !f.entered {
		f.entered = true
		r, err := m.enter(f.input, f.pat.sub, f.ignoreType)
		if err != nil {
			return stepFail, err
		}
		if r == stepPush {
			return stepPush, nil
		}
		last = r
	}
	if last == stepFail {
		return stepFail, nil
	}
	if err := m.caps.bindTree(f.pat.id, f.input); err != nil {
		return stepFail, err
	}
	return stepBreak, nil
}

// altFrame tries branches in order. Capture writes inside a branch are
// provisional: the match map is snapshotted before each attempt, committed
// when the branch succeeds, and restored when it fails. This is the only
// backtracking in the matcher.
type altFrame struct {
	input      tree.Value
	branches   []node
	ignoreType bool
	idx        int
	started    bool
	saved      matchSnapshot
}

func (f *altFrame) step(m *matcher, last stepResult) (stepResult, error) {
	if f.started {
		if last != stepFail {
			return stepBreak, nil
		}
		m.caps.restore(f.saved)
		f.idx++
	}
	f.started = true
	for f.idx < len(f.branches) {
		f.saved = m.caps.snapshot()
		r, err := m.enter(f.input, f.branches[f.idx], f.ignoreType)
		if err != nil {
			return stepFail, err
		}
		switch r {
		case stepBreak:
			return stepBreak, nil
		case stepPush:
			return stepPush, nil
		default:
			m.caps.restore(f.saved)
			f.idx++
		}
	}
	return stepFail, nil
}
