package transform

import (
	"github.com/grafana/regexp"
)

// node is the compiled form of a rule's from pattern or to template. Literal
// shapes mirror the tree, specials extend matching and generation. Which
// specials are legal depends on the role the node is used in; the matcher
// and the template builder enforce placement when they visit a node, so a
// rule stays reversible without rebuilding.
type node interface {
	specialName() string
}

// typeTag is the optional type carried by a literal pattern node.
type typeTag struct {
	name    string
	present bool
}

func (t typeTag) matches(hasType bool, name string) bool {
	if t.present != hasType {
		return false
	}
	return !t.present || t.name == name
}

type litPrimitive struct {
	typ  typeTag
	text string
}

type patternField struct {
	key string
	pat node
}

type litObject struct {
	typ    typeTag
	fields []patternField
}

type litArray struct {
	typ   typeTag
	elems []node
}

// matchNode captures the input node under id after its sub-pattern matches.
// References with the same id inside one rule resolve to the same node, so
// from and to share identity.
type matchNode struct {
	id  string
	sub node
}

type wildNode struct{}

type altNode struct {
	branches []node
}

type errorNode struct {
	message string
}

// regexSpec is one element of a regex conjunction: search-and-capture, or
// search-and-replace when replace is set.
type regexSpec struct {
	id         string
	exp        *regexp.Regexp
	replace    string
	hasReplace bool
}

type regexNode struct {
	specs []regexSpec
}

type typeRegexNode struct {
	specs []regexSpec
	inner node
}

type stringNode struct {
	format string
}

type typeNode struct {
	format string
	inner  node
}

func (*litPrimitive) specialName() string  { return "primitive" }
func (*litObject) specialName() string     { return "object" }
func (*litArray) specialName() string      { return "array" }
func (*matchNode) specialName() string     { return "*match" }
func (*wildNode) specialName() string      { return "*wild" }
func (*altNode) specialName() string       { return "*alt" }
func (*errorNode) specialName() string     { return "*error" }
func (*regexNode) specialName() string     { return "*regex" }
func (*typeRegexNode) specialName() string { return "*type_regex" }
func (*stringNode) specialName() string    { return "*string" }
func (*typeNode) specialName() string      { return "*type" }
