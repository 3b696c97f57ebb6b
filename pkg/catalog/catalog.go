// Package catalog defines the fixed table of structural and security
// patterns matched against parsed Python files.
package catalog

import (
	sitter "github.com/smacker/go-tree-sitter"

	"patina/pkg/parser"
)

// Category classifies a pattern entry.
type Category string

const (
	// CategoryDanger marks patterns that count toward the potential
	// security issue total, once per occurrence.
	CategoryDanger Category = "danger"
	// CategoryDynamic marks dynamic attribute/dispatch patterns.
	CategoryDynamic Category = "dynamic"
	// CategoryStructural marks structural smells.
	CategoryStructural Category = "structural"
)

// MatchFunc reports whether a pattern fires on the given node. Each
// matching node counts as one occurrence.
type MatchFunc func(node *sitter.Node, nodeType string, source []byte) bool

// Entry is one immutable pattern definition.
type Entry struct {
	ID       string
	Category Category
	Match    MatchFunc
}

// shellCapable lists the subprocess entry points that accept shell=True.
var shellCapable = map[string]bool{
	"run":          true,
	"call":         true,
	"Popen":        true,
	"check_call":   true,
	"check_output": true,
}

// table is the closed, ordered set of patterns. Iteration order is a
// property of this slice and fixes the ranking tie-break everywhere.
var table = []Entry{
	{ID: "danger_eval", Category: CategoryDanger, Match: callNamed("eval")},
	{ID: "danger_exec", Category: CategoryDanger, Match: callNamed("exec")},
	{ID: "danger_os_system", Category: CategoryDanger, Match: callAttr("os", "system")},
	{ID: "danger_os_popen", Category: CategoryDanger, Match: callAttr("os", "popen")},
	{ID: "danger_subprocess_shell", Category: CategoryDanger, Match: matchSubprocessShell},
	{ID: "danger_pickle_load", Category: CategoryDanger, Match: callAttr("pickle", "load")},
	{ID: "danger_pickle_loads", Category: CategoryDanger, Match: callAttr("pickle", "loads")},
	{ID: "danger_yaml_load", Category: CategoryDanger, Match: callAttr("yaml", "load")},
	{ID: "dynamic_getattr", Category: CategoryDynamic, Match: callNamed("getattr")},
	{ID: "dynamic_setattr", Category: CategoryDynamic, Match: callNamed("setattr")},
	{ID: "structural_bare_except", Category: CategoryStructural, Match: matchBareExcept},
	{ID: "structural_global_stmt", Category: CategoryStructural, Match: matchGlobal},
}

// Patterns returns the ordered pattern table. Callers must not modify
// the returned slice; it is shared across all extractors.
func Patterns() []Entry {
	return table
}

// Lookup returns the entry for a pattern ID.
func Lookup(id string) (Entry, bool) {
	for _, e := range table {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// callNamed matches a call whose callee is the bare identifier name.
func callNamed(name string) MatchFunc {
	return func(node *sitter.Node, nodeType string, source []byte) bool {
		if nodeType != "call" {
			return false
		}
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Type() != "identifier" {
			return false
		}
		return parser.NodeText(fn, source) == name
	}
}

// callAttr matches a call of the form obj.attr(...) where obj is a
// bare identifier.
func callAttr(obj, attr string) MatchFunc {
	return func(node *sitter.Node, nodeType string, source []byte) bool {
		if nodeType != "call" {
			return false
		}
		o, a := calleeAttr(node, source)
		return o == obj && a == attr
	}
}

// calleeAttr decomposes a call node's callee into (object, attribute)
// identifiers, returning empty strings when the shape does not apply.
func calleeAttr(call *sitter.Node, source []byte) (string, string) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return "", ""
	}
	obj := fn.ChildByFieldName("object")
	attr := fn.ChildByFieldName("attribute")
	if obj == nil || attr == nil || obj.Type() != "identifier" {
		return "", ""
	}
	return parser.NodeText(obj, source), parser.NodeText(attr, source)
}

// matchSubprocessShell fires on subprocess.run/call/Popen/check_call/
// check_output invocations carrying a literal shell=True argument.
func matchSubprocessShell(node *sitter.Node, nodeType string, source []byte) bool {
	if nodeType != "call" {
		return false
	}
	obj, attr := calleeAttr(node, source)
	if obj != "subprocess" || !shellCapable[attr] {
		return false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := range int(args.NamedChildCount()) {
		arg := args.NamedChild(i)
		if arg.Type() != "keyword_argument" {
			continue
		}
		name := arg.ChildByFieldName("name")
		value := arg.ChildByFieldName("value")
		if name != nil && value != nil &&
			parser.NodeText(name, source) == "shell" && value.Type() == "true" {
			return true
		}
	}
	return false
}

// matchBareExcept fires on an except clause with no exception type.
// A bare clause's only named child is its body block.
func matchBareExcept(node *sitter.Node, nodeType string, _ []byte) bool {
	if nodeType != "except_clause" {
		return false
	}
	return node.NamedChildCount() == 1
}

func matchGlobal(_ *sitter.Node, nodeType string, _ []byte) bool {
	return nodeType == "global_statement"
}
