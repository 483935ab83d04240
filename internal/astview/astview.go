// Package astview provides typed views over the lossless cst.Tree (§4.3):
// each WDL grammar production gets a thin wrapper struct around a *cst.Node,
// constructed on demand rather than stored — the tree itself stays the single
// source of truth, and a view is simply a typed lens onto one of its nodes.
package astview

import "wdlc/internal/cst"

// Node is implemented by every typed view. Syntax returns the underlying
// red-tree node the view was cast from.
type Node interface {
	Syntax() *cst.Node
}

// registry maps each cst.Kind to the constructor of the view type that
// accepts it; it is filled by register calls in this package's init
// functions.
var registry = map[cst.Kind]func(*cst.Node) Node{}

// register adds kind -> ctor to the registry. It panics if kind is already
// registered, enforcing the §4.3 invariant that the kind-to-AST-type mapping
// is a function (at most one AST type per kind) — see TestRegistryIsAFunction
// for the automated check over every registered kind.
func register(kind cst.Kind, ctor func(*cst.Node) Node) {
	if _, exists := registry[kind]; exists {
		panic("astview: duplicate registration for kind " + kind.String())
	}
	registry[kind] = ctor
}

// CanCast reports whether a node of kind k can be viewed as the AST type
// ctor was registered for.
func CanCast(k cst.Kind) bool {
	_, ok := registry[k]
	return ok
}

// Cast returns a typed view over n, or nil if n's kind has no registered
// view type.
func Cast(n *cst.Node) Node {
	if n == nil {
		return nil
	}
	ctor, ok := registry[n.Kind()]
	if !ok {
		return nil
	}
	return ctor(n)
}

// firstChildOfKind returns the first direct child node of kind k, or nil.
func firstChildOfKind(n *cst.Node, k cst.Kind) *cst.Node {
	for _, c := range n.Children() {
		if c.Kind() == k {
			return c
		}
	}
	return nil
}

// childrenOfKind returns every direct child node of kind k, in order.
func childrenOfKind(n *cst.Node, k cst.Kind) []*cst.Node {
	var out []*cst.Node
	for _, c := range n.Children() {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out
}
