package astview

import "wdlc/internal/cst"

// Visitor receives a callback for every node (Enter then, after every child
// has been visited, Exit) and every leaf token (Token, fired once in
// document order — tokens have no separate exit callback). This mirrors the
// enter/exit-with-reason visitation used by validation, linting, and
// evaluation preparation (§4.3).
type Visitor interface {
	Enter(n *cst.Node)
	Exit(n *cst.Node)
	Token(t *cst.Token)
}

// BaseVisitor is a no-op Visitor a concrete visitor can embed to implement
// only the callbacks it cares about, the way Go lacks default trait methods
// for an interface this wide.
type BaseVisitor struct{}

func (BaseVisitor) Enter(n *cst.Node)  {}
func (BaseVisitor) Exit(n *cst.Node)   {}
func (BaseVisitor) Token(t *cst.Token) {}

// Walk traverses n depth-first, calling v's callbacks in document order:
// Enter(n), then each child (recursively, or Token for a leaf), then Exit(n).
func Walk(n *cst.Node, v Visitor) {
	if n == nil {
		return
	}
	v.Enter(n)
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil {
			v.Token(e.Token)
		} else {
			Walk(e.Node, v)
		}
	}
	v.Exit(n)
}

// CompositeVisitor forwards every callback to an ordered list of
// sub-visitors, letting independent passes (validation, linting, evaluation
// prep) share a single tree walk.
type CompositeVisitor struct {
	Visitors []Visitor
}

func (c *CompositeVisitor) Enter(n *cst.Node) {
	for _, v := range c.Visitors {
		v.Enter(n)
	}
}

func (c *CompositeVisitor) Exit(n *cst.Node) {
	for _, v := range c.Visitors {
		v.Exit(n)
	}
}

func (c *CompositeVisitor) Token(t *cst.Token) {
	for _, v := range c.Visitors {
		v.Token(t)
	}
}
