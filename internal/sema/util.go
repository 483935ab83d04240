package sema

import (
	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/token"
)

// castDeclaration views a raw KindDeclaration node as astview.Declaration.
// Declaration's own field is unexported, so this goes through astview.Cast
// rather than a struct literal.
func castDeclaration(n *cst.Node) (astview.Declaration, bool) {
	d, ok := astview.Cast(n).(astview.Declaration)
	return d, ok
}

func castCallStatement(n *cst.Node) (astview.CallStatement, bool) {
	c, ok := astview.Cast(n).(astview.CallStatement)
	return c, ok
}

// directDeclarations returns the KindDeclaration nodes that are direct
// children of n — a task's bare private/intermediate declarations, which
// internal/parser's parseTaskMember accepts alongside the input/output
// sections but which, being direct children of the TaskDefinition itself
// rather than of an InputSection/OutputSection, astview exposes no
// accessor for.
func directDeclarations(n *cst.Node) []*cst.Node {
	return childrenOfKind(n, cst.KindDeclaration)
}

// walkWorkflowBody visits every Declaration, CallStatement, IfStatement and
// ScatterStatement reachable from a workflow (or an if/scatter body),
// descending into nested if/scatter blocks. It does not flatten scope: a
// declaration's visibility relative to an enclosing if/scatter is not
// modeled (see DESIGN.md), so callers that need strict nesting should not
// rely on call order here beyond "parents are visited before their body".
func walkWorkflowBody(n *cst.Node, visit func(*cst.Node)) {
	for _, c := range n.Children() {
		switch c.Kind() {
		case cst.KindDeclaration, cst.KindCallStatement:
			visit(c)
		case cst.KindIfStatement, cst.KindScatterStatement:
			visit(c)
			walkWorkflowBody(c, visit)
		}
	}
}

// callName returns a call statement's bound name: its `as alias`, or
// (absent that) the last segment of its target name.
func callName(c astview.CallStatement) string {
	elems := c.Syntax().ChildrenWithTokens()
	for i, e := range elems {
		if e.Token != nil && e.Token.Kind() == token.KwAs && i+1 < len(elems) && elems[i+1].Token != nil {
			return elems[i+1].Token.Text()
		}
	}
	target := c.TargetName()
	for i := len(target) - 1; i >= 0; i-- {
		if target[i] == '.' {
			return target[i+1:]
		}
	}
	return target
}

// scatterLoopVarName returns a scatter statement's loop variable, a bare
// Ident token child sitting before the 'in' keyword and the range
// expression node — not wrapped in a node of its own.
func scatterLoopVarName(n *cst.Node) string {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.Ident {
			return e.Token.Text()
		}
	}
	return ""
}

// bindingValue returns a call input binding's `= expr` value node, or nil
// for a shorthand `name` binding (whose value comes from an
// identically-named symbol visible at the call site).
func bindingValue(b *cst.Node) *cst.Node {
	children := b.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// typeExprBareIdent reports whether te spells a bare struct/enum name
// reference (as opposed to a primitive keyword or a compound Array/Map/Pair
// type), returning that name.
func typeExprBareIdent(te *astview.TypeExpr) (string, bool) {
	elems := te.Syntax().ChildrenWithTokens()
	if len(elems) == 0 || elems[0].Token == nil {
		return "", false
	}
	if elems[0].Token.Kind() != token.Ident {
		return "", false
	}
	return elems[0].Token.Text(), true
}
