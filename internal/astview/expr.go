package astview

import "wdlc/internal/cst"

func init() {
	register(cst.KindLiteralExpr, func(n *cst.Node) Node { return LiteralExpr{n} })
	register(cst.KindNoneLiteral, func(n *cst.Node) Node { return NoneLiteral{n} })
	register(cst.KindArrayLiteral, func(n *cst.Node) Node { return ArrayLiteral{n} })
	register(cst.KindMapLiteral, func(n *cst.Node) Node { return MapLiteral{n} })
	register(cst.KindMapEntry, func(n *cst.Node) Node { return MapEntry{n} })
	register(cst.KindPairLiteral, func(n *cst.Node) Node { return PairLiteral{n} })
	register(cst.KindObjectLiteral, func(n *cst.Node) Node { return ObjectLiteral{n} })
	register(cst.KindObjectMember, func(n *cst.Node) Node { return ObjectMember{n} })
	register(cst.KindStructLiteral, func(n *cst.Node) Node { return StructLiteral{n} })
	register(cst.KindNameRef, func(n *cst.Node) Node { return NameRef{n} })
	register(cst.KindParenExpr, func(n *cst.Node) Node { return ParenExpr{n} })
	register(cst.KindUnaryExpr, func(n *cst.Node) Node { return UnaryExpr{n} })
	register(cst.KindBinaryExpr, func(n *cst.Node) Node { return BinaryExpr{n} })
	register(cst.KindTernaryExpr, func(n *cst.Node) Node { return TernaryExpr{n} })
	register(cst.KindApplyExpr, func(n *cst.Node) Node { return ApplyExpr{n} })
	register(cst.KindArgList, func(n *cst.Node) Node { return ArgList{n} })
	register(cst.KindIndexExpr, func(n *cst.Node) Node { return IndexExpr{n} })
	register(cst.KindMemberExpr, func(n *cst.Node) Node { return MemberExpr{n} })
	register(cst.KindPlaceholder, func(n *cst.Node) Node { return Placeholder{n} })
	register(cst.KindPlaceholderOption, func(n *cst.Node) Node { return PlaceholderOption{n} })
	register(cst.KindStringLiteral, func(n *cst.Node) Node { return StringLiteral{n} })
}

type LiteralExpr struct{ n *cst.Node }

func (e LiteralExpr) Syntax() *cst.Node { return e.n }

type NoneLiteral struct{ n *cst.Node }

func (e NoneLiteral) Syntax() *cst.Node { return e.n }

// ArrayLiteral is the view over `[expr, expr, ...]`.
type ArrayLiteral struct{ n *cst.Node }

func (e ArrayLiteral) Syntax() *cst.Node { return e.n }

func (e ArrayLiteral) Elements() []*cst.Node { return e.n.Children() }

// MapLiteral is the view over `{ key: value, ... }`.
type MapLiteral struct{ n *cst.Node }

func (e MapLiteral) Syntax() *cst.Node { return e.n }

func (e MapLiteral) Entries() []MapEntry {
	return castAll[MapEntry](childrenOfKind(e.n, cst.KindMapEntry))
}

type MapEntry struct{ n *cst.Node }

func (e MapEntry) Syntax() *cst.Node { return e.n }

func (e MapEntry) KeyValue() (key, value *cst.Node) {
	children := e.n.Children()
	if len(children) >= 1 {
		key = children[0]
	}
	if len(children) >= 2 {
		value = children[1]
	}
	return
}

// PairLiteral is the view over `(left, right)`.
type PairLiteral struct{ n *cst.Node }

func (e PairLiteral) Syntax() *cst.Node { return e.n }

func (e PairLiteral) LeftRight() (left, right *cst.Node) {
	children := e.n.Children()
	if len(children) >= 1 {
		left = children[0]
	}
	if len(children) >= 2 {
		right = children[1]
	}
	return
}

// ObjectLiteral is the view over `object { key: expr, ... }`.
type ObjectLiteral struct{ n *cst.Node }

func (e ObjectLiteral) Syntax() *cst.Node { return e.n }

func (e ObjectLiteral) Members() []ObjectMember {
	return castAll[ObjectMember](childrenOfKind(e.n, cst.KindObjectMember))
}

type ObjectMember struct{ n *cst.Node }

func (m ObjectMember) Syntax() *cst.Node { return m.n }

func (m ObjectMember) Key() string {
	if tok := m.n.FirstToken(); tok != nil {
		return tok.Text()
	}
	return ""
}

// StructLiteral is the view over `Name { field: expr, ... }`.
type StructLiteral struct{ n *cst.Node }

func (e StructLiteral) Syntax() *cst.Node { return e.n }

func (e StructLiteral) TypeName() string {
	if tok := e.n.FirstToken(); tok != nil {
		return tok.Text()
	}
	return ""
}

func (e StructLiteral) Members() []ObjectMember {
	return castAll[ObjectMember](childrenOfKind(e.n, cst.KindObjectMember))
}

// NameRef is the view over a bare identifier expression.
type NameRef struct{ n *cst.Node }

func (e NameRef) Syntax() *cst.Node { return e.n }

func (e NameRef) Name() string {
	if tok := e.n.FirstToken(); tok != nil {
		return tok.Text()
	}
	return ""
}

type ParenExpr struct{ n *cst.Node }

func (e ParenExpr) Syntax() *cst.Node { return e.n }

func (e ParenExpr) Inner() *cst.Node {
	children := e.n.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// UnaryExpr is the view over a prefix `!`/`+`/`-` expression.
type UnaryExpr struct{ n *cst.Node }

func (e UnaryExpr) Syntax() *cst.Node { return e.n }

func (e UnaryExpr) Operand() *cst.Node {
	children := e.n.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// BinaryExpr is the view over a left-associative binary operator
// application; the operator token sits between the two child nodes.
type BinaryExpr struct{ n *cst.Node }

func (e BinaryExpr) Syntax() *cst.Node { return e.n }

func (e BinaryExpr) LeftRight() (left, right *cst.Node) {
	children := e.n.Children()
	if len(children) >= 1 {
		left = children[0]
	}
	if len(children) >= 2 {
		right = children[1]
	}
	return
}

// TernaryExpr is the view over `cond then x else y`.
type TernaryExpr struct{ n *cst.Node }

func (e TernaryExpr) Syntax() *cst.Node { return e.n }

func (e TernaryExpr) CondThenElse() (cond, then, els *cst.Node) {
	children := e.n.Children()
	if len(children) >= 1 {
		cond = children[0]
	}
	if len(children) >= 2 {
		then = children[1]
	}
	if len(children) >= 3 {
		els = children[2]
	}
	return
}

// ApplyExpr is the view over a call expression `callee(args...)`.
type ApplyExpr struct{ n *cst.Node }

func (e ApplyExpr) Syntax() *cst.Node { return e.n }

func (e ApplyExpr) Callee() *cst.Node {
	children := e.n.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func (e ApplyExpr) Args() *ArgList {
	return castFirst[ArgList](e.n, cst.KindArgList)
}

type ArgList struct{ n *cst.Node }

func (a ArgList) Syntax() *cst.Node { return a.n }

func (a ArgList) Args() []*cst.Node { return a.n.Children() }

// IndexExpr is the view over `base[index]`.
type IndexExpr struct{ n *cst.Node }

func (e IndexExpr) Syntax() *cst.Node { return e.n }

func (e IndexExpr) BaseIndex() (base, index *cst.Node) {
	children := e.n.Children()
	if len(children) >= 1 {
		base = children[0]
	}
	if len(children) >= 2 {
		index = children[1]
	}
	return
}

// MemberExpr is the view over `base.field`.
type MemberExpr struct{ n *cst.Node }

func (e MemberExpr) Syntax() *cst.Node { return e.n }

func (e MemberExpr) Base() *cst.Node {
	children := e.n.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func (e MemberExpr) FieldName() string {
	if tok := e.n.LastToken(); tok != nil {
		return tok.Text()
	}
	return ""
}

// Placeholder is the view over `~{expr [option ...]}` / `${expr}`.
type Placeholder struct{ n *cst.Node }

func (p Placeholder) Syntax() *cst.Node { return p.n }

func (p Placeholder) Options() []PlaceholderOption {
	return castAll[PlaceholderOption](childrenOfKind(p.n, cst.KindPlaceholderOption))
}

// Expr returns the placeholder's interpolated expression node: the first
// child that isn't itself a placeholder option.
func (p Placeholder) Expr() *cst.Node {
	for _, c := range p.n.Children() {
		if c.Kind() != cst.KindPlaceholderOption {
			return c
		}
	}
	return nil
}

type PlaceholderOption struct{ n *cst.Node }

func (o PlaceholderOption) Syntax() *cst.Node { return o.n }

func (o PlaceholderOption) Name() string {
	if tok := o.n.FirstToken(); tok != nil {
		return tok.Text()
	}
	return ""
}

// StringLiteral is the view over a double- or single-quoted string,
// possibly containing interleaved Placeholder children.
type StringLiteral struct{ n *cst.Node }

func (s StringLiteral) Syntax() *cst.Node { return s.n }

func (s StringLiteral) Placeholders() []Placeholder {
	return castAll[Placeholder](childrenOfKind(s.n, cst.KindPlaceholder))
}
