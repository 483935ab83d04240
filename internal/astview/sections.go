package astview

import "wdlc/internal/cst"

func init() {
	register(cst.KindInputSection, func(n *cst.Node) Node { return InputSection{n} })
	register(cst.KindOutputSection, func(n *cst.Node) Node { return OutputSection{n} })
	register(cst.KindDeclaration, func(n *cst.Node) Node { return Declaration{n} })
	register(cst.KindCommandSection, func(n *cst.Node) Node { return CommandSection{n} })
	register(cst.KindCommandText, func(n *cst.Node) Node { return CommandText{n} })
	register(cst.KindRuntimeSection, func(n *cst.Node) Node { return AttrSection{n} })
	register(cst.KindRuntimeAttr, func(n *cst.Node) Node { return Attr{n} })
	register(cst.KindRequirementsSection, func(n *cst.Node) Node { return AttrSection{n} })
	register(cst.KindRequirementsAttr, func(n *cst.Node) Node { return Attr{n} })
	register(cst.KindHintsSection, func(n *cst.Node) Node { return AttrSection{n} })
	register(cst.KindHintsAttr, func(n *cst.Node) Node { return Attr{n} })
	register(cst.KindMetaSection, func(n *cst.Node) Node { return MetaSection{n} })
	register(cst.KindParameterMetaSection, func(n *cst.Node) Node { return MetaSection{n} })
	register(cst.KindMetaEntry, func(n *cst.Node) Node { return MetaEntry{n} })
	register(cst.KindMetaObject, func(n *cst.Node) Node { return MetaObject{n} })
	register(cst.KindMetaArray, func(n *cst.Node) Node { return MetaArray{n} })
	register(cst.KindTypeExpr, func(n *cst.Node) Node { return TypeExpr{n} })
	register(cst.KindArrayTypeExpr, func(n *cst.Node) Node { return ArrayTypeExpr{n} })
	register(cst.KindMapTypeExpr, func(n *cst.Node) Node { return MapTypeExpr{n} })
	register(cst.KindPairTypeExpr, func(n *cst.Node) Node { return PairTypeExpr{n} })
	register(cst.KindOptionalTypeSuffix, func(n *cst.Node) Node { return OptionalTypeSuffix{n} })
	register(cst.KindNonEmptySuffix, func(n *cst.Node) Node { return NonEmptySuffix{n} })
}

// MetaObject is the view over a nested `{ key: value, ... }` meta value.
type MetaObject struct{ n *cst.Node }

func (o MetaObject) Syntax() *cst.Node { return o.n }

// MetaArray is the view over a `[value, ...]` meta value.
type MetaArray struct{ n *cst.Node }

func (a MetaArray) Syntax() *cst.Node { return a.n }

// ArrayTypeExpr is the view over `Array[T]`.
type ArrayTypeExpr struct{ n *cst.Node }

func (t ArrayTypeExpr) Syntax() *cst.Node { return t.n }

func (t ArrayTypeExpr) Element() *TypeExpr { return castFirst[TypeExpr](t.n, cst.KindTypeExpr) }

// MapTypeExpr is the view over `Map[K, V]`.
type MapTypeExpr struct{ n *cst.Node }

func (t MapTypeExpr) Syntax() *cst.Node { return t.n }

func (t MapTypeExpr) KeyValue() (key, value *TypeExpr) {
	types := castAll[TypeExpr](childrenOfKind(t.n, cst.KindTypeExpr))
	if len(types) >= 1 {
		key = &types[0]
	}
	if len(types) >= 2 {
		value = &types[1]
	}
	return
}

// PairTypeExpr is the view over `Pair[L, R]`.
type PairTypeExpr struct{ n *cst.Node }

func (t PairTypeExpr) Syntax() *cst.Node { return t.n }

func (t PairTypeExpr) LeftRight() (left, right *TypeExpr) {
	types := castAll[TypeExpr](childrenOfKind(t.n, cst.KindTypeExpr))
	if len(types) >= 1 {
		left = &types[0]
	}
	if len(types) >= 2 {
		right = &types[1]
	}
	return
}

// OptionalTypeSuffix is the view over a trailing '?' on a type expression.
type OptionalTypeSuffix struct{ n *cst.Node }

func (s OptionalTypeSuffix) Syntax() *cst.Node { return s.n }

// NonEmptySuffix is the view over a trailing '+' on an Array type expression.
type NonEmptySuffix struct{ n *cst.Node }

func (s NonEmptySuffix) Syntax() *cst.Node { return s.n }

// InputSection is the view over `input { declaration* }`.
type InputSection struct{ n *cst.Node }

func (s InputSection) Syntax() *cst.Node { return s.n }

func (s InputSection) Declarations() []Declaration {
	return castAll[Declaration](childrenOfKind(s.n, cst.KindDeclaration))
}

// OutputSection is the view over `output { declaration* }`.
type OutputSection struct{ n *cst.Node }

func (s OutputSection) Syntax() *cst.Node { return s.n }

func (s OutputSection) Declarations() []Declaration {
	return castAll[Declaration](childrenOfKind(s.n, cst.KindDeclaration))
}

// Declaration is the view over `Type name [= expr]`.
type Declaration struct{ n *cst.Node }

func (d Declaration) Syntax() *cst.Node { return d.n }

func (d Declaration) Type() *TypeExpr {
	return castFirst[TypeExpr](d.n, cst.KindTypeExpr)
}

// Initializer returns the declaration's `= expr` right-hand side node, or
// nil for an uninitialized input declaration. It is the first child node
// after the TypeExpr that isn't itself a TypeExpr.
func (d Declaration) Initializer() *cst.Node {
	children := d.n.Children()
	for i, c := range children {
		if c.Kind() == cst.KindTypeExpr && i+1 < len(children) {
			return children[i+1]
		}
	}
	return nil
}

// TypeExpr is the view over a type expression node (primitive, Array/Map/Pair,
// or a struct/enum reference), optionally suffixed by '+' and/or '?'.
type TypeExpr struct{ n *cst.Node }

func (t TypeExpr) Syntax() *cst.Node { return t.n }

func (t TypeExpr) IsOptional() bool {
	return firstChildOfKind(t.n, cst.KindOptionalTypeSuffix) != nil
}

func (t TypeExpr) IsNonEmpty() bool {
	return firstChildOfKind(t.n, cst.KindNonEmptySuffix) != nil
}

// CommandSection is the view over a task's command body, whether opened
// with '{' or the '<<<' heredoc form.
type CommandSection struct{ n *cst.Node }

func (c CommandSection) Syntax() *cst.Node { return c.n }

func (c CommandSection) TextParts() []CommandText {
	return castAll[CommandText](childrenOfKind(c.n, cst.KindCommandText))
}

// CommandText is one raw-text run inside a command section, between
// placeholders.
type CommandText struct{ n *cst.Node }

func (t CommandText) Syntax() *cst.Node { return t.n }

// AttrSection is the shared view over runtime/requirements/hints sections,
// all of which are a flat `key: expr, ...` attribute list.
type AttrSection struct{ n *cst.Node }

func (s AttrSection) Syntax() *cst.Node { return s.n }

func (s AttrSection) Attrs() []Attr {
	var out []Attr
	for _, c := range s.n.Children() {
		switch c.Kind() {
		case cst.KindRuntimeAttr, cst.KindRequirementsAttr, cst.KindHintsAttr:
			out = append(out, Attr{c})
		}
	}
	return out
}

// Attr is one `key: expr` entry inside a runtime/requirements/hints section.
type Attr struct{ n *cst.Node }

func (a Attr) Syntax() *cst.Node { return a.n }

// Key returns the attribute's key token text.
func (a Attr) Key() string {
	if tok := a.n.FirstToken(); tok != nil {
		return tok.Text()
	}
	return ""
}

// MetaSection is the shared view over meta/parameter_meta sections.
type MetaSection struct{ n *cst.Node }

func (s MetaSection) Syntax() *cst.Node { return s.n }

func (s MetaSection) Entries() []MetaEntry {
	return castAll[MetaEntry](childrenOfKind(s.n, cst.KindMetaEntry))
}

// MetaEntry is one `key: value` entry inside a meta/parameter_meta section.
type MetaEntry struct{ n *cst.Node }

func (e MetaEntry) Syntax() *cst.Node { return e.n }

func (e MetaEntry) Key() string {
	if tok := e.n.FirstToken(); tok != nil {
		return tok.Text()
	}
	return ""
}
