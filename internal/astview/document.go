package astview

import "wdlc/internal/cst"

func init() {
	register(cst.KindDocument, func(n *cst.Node) Node { return Document{n} })
	register(cst.KindVersionStatement, func(n *cst.Node) Node { return VersionStatement{n} })
	register(cst.KindImportStatement, func(n *cst.Node) Node { return ImportStatement{n} })
	register(cst.KindImportAlias, func(n *cst.Node) Node { return ImportAlias{n} })
	register(cst.KindStructDefinition, func(n *cst.Node) Node { return StructDefinition{n} })
	register(cst.KindStructMember, func(n *cst.Node) Node { return StructMember{n} })
	register(cst.KindEnumDefinition, func(n *cst.Node) Node { return EnumDefinition{n} })
	register(cst.KindEnumVariant, func(n *cst.Node) Node { return EnumVariant{n} })
}

// Document is the view over a whole parsed WDL file.
type Document struct{ n *cst.Node }

func (d Document) Syntax() *cst.Node { return d.n }

// Version returns the document's mandatory version statement, or nil if
// parsing failed before one could be built.
func (d Document) Version() *VersionStatement {
	c := firstChildOfKind(d.n, cst.KindVersionStatement)
	if c == nil {
		return nil
	}
	v := VersionStatement{c}
	return &v
}

func (d Document) Imports() []ImportStatement {
	return castAll[ImportStatement](childrenOfKind(d.n, cst.KindImportStatement))
}

func (d Document) Structs() []StructDefinition {
	return castAll[StructDefinition](childrenOfKind(d.n, cst.KindStructDefinition))
}

func (d Document) Enums() []EnumDefinition {
	return castAll[EnumDefinition](childrenOfKind(d.n, cst.KindEnumDefinition))
}

func (d Document) Tasks() []TaskDefinition {
	return castAll[TaskDefinition](childrenOfKind(d.n, cst.KindTaskDefinition))
}

func (d Document) Workflows() []WorkflowDefinition {
	return castAll[WorkflowDefinition](childrenOfKind(d.n, cst.KindWorkflowDefinition))
}

// castAll wraps each node in T via a zero-value struct literal; every view
// type in this package is a single-field struct {n *cst.Node}, so this
// generic helper avoids repeating the same loop in every accessor above.
func castAll[T any](nodes []*cst.Node) []T {
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		v := Cast(n)
		if typed, ok := v.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// VersionStatement is the view over the document's leading "version x.y".
type VersionStatement struct{ n *cst.Node }

func (v VersionStatement) Syntax() *cst.Node { return v.n }

// VersionText returns the version identifier's own text (e.g. "1.2"),
// excluding the 'version' keyword and any surrounding trivia.
func (v VersionStatement) VersionText() string {
	for _, e := range v.n.ChildrenWithTokens() {
		if e.Token != nil {
			return e.Token.Text()
		}
	}
	return ""
}

// ImportStatement is the view over `import "uri" [as alias] [alias X as Y]*`.
type ImportStatement struct{ n *cst.Node }

func (imp ImportStatement) Syntax() *cst.Node { return imp.n }

func (imp ImportStatement) URI() *cst.Node {
	return firstChildOfKind(imp.n, cst.KindStringLiteral)
}

func (imp ImportStatement) Aliases() []ImportAlias {
	return castAll[ImportAlias](childrenOfKind(imp.n, cst.KindImportAlias))
}

// ImportAlias is the view over one `alias Foo as Bar` clause.
type ImportAlias struct{ n *cst.Node }

func (a ImportAlias) Syntax() *cst.Node { return a.n }

// StructDefinition is the view over `struct Name { member* }`.
type StructDefinition struct{ n *cst.Node }

func (s StructDefinition) Syntax() *cst.Node { return s.n }

func (s StructDefinition) Members() []StructMember {
	return castAll[StructMember](childrenOfKind(s.n, cst.KindStructMember))
}

// StructMember is the view over one `Type name` member of a struct.
type StructMember struct{ n *cst.Node }

func (m StructMember) Syntax() *cst.Node { return m.n }

func (m StructMember) Type() *cst.Node { return firstChildOfKind(m.n, cst.KindTypeExpr) }

// EnumDefinition is the view over `enum Name { Variant, ... }` (WDL 1.2).
type EnumDefinition struct{ n *cst.Node }

func (e EnumDefinition) Syntax() *cst.Node { return e.n }

func (e EnumDefinition) Variants() []EnumVariant {
	return castAll[EnumVariant](childrenOfKind(e.n, cst.KindEnumVariant))
}

// EnumVariant is the view over one bare variant name inside an enum body.
type EnumVariant struct{ n *cst.Node }

func (v EnumVariant) Syntax() *cst.Node { return v.n }
