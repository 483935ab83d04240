package sema

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/docgraph"
	"wdlc/internal/token"
	"wdlc/internal/types"
)

// NamedTypes maps a document's visible struct/enum names — local
// definitions plus those pulled in from an import's namespace, renamed by
// any `alias From as To` clause — to their interned TypeID (§4.6 "Build
// the scope").
type NamedTypes map[string]types.TypeID

// identNameOf returns the first Ident token directly under n. Duplicated
// from internal/docgraph's unexported helper of the same shape: both
// packages need it for an unrelated reason (docgraph indexes definitions,
// sema names struct fields and enum variants), not worth exporting one
// four-line helper across a package boundary for.
func identNameOf(n *cst.Node) string {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.Ident {
			return e.Token.Text()
		}
	}
	return ""
}

// resolveTypeExpr interns the type spelled out by a KindTypeExpr node,
// resolving any bare struct/enum reference against named. An unresolvable
// reference yields types.NoType; callers report SemaUnresolvedStruct.
func resolveTypeExpr(n *cst.Node, in *types.Interner, named NamedTypes) types.TypeID {
	return resolveTypeExprVia(n, in, func(name string) types.TypeID { return named[name] })
}

// resolveTypeExprVia is resolveTypeExpr generalized over how a bare
// identifier resolves, so registerDocumentTypes can thread through a
// resolver that lazily registers forward-referenced structs instead of a
// fixed lookup table.
func resolveTypeExprVia(n *cst.Node, in *types.Interner, resolveIdent func(name string) types.TypeID) types.TypeID {
	if n == nil {
		return types.NoType
	}
	var id types.TypeID
	switch {
	case firstChildOfKind(n, cst.KindArrayTypeExpr) != nil:
		arr := firstChildOfKind(n, cst.KindArrayTypeExpr)
		elem := firstChildOfKind(arr, cst.KindTypeExpr)
		id = in.Array(resolveTypeExprVia(elem, in, resolveIdent), false)
	case firstChildOfKind(n, cst.KindMapTypeExpr) != nil:
		m := firstChildOfKind(n, cst.KindMapTypeExpr)
		kv := childrenOfKind(m, cst.KindTypeExpr)
		key, val := types.NoType, types.NoType
		if len(kv) >= 1 {
			key = resolveTypeExprVia(kv[0], in, resolveIdent)
		}
		if len(kv) >= 2 {
			val = resolveTypeExprVia(kv[1], in, resolveIdent)
		}
		id = in.Map(key, val)
	case firstChildOfKind(n, cst.KindPairTypeExpr) != nil:
		p := firstChildOfKind(n, cst.KindPairTypeExpr)
		lr := childrenOfKind(p, cst.KindTypeExpr)
		left, right := types.NoType, types.NoType
		if len(lr) >= 1 {
			left = resolveTypeExprVia(lr[0], in, resolveIdent)
		}
		if len(lr) >= 2 {
			right = resolveTypeExprVia(lr[1], in, resolveIdent)
		}
		id = in.Pair(left, right)
	default:
		id = resolvePrimitiveOrNamed(n, in, resolveIdent)
	}
	if id == types.NoType {
		return types.NoType
	}
	if firstChildOfKind(n, cst.KindNonEmptySuffix) != nil {
		t := in.Type(id)
		if t.Kind == types.KindArray {
			id = in.Array(t.Elem, true)
		}
	}
	if firstChildOfKind(n, cst.KindOptionalTypeSuffix) != nil {
		id = in.Optional(id)
	}
	return id
}

func resolvePrimitiveOrNamed(n *cst.Node, in *types.Interner, resolveIdent func(name string) types.TypeID) types.TypeID {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token == nil {
			continue
		}
		switch e.Token.Kind() {
		case token.KwBoolean:
			return in.Boolean()
		case token.KwInt:
			return in.Int()
		case token.KwFloat:
			return in.Float()
		case token.KwString:
			return in.String()
		case token.KwFile:
			return in.File()
		case token.KwDirectory:
			return in.Directory()
		case token.KwNone:
			return in.None()
		case token.Ident:
			return resolveIdent(e.Token.Text())
		}
	}
	return types.NoType
}

func firstChildOfKind(n *cst.Node, k cst.Kind) *cst.Node {
	for _, c := range n.Children() {
		if c.Kind() == k {
			return c
		}
	}
	return nil
}

func childrenOfKind(n *cst.Node, k cst.Kind) []*cst.Node {
	var out []*cst.Node
	for _, c := range n.Children() {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out
}

// registerDocumentTypes interns doc's local structs and enums plus the
// struct/enum names contributed by its resolved imports (renamed per
// ImportEdge.Aliases), returning the combined table used to resolve every
// TypeExpr inside doc. A struct member whose type refers to another struct
// in the same document is resolved lazily, on demand, so declaration order
// inside the file does not matter; a genuine field cycle is reported as
// SemaStructFieldCycle and broken by registering the struct with no
// fields, matching §4.6's "analysis of other documents proceeds using
// partial information" policy for cycles in general.
func registerDocumentTypes(doc *docgraph.Document, in *types.Interner, imported NamedTypes) NamedTypes {
	named := make(NamedTypes, len(doc.StructNames)+len(doc.EnumNames)+len(imported))
	for name, id := range imported {
		named[name] = id
	}
	for name, def := range doc.EnumNames {
		variants := make([]string, 0, len(def.Variants()))
		for _, v := range def.Variants() {
			variants = append(variants, identNameOf(v.Syntax()))
		}
		named[name] = in.Enum(name, variants)
	}

	building := make(map[string]bool, len(doc.StructNames))
	var resolveStruct func(name string) types.TypeID
	resolveIdent := func(name string) types.TypeID {
		if id, ok := named[name]; ok {
			return id
		}
		if _, ok := doc.StructNames[name]; ok {
			return resolveStruct(name)
		}
		return types.NoType
	}
	resolveStruct = func(name string) types.TypeID {
		if id, ok := named[name]; ok {
			return id
		}
		def, ok := doc.StructNames[name]
		if !ok {
			return types.NoType
		}
		if building[name] {
			d := &diag.Diagnostic{
				Severity: sevError,
				Code:     diag.SemaStructFieldCycle,
				Message:  "struct \"" + name + "\" has a field type that forms a cycle",
				Primary:  def.Syntax().Span(),
				Rule:     "StructFieldCycle",
			}
			doc.Diags.ExceptableAdd(d, def.Syntax(), nil)
			id := in.Struct(name, nil)
			named[name] = id
			return id
		}
		building[name] = true
		members := def.Members()
		fields := make([]types.Field, 0, len(members))
		for _, m := range members {
			ft := resolveTypeExprVia(m.Type(), in, resolveIdent)
			fields = append(fields, types.Field{Name: identNameOf(m.Syntax()), Type: ft})
		}
		delete(building, name)
		id := in.Struct(name, fields)
		named[name] = id
		return id
	}
	for name := range doc.StructNames {
		resolveStruct(name)
	}
	return named
}

// importedNamedTypes merges the struct/enum names another (already
// analyzed) document exposes into the importing document's table, applying
// any `alias From as To` rename.
func importedNamedTypes(edge *docgraph.ImportEdge, sourceTypes NamedTypes) NamedTypes {
	out := make(NamedTypes, len(sourceTypes))
	for name, id := range sourceTypes {
		to := name
		if renamed, ok := edge.Aliases[name]; ok {
			to = renamed
		}
		out[to] = id
	}
	return out
}
