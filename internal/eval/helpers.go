package eval

import (
	"strconv"

	"wdlc/internal/cst"
	"wdlc/internal/token"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// operatorToken returns the first direct token child of n — for a
// BinaryExpr/UnaryExpr this is the operator. Mirrors internal/sema/infer.go's
// helper of the same name and shape; duplicated rather than exported across
// the package boundary since evaluation and static inference read the CST
// independently and for different purposes.
func operatorToken(n *cst.Node) *cst.Token {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil {
			return e.Token
		}
	}
	return nil
}

// identNameOf returns the first Ident token directly under n.
func identNameOf(n *cst.Node) string {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.Ident {
			return e.Token.Text()
		}
	}
	return ""
}

// typeOfValue reconstructs v's TypeID well enough to build an Array/Struct
// value around it — the inverse of internal/sema/infer.go's static
// inferType, run over a runtime value instead of a CST node.
func typeOfValue(in *types.Interner, v value.Value) types.TypeID {
	switch v.Kind {
	case types.KindNone:
		return in.None()
	case types.KindBoolean:
		return in.Boolean()
	case types.KindInt:
		return in.Int()
	case types.KindFloat:
		return in.Float()
	case types.KindString:
		return in.String()
	case types.KindFile:
		return in.File()
	case types.KindDirectory:
		return in.Directory()
	case types.KindArray, types.KindStruct:
		return v.Type
	case types.KindPair:
		l, r := v.PairParts()
		return in.Pair(typeOfValue(in, l), typeOfValue(in, r))
	case types.KindMap:
		entries := v.Entries()
		if len(entries) == 0 {
			return in.Map(types.NoType, types.NoType)
		}
		return in.Map(typeOfValue(in, entries[0].Key), typeOfValue(in, entries[0].Value))
	case types.KindObject:
		return in.Object()
	}
	return types.NoType
}

// stringOf renders v as WDL's `+` string-concatenation operator would:
// String/File/Directory pass through verbatim, other primitives render
// their literal form.
func stringOf(v value.Value) string {
	switch v.Kind {
	case types.KindString, types.KindFile, types.KindDirectory:
		return v.Str()
	case types.KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case types.KindFloat:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case types.KindBoolean:
		return strconv.FormatBool(v.Bool())
	}
	return ""
}

// numericOf returns v's numeric value widened to float64, for arithmetic
// between a possible mix of Int and Float operands.
func numericOf(v value.Value) float64 {
	if v.Kind == types.KindFloat {
		return v.Float()
	}
	return float64(v.Int())
}
