package sema

import (
	"wdlc/internal/cst"
	"wdlc/internal/stdlib"
	"wdlc/internal/token"
	"wdlc/internal/types"
)

// inferEnv bundles what expression type inference needs: the interner,
// this document's struct/enum table, and the local scope chain in effect
// at the expression's position.
type inferEnv struct {
	in    *types.Interner
	named NamedTypes
	scope *Scope
}

// operatorToken returns the first direct token child of n — for a
// BinaryExpr/UnaryExpr this is the operator, sitting between (or before)
// the operand node(s); unlike cst.Node.FirstToken, which descends into the
// leftmost child node and would return the left operand's own first
// token instead.
func operatorToken(n *cst.Node) *cst.Token {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil {
			return e.Token
		}
	}
	return nil
}

// inferType infers expr's static type well enough to drive coercion
// checks (§4.6's "Run type checking"). Constructs that need a runtime
// value to type — most stdlib call results — resolve to types.NoType
// ("Unknown"); analysis continues past them rather than failing, the same
// policy §4.6 uses for unresolved names.
func inferType(expr *cst.Node, env *inferEnv) types.TypeID {
	if expr == nil {
		return types.NoType
	}
	switch expr.Kind() {
	case cst.KindLiteralExpr:
		tok := expr.FirstToken()
		if tok == nil {
			return types.NoType
		}
		switch tok.Kind() {
		case token.IntLit:
			return env.in.Int()
		case token.FloatLit:
			return env.in.Float()
		case token.BoolLit:
			return env.in.Boolean()
		}
		return types.NoType
	case cst.KindNoneLiteral:
		return env.in.None()
	case cst.KindStringLiteral:
		return env.in.String()
	case cst.KindArrayLiteral:
		return inferArrayLiteral(expr, env)
	case cst.KindMapLiteral:
		return inferMapLiteral(expr, env)
	case cst.KindPairLiteral:
		return inferPairLiteral(expr, env)
	case cst.KindObjectLiteral:
		return env.in.Object()
	case cst.KindStructLiteral:
		return inferStructLiteral(expr, env)
	case cst.KindNameRef:
		if tok := expr.FirstToken(); tok != nil {
			if sym, ok := env.scope.Lookup(tok.Text()); ok {
				return sym.Type
			}
		}
		return types.NoType
	case cst.KindParenExpr:
		children := expr.Children()
		if len(children) == 0 {
			return types.NoType
		}
		return inferType(children[0], env)
	case cst.KindUnaryExpr:
		return inferUnary(expr, env)
	case cst.KindBinaryExpr:
		return inferBinary(expr, env)
	case cst.KindTernaryExpr:
		return inferTernary(expr, env)
	case cst.KindIndexExpr:
		return inferIndex(expr, env)
	case cst.KindMemberExpr:
		return inferMember(expr, env)
	case cst.KindApplyExpr:
		return inferApply(expr, env)
	case cst.KindPlaceholder:
		return types.NoType
	}
	return types.NoType
}

// inferApply resolves a standard-library call's static return type (§4.7:
// "each entry carries ... a return-type rule"). An unknown function name or
// a wrong argument count is reported separately by checkApplyExpr, not
// here — inferType never reports diagnostics itself, so a bad call just
// falls back to NoType and analysis continues past it.
func inferApply(expr *cst.Node, env *inferEnv) types.TypeID {
	name, argNodes := applyNameAndArgs(expr)
	if name == "" {
		return types.NoType
	}
	fn, ok := stdlib.Lookup(name)
	if !ok || !fn.CheckArity(len(argNodes)) {
		return types.NoType
	}
	argTypes := make([]types.TypeID, len(argNodes))
	for i, a := range argNodes {
		argTypes[i] = inferType(a, env)
	}
	return fn.Return(env.in, argTypes)
}

// applyNameAndArgs extracts a KindApplyExpr's callee name and argument
// expression nodes, mirroring internal/eval.evalApply's own CST walk.
func applyNameAndArgs(expr *cst.Node) (string, []*cst.Node) {
	children := expr.Children()
	if len(children) == 0 {
		return "", nil
	}
	calleeTok := children[0].FirstToken()
	if calleeTok == nil {
		return "", nil
	}
	var args []*cst.Node
	for _, c := range children[1:] {
		if c.Kind() == cst.KindArgList {
			args = append(args, c.Children()...)
		}
	}
	return calleeTok.Text(), args
}

func inferArrayLiteral(expr *cst.Node, env *inferEnv) types.TypeID {
	elems := expr.Children()
	if len(elems) == 0 {
		return env.in.Array(types.NoType, false)
	}
	elemType := inferType(elems[0], env)
	for _, e := range elems[1:] {
		if unified, ok := env.in.Unify(elemType, inferType(e, env)); ok {
			elemType = unified
		}
	}
	return env.in.Array(elemType, true)
}

func inferMapLiteral(expr *cst.Node, env *inferEnv) types.TypeID {
	entries := childrenOfKind(expr, cst.KindMapEntry)
	if len(entries) == 0 {
		return env.in.Map(types.NoType, types.NoType)
	}
	keyType, valType := entryTypes(entries[0], env)
	for _, e := range entries[1:] {
		k, v := entryTypes(e, env)
		if unified, ok := env.in.Unify(keyType, k); ok {
			keyType = unified
		}
		if unified, ok := env.in.Unify(valType, v); ok {
			valType = unified
		}
	}
	return env.in.Map(keyType, valType)
}

func entryTypes(entry *cst.Node, env *inferEnv) (key, value types.TypeID) {
	kv := entry.Children()
	if len(kv) >= 1 {
		key = inferType(kv[0], env)
	}
	if len(kv) >= 2 {
		value = inferType(kv[1], env)
	}
	return
}

func inferPairLiteral(expr *cst.Node, env *inferEnv) types.TypeID {
	children := expr.Children()
	var left, right types.TypeID
	if len(children) >= 1 {
		left = inferType(children[0], env)
	}
	if len(children) >= 2 {
		right = inferType(children[1], env)
	}
	return env.in.Pair(left, right)
}

func inferStructLiteral(expr *cst.Node, env *inferEnv) types.TypeID {
	tok := expr.FirstToken()
	if tok == nil {
		return types.NoType
	}
	if id, ok := env.named[tok.Text()]; ok {
		return id
	}
	return types.NoType
}

func inferUnary(expr *cst.Node, env *inferEnv) types.TypeID {
	children := expr.Children()
	if len(children) == 0 {
		return types.NoType
	}
	operandType := inferType(children[0], env)
	tok := operatorToken(expr)
	if tok == nil {
		return types.NoType
	}
	switch tok.Kind() {
	case token.Bang:
		return env.in.Boolean()
	case token.Plus, token.Minus:
		return operandType
	}
	return types.NoType
}

func inferBinary(expr *cst.Node, env *inferEnv) types.TypeID {
	children := expr.Children()
	if len(children) < 2 {
		return types.NoType
	}
	leftType := inferType(children[0], env)
	rightType := inferType(children[1], env)
	tok := operatorToken(expr)
	if tok == nil {
		return types.NoType
	}
	switch tok.Kind() {
	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq, token.AndAnd, token.OrOr:
		return env.in.Boolean()
	case token.Plus:
		if leftType == env.in.String() || rightType == env.in.String() {
			return env.in.String()
		}
		if leftType == env.in.Float() || rightType == env.in.Float() {
			return env.in.Float()
		}
		return env.in.Int()
	case token.Minus, token.Star, token.Slash, token.Percent:
		if leftType == env.in.Float() || rightType == env.in.Float() {
			return env.in.Float()
		}
		return env.in.Int()
	}
	return types.NoType
}

func inferTernary(expr *cst.Node, env *inferEnv) types.TypeID {
	children := expr.Children()
	if len(children) < 3 {
		return types.NoType
	}
	thenType := inferType(children[1], env)
	elseType := inferType(children[2], env)
	if unified, ok := env.in.Unify(thenType, elseType); ok {
		return unified
	}
	return thenType
}

func inferIndex(expr *cst.Node, env *inferEnv) types.TypeID {
	children := expr.Children()
	if len(children) == 0 {
		return types.NoType
	}
	t := env.in.Type(inferType(children[0], env))
	switch t.Kind {
	case types.KindArray:
		return t.Elem
	case types.KindMap:
		return t.Value
	}
	return types.NoType
}

func inferMember(expr *cst.Node, env *inferEnv) types.TypeID {
	children := expr.Children()
	if len(children) == 0 {
		return types.NoType
	}
	baseType := inferType(children[0], env)
	t := env.in.Type(baseType)
	fieldTok := expr.LastToken()
	if fieldTok == nil {
		return types.NoType
	}
	switch t.Kind {
	case types.KindStruct:
		info, ok := env.in.StructInfo(baseType)
		if !ok {
			return types.NoType
		}
		for _, f := range info.Fields {
			if f.Name == fieldTok.Text() {
				return f.Type
			}
		}
	case types.KindPair:
		switch fieldTok.Text() {
		case "left":
			return t.Left
		case "right":
			return t.Right
		}
	}
	return types.NoType
}
