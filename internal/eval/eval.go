package eval

import (
	"fmt"
	"math"
	"strconv"

	"wdlc/internal/cst"
	"wdlc/internal/stdlib"
	"wdlc/internal/token"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// Eval evaluates expr against env, returning a runtime error for anything
// that can only fail at evaluation time (division by zero, an
// out-of-bounds index, a missing map key, a stdlib function's I/O
// failure) — §4.7 "evaluation is eager".
func Eval(expr *cst.Node, env *Env) (value.Value, error) {
	if expr == nil {
		return value.Value{}, fmt.Errorf("eval: nil expression")
	}
	switch expr.Kind() {
	case cst.KindLiteralExpr:
		return evalLiteral(expr)
	case cst.KindNoneLiteral:
		return value.None(), nil
	case cst.KindStringLiteral:
		return evalStringLiteral(expr, env)
	case cst.KindArrayLiteral:
		return evalArrayLiteral(expr, env)
	case cst.KindMapLiteral:
		return evalMapLiteral(expr, env)
	case cst.KindPairLiteral:
		return evalPairLiteral(expr, env)
	case cst.KindObjectLiteral:
		return evalObjectLiteral(expr, env)
	case cst.KindStructLiteral:
		return evalStructLiteral(expr, env)
	case cst.KindNameRef:
		return evalNameRef(expr, env)
	case cst.KindParenExpr:
		children := expr.Children()
		if len(children) == 0 {
			return value.Value{}, fmt.Errorf("eval: empty parenthesized expression")
		}
		return Eval(children[0], env)
	case cst.KindUnaryExpr:
		return evalUnary(expr, env)
	case cst.KindBinaryExpr:
		return evalBinary(expr, env)
	case cst.KindTernaryExpr:
		return evalTernary(expr, env)
	case cst.KindIndexExpr:
		return evalIndex(expr, env)
	case cst.KindMemberExpr:
		return evalMember(expr, env)
	case cst.KindApplyExpr:
		return evalApply(expr, env)
	case cst.KindPlaceholder:
		for _, c := range expr.Children() {
			if c.Kind() != cst.KindPlaceholderOption {
				return Eval(c, env)
			}
		}
		return value.Value{}, fmt.Errorf("eval: empty placeholder")
	}
	return value.Value{}, fmt.Errorf("eval: unsupported expression kind %v", expr.Kind())
}

func evalLiteral(expr *cst.Node) (value.Value, error) {
	tok := expr.FirstToken()
	if tok == nil {
		return value.Value{}, fmt.Errorf("eval: malformed literal")
	}
	switch tok.Kind() {
	case token.IntLit:
		n, err := strconv.ParseInt(tok.Text(), 0, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("eval: invalid int literal %q: %w", tok.Text(), err)
		}
		return value.Int(n), nil
	case token.FloatLit:
		f, err := strconv.ParseFloat(tok.Text(), 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("eval: invalid float literal %q: %w", tok.Text(), err)
		}
		return value.Float(f), nil
	case token.BoolLit:
		return value.Bool(tok.Text() == "true"), nil
	}
	return value.Value{}, fmt.Errorf("eval: unsupported literal token %v", tok.Kind())
}

func evalNameRef(expr *cst.Node, env *Env) (value.Value, error) {
	tok := expr.FirstToken()
	if tok == nil {
		return value.Value{}, fmt.Errorf("eval: malformed name reference")
	}
	v, ok := env.Lookup(tok.Text())
	if !ok {
		return value.Value{}, fmt.Errorf("eval: unbound name %q", tok.Text())
	}
	return v, nil
}

func evalArrayLiteral(expr *cst.Node, env *Env) (value.Value, error) {
	children := expr.Children()
	elems := make([]value.Value, 0, len(children))
	for _, c := range children {
		v, err := Eval(c, env)
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)
	}
	elemType := types.NoType
	if len(elems) > 0 {
		elemType = typeOfValue(env.in, elems[0])
	}
	return value.Array(elemType, elems), nil
}

func evalMapLiteral(expr *cst.Node, env *Env) (value.Value, error) {
	var entries []value.MapEntry
	for _, c := range expr.Children() {
		if c.Kind() != cst.KindMapEntry {
			continue
		}
		kv := c.Children()
		if len(kv) < 2 {
			continue
		}
		k, err := Eval(kv[0], env)
		if err != nil {
			return value.Value{}, err
		}
		v, err := Eval(kv[1], env)
		if err != nil {
			return value.Value{}, err
		}
		entries = append(entries, value.MapEntry{Key: k, Value: v})
	}
	return value.Map(entries), nil
}

func evalPairLiteral(expr *cst.Node, env *Env) (value.Value, error) {
	children := expr.Children()
	if len(children) < 2 {
		return value.Value{}, fmt.Errorf("eval: malformed pair literal")
	}
	l, err := Eval(children[0], env)
	if err != nil {
		return value.Value{}, err
	}
	r, err := Eval(children[1], env)
	if err != nil {
		return value.Value{}, err
	}
	return value.Pair(l, r), nil
}

func evalObjectLiteral(expr *cst.Node, env *Env) (value.Value, error) {
	fields := make(map[string]value.Value)
	for _, c := range expr.Children() {
		if c.Kind() != cst.KindObjectMember {
			continue
		}
		v, err := evalMemberValue(c, env)
		if err != nil {
			return value.Value{}, err
		}
		fields[identNameOf(c)] = v
	}
	return value.Object(fields), nil
}

func evalStructLiteral(expr *cst.Node, env *Env) (value.Value, error) {
	tok := expr.FirstToken()
	if tok == nil {
		return value.Value{}, fmt.Errorf("eval: malformed struct literal")
	}
	typeID, ok := env.named[tok.Text()]
	if !ok {
		return value.Value{}, fmt.Errorf("eval: unresolved struct type %q", tok.Text())
	}
	fields := make(map[string]value.Value)
	for _, c := range expr.Children() {
		if c.Kind() != cst.KindObjectMember {
			continue
		}
		v, err := evalMemberValue(c, env)
		if err != nil {
			return value.Value{}, err
		}
		fields[identNameOf(c)] = v
	}
	return value.Struct(typeID, fields), nil
}

// evalMemberValue evaluates a KindObjectMember's `key: expr` value — its
// last direct child, since the key is a bare token with no node of its own.
func evalMemberValue(member *cst.Node, env *Env) (value.Value, error) {
	children := member.Children()
	if len(children) == 0 {
		return value.Value{}, fmt.Errorf("eval: malformed member %q", identNameOf(member))
	}
	return Eval(children[len(children)-1], env)
}

func evalUnary(expr *cst.Node, env *Env) (value.Value, error) {
	children := expr.Children()
	if len(children) == 0 {
		return value.Value{}, fmt.Errorf("eval: malformed unary expression")
	}
	operand, err := Eval(children[0], env)
	if err != nil {
		return value.Value{}, err
	}
	tok := operatorToken(expr)
	if tok == nil {
		return value.Value{}, fmt.Errorf("eval: malformed unary expression")
	}
	switch tok.Kind() {
	case token.Bang:
		return value.Bool(!operand.Bool()), nil
	case token.Minus:
		if operand.Kind == types.KindFloat {
			return value.Float(-operand.Float()), nil
		}
		return value.Int(-operand.Int()), nil
	case token.Plus:
		return operand, nil
	}
	return value.Value{}, fmt.Errorf("eval: unsupported unary operator %v", tok.Kind())
}

func evalBinary(expr *cst.Node, env *Env) (value.Value, error) {
	children := expr.Children()
	if len(children) < 2 {
		return value.Value{}, fmt.Errorf("eval: malformed binary expression")
	}
	tok := operatorToken(expr)
	if tok == nil {
		return value.Value{}, fmt.Errorf("eval: malformed binary expression")
	}

	// && and || short-circuit (§4.7).
	switch tok.Kind() {
	case token.AndAnd:
		left, err := Eval(children[0], env)
		if err != nil {
			return value.Value{}, err
		}
		if !left.Bool() {
			return value.Bool(false), nil
		}
		right, err := Eval(children[1], env)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(right.Bool()), nil
	case token.OrOr:
		left, err := Eval(children[0], env)
		if err != nil {
			return value.Value{}, err
		}
		if left.Bool() {
			return value.Bool(true), nil
		}
		right, err := Eval(children[1], env)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(right.Bool()), nil
	}

	left, err := Eval(children[0], env)
	if err != nil {
		return value.Value{}, err
	}
	right, err := Eval(children[1], env)
	if err != nil {
		return value.Value{}, err
	}

	switch tok.Kind() {
	case token.Plus:
		if left.Kind == types.KindString || right.Kind == types.KindString {
			return value.String(stringOf(left) + stringOf(right)), nil
		}
		if left.Kind == types.KindFloat || right.Kind == types.KindFloat {
			return value.Float(numericOf(left) + numericOf(right)), nil
		}
		return value.Int(left.Int() + right.Int()), nil
	case token.Minus:
		if left.Kind == types.KindFloat || right.Kind == types.KindFloat {
			return value.Float(numericOf(left) - numericOf(right)), nil
		}
		return value.Int(left.Int() - right.Int()), nil
	case token.Star:
		if left.Kind == types.KindFloat || right.Kind == types.KindFloat {
			return value.Float(numericOf(left) * numericOf(right)), nil
		}
		return value.Int(left.Int() * right.Int()), nil
	case token.Slash:
		if left.Kind == types.KindFloat || right.Kind == types.KindFloat {
			rf := numericOf(right)
			if rf == 0 {
				return value.Value{}, fmt.Errorf("eval: division by zero")
			}
			return value.Float(numericOf(left) / rf), nil
		}
		if right.Int() == 0 {
			return value.Value{}, fmt.Errorf("eval: division by zero")
		}
		return value.Int(left.Int() / right.Int()), nil
	case token.Percent:
		if left.Kind == types.KindFloat || right.Kind == types.KindFloat {
			rf := numericOf(right)
			if rf == 0 {
				return value.Value{}, fmt.Errorf("eval: division by zero")
			}
			return value.Float(math.Mod(numericOf(left), rf)), nil
		}
		if right.Int() == 0 {
			return value.Value{}, fmt.Errorf("eval: division by zero")
		}
		return value.Int(left.Int() % right.Int()), nil
	case token.EqEq:
		return value.Bool(value.Equal(left, right)), nil
	case token.BangEq:
		return value.Bool(!value.Equal(left, right)), nil
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return compareOrdered(tok.Kind(), left, right)
	}
	return value.Value{}, fmt.Errorf("eval: unsupported binary operator %v", tok.Kind())
}

func compareOrdered(op token.Kind, left, right value.Value) (value.Value, error) {
	var cmp int
	switch {
	case left.Kind == types.KindString:
		cmp = stringsCompare(left.Str(), right.Str())
	default:
		a, b := numericOf(left), numericOf(right)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		default:
			cmp = 0
		}
	}
	switch op {
	case token.Lt:
		return value.Bool(cmp < 0), nil
	case token.LtEq:
		return value.Bool(cmp <= 0), nil
	case token.Gt:
		return value.Bool(cmp > 0), nil
	case token.GtEq:
		return value.Bool(cmp >= 0), nil
	}
	return value.Value{}, fmt.Errorf("eval: unsupported comparison operator %v", op)
}

func stringsCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func evalTernary(expr *cst.Node, env *Env) (value.Value, error) {
	children := expr.Children()
	if len(children) < 3 {
		return value.Value{}, fmt.Errorf("eval: malformed ternary expression")
	}
	cond, err := Eval(children[0], env)
	if err != nil {
		return value.Value{}, err
	}
	if cond.Bool() {
		return Eval(children[1], env)
	}
	return Eval(children[2], env)
}

func evalIndex(expr *cst.Node, env *Env) (value.Value, error) {
	children := expr.Children()
	if len(children) < 2 {
		return value.Value{}, fmt.Errorf("eval: malformed index expression")
	}
	base, err := Eval(children[0], env)
	if err != nil {
		return value.Value{}, err
	}
	idx, err := Eval(children[1], env)
	if err != nil {
		return value.Value{}, err
	}
	switch base.Kind {
	case types.KindArray:
		i := idx.Int()
		elems := base.Elements()
		if i < 0 || int(i) >= len(elems) {
			return value.Value{}, fmt.Errorf("eval: array index %d out of bounds (len %d)", i, len(elems))
		}
		return elems[i], nil
	case types.KindMap:
		for _, e := range base.Entries() {
			if value.Equal(e.Key, idx) {
				return e.Value, nil
			}
		}
		return value.Value{}, fmt.Errorf("eval: key not found in map")
	}
	return value.Value{}, fmt.Errorf("eval: cannot index a %v value", base.Kind)
}

func evalMember(expr *cst.Node, env *Env) (value.Value, error) {
	children := expr.Children()
	if len(children) == 0 {
		return value.Value{}, fmt.Errorf("eval: malformed member expression")
	}
	base, err := Eval(children[0], env)
	if err != nil {
		return value.Value{}, err
	}
	tok := expr.LastToken()
	if tok == nil {
		return value.Value{}, fmt.Errorf("eval: malformed member expression")
	}
	name := tok.Text()
	switch base.Kind {
	case types.KindStruct, types.KindObject:
		v, ok := base.Field(name)
		if !ok {
			return value.Value{}, fmt.Errorf("eval: no field %q", name)
		}
		return v, nil
	case types.KindPair:
		l, r := base.PairParts()
		switch name {
		case "left":
			return l, nil
		case "right":
			return r, nil
		}
	case types.KindArray:
		// A scatter body's `call c { ... }` binds c to an Object in the
		// inner scope but gathers c itself (not c.out) into the outer
		// Array[Object] (§4.10). Referencing c.out after the scatter
		// therefore means "this field, from every gathered element, in
		// order" rather than a single field access.
		elems := base.Elements()
		out := make([]value.Value, len(elems))
		for i, elem := range elems {
			switch elem.Kind {
			case types.KindStruct, types.KindObject:
				v, ok := elem.Field(name)
				if !ok {
					return value.Value{}, fmt.Errorf("eval: no field %q on array element %d", name, i)
				}
				out[i] = v
			case types.KindNone:
				out[i] = value.None()
			default:
				return value.Value{}, fmt.Errorf("eval: cannot access field %q on a %v array element", name, elem.Kind)
			}
		}
		return value.Array(base.Type, out), nil
	}
	return value.Value{}, fmt.Errorf("eval: cannot access field %q on a %v value", name, base.Kind)
}

func evalApply(expr *cst.Node, env *Env) (value.Value, error) {
	children := expr.Children()
	if len(children) == 0 {
		return value.Value{}, fmt.Errorf("eval: malformed function call")
	}
	calleeTok := children[0].FirstToken()
	if calleeTok == nil {
		return value.Value{}, fmt.Errorf("eval: malformed function call")
	}
	name := calleeTok.Text()
	fn, ok := stdlib.Lookup(name)
	if !ok {
		return value.Value{}, fmt.Errorf("eval: unknown function %q", name)
	}

	var argNodes []*cst.Node
	for _, c := range children[1:] {
		if c.Kind() == cst.KindArgList {
			argNodes = append(argNodes, c.Children()...)
		}
	}
	if !fn.CheckArity(len(argNodes)) {
		return value.Value{}, fmt.Errorf("eval: %s: wrong number of arguments (got %d)", name, len(argNodes))
	}
	args := make([]value.Value, 0, len(argNodes))
	for _, a := range argNodes {
		v, err := Eval(a, env)
		if err != nil {
			return value.Value{}, err
		}
		args = append(args, v)
	}
	return fn.Impl(env, args)
}
