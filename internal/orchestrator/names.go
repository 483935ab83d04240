package orchestrator

import (
	"strings"

	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/token"
)

// declName returns a declaration's bound name: the sole direct Ident token
// on a Declaration node, since parseTypeExpr always wraps the type in its
// own KindTypeExpr child (internal/parser/type_expr.go), leaving exactly
// one direct Ident token free to be the name.
func declName(d astview.Declaration) string {
	return firstIdent(d.Syntax())
}

// scatterVarName returns a ScatterStatement's loop variable name: the only
// direct Ident token on the node (the array expression and body are all
// Node children, per internal/parser/workflow.go's parseScatterStatement).
func scatterVarName(s astview.ScatterStatement) string {
	return firstIdent(s.Syntax())
}

// firstIdent scans n's direct children (tokens included) for the first
// Ident token.
func firstIdent(n *cst.Node) string {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.Ident {
			return e.Token.Text()
		}
	}
	return ""
}

// callBindingName returns the name a call statement's outputs are bound
// under: its `as <alias>` identifier if present, else the last dot segment
// of its target name (§4.10 "Call ... bind outputs to CallName.out").
func callBindingName(cs astview.CallStatement) string {
	children := cs.Syntax().ChildrenWithTokens()
	for i, e := range children {
		if e.Token != nil && e.Token.Kind() == token.KwAs {
			for _, f := range children[i+1:] {
				if f.Token != nil && f.Token.Kind() == token.Ident {
					return f.Token.Text()
				}
			}
		}
	}
	return lastSegment(cs.TargetName())
}

// lastSegment returns the final dot-separated component of a (possibly
// namespace-qualified) call target name.
func lastSegment(target string) string {
	if i := strings.LastIndex(target, "."); i >= 0 {
		return target[i+1:]
	}
	return target
}

// afterName returns the depended-on call's binding name named by one
// CallAfter node.
func afterName(ca astview.CallAfter) string {
	return firstIdent(ca.Syntax())
}

// callInputName returns one CallInput binding's left-hand name: its first
// direct Ident token (internal/parser/workflow.go's parseCallInputs emits
// Ident, optional Assign + expr).
func callInputName(ci astview.CallInput) string {
	return firstIdent(ci.Syntax())
}

// callInputValue returns the expression node bound to a CallInput, or nil
// if it is a WDL 1.1+ shorthand binding (`{ input: x }`, meaning "bind the
// callee's input x to the current scope's value named x").
func callInputValue(ci astview.CallInput) *cst.Node {
	children := ci.Syntax().ChildrenWithTokens()
	sawAssign := false
	for _, e := range children {
		if e.Token != nil && e.Token.Kind() == token.Assign {
			sawAssign = true
			continue
		}
		if sawAssign && e.Node != nil {
			return e.Node
		}
	}
	return nil
}

// callDependencyNames returns the binding names (among those in scope)
// that one call statement must wait on: its explicit `after` set, plus any
// bare identifier referenced in its own input expressions that matches an
// in-scope name.
func callDependencyNames(cs astview.CallStatement, scope map[string]bool) map[string]bool {
	deps := map[string]bool{}
	for _, after := range cs.Afters() {
		deps[afterName(after)] = true
	}
	if inputs := cs.Inputs(); inputs != nil {
		for _, ci := range inputs.Bindings() {
			expr := callInputValue(ci)
			if expr == nil {
				continue
			}
			for _, ref := range expr.Preorder() {
				if ref.Kind() != cst.KindNameRef {
					continue
				}
				tok := ref.FirstToken()
				if tok == nil {
					continue
				}
				if name := tok.Text(); scope[name] {
					deps[name] = true
				}
			}
		}
	}
	delete(deps, "")
	return deps
}

// collectDeclaredNames statically computes the set of names a not-taken
// conditional branch would have bound, so they can be promoted into the
// outer scope as None (§4.10 "None if the branch didn't run"). It recurses
// into nested declarations, calls, and further conditionals/scatters,
// since all of their bindings become optional in the enclosing scope too.
func collectDeclaredNames(stmts []*cst.Node) []string {
	var names []string
	for _, n := range stmts {
		switch v := astview.Cast(n).(type) {
		case astview.Declaration:
			if name := declName(v); name != "" {
				names = append(names, name)
			}
		case astview.CallStatement:
			names = append(names, callBindingName(v))
		case astview.IfStatement:
			children := v.Syntax().Children()
			if len(children) > 1 {
				names = append(names, collectDeclaredNames(children[1:])...)
			}
		case astview.ScatterStatement:
			children := v.Syntax().Children()
			if len(children) > 1 {
				names = append(names, collectDeclaredNames(children[1:])...)
			}
		}
	}
	return names
}
