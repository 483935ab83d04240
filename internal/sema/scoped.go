package sema

import (
	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/stdlib"
	"wdlc/internal/types"
)

// ruleScopedAnalysis is §4.6's name-resolution and type-checking pass
// proper: for each task and workflow, build its scope, then resolve every
// name reference and type-check declarations, calls, outputs, scatter
// ranges, conditionals, and placeholder options against it. It is one Rule
// rather than several because every one of those checks shares the same
// built scope, and building it is the expensive, diagnostic-producing part
// (struct-field-cycle detection lives in registerDocumentTypes, but scatter
// shadowing is detected here, while scope is built) — splitting it into
// independent Rules would mean rebuilding (and re-diagnosing) the scope once
// per check.
type ruleScopedAnalysis struct{}

func (ruleScopedAnalysis) Name() string { return "scoped-analysis" }

func (r ruleScopedAnalysis) Check(ctx *Context) {
	for _, task := range ctx.Doc.View.Tasks() {
		ctx.analyzeTask(task)
	}
	for _, wf := range ctx.Doc.View.Workflows() {
		ctx.analyzeWorkflow(wf)
	}
}

func (ctx *Context) analyzeTask(task astview.TaskDefinition) {
	scope := NewScope(nil)
	if in := task.Input(); in != nil {
		for _, d := range in.Declarations() {
			ctx.defineAndCheckDeclaration(scope, d, false)
		}
	}
	for _, n := range directDeclarations(task.Syntax()) {
		if d, ok := castDeclaration(n); ok {
			ctx.defineAndCheckDeclaration(scope, d, false)
		}
	}
	if out := task.Output(); out != nil {
		for _, d := range out.Declarations() {
			ctx.defineAndCheckDeclaration(scope, d, true)
		}
	}

	env := &inferEnv{in: ctx.In, named: ctx.Named, scope: scope}
	if cmd := task.Command(); cmd != nil {
		checkPlaceholdersIn(ctx, cmd.Syntax(), env)
	}

	ctx.checkNameResolution(task.Syntax(), scope)
}

func (ctx *Context) analyzeWorkflow(wf astview.WorkflowDefinition) {
	scope := NewScope(nil)
	if in := wf.Input(); in != nil {
		for _, d := range in.Declarations() {
			ctx.defineAndCheckDeclaration(scope, d, false)
		}
	}

	var calls []astview.CallStatement
	var scatters []*cst.Node
	var conditionals []*cst.Node
	walkWorkflowBody(wf.Syntax(), func(n *cst.Node) {
		switch n.Kind() {
		case cst.KindDeclaration:
			if d, ok := castDeclaration(n); ok {
				ctx.defineAndCheckDeclaration(scope, d, false)
			}
		case cst.KindCallStatement:
			if v, ok := castCallStatement(n); ok {
				calls = append(calls, v)
				ctx.checkCallTarget(v)
			}
		case cst.KindScatterStatement:
			scatters = append(scatters, n)
		case cst.KindIfStatement:
			conditionals = append(conditionals, n)
		}
	})

	for _, call := range calls {
		ctx.defineCallAlias(scope, call)
	}

	env := &inferEnv{in: ctx.In, named: ctx.Named, scope: scope}
	for _, s := range scatters {
		ctx.defineScatterVar(scope, s, env)
	}

	for _, call := range calls {
		ctx.checkCallInputs(call, env)
	}
	for _, s := range scatters {
		ctx.checkScatterRange(s, env)
	}
	for _, c := range conditionals {
		ctx.checkConditional(c, env)
	}

	if out := wf.Output(); out != nil {
		for _, d := range out.Declarations() {
			ctx.defineAndCheckDeclaration(scope, d, true)
		}
	}

	ctx.checkAfterReferences(calls)
	ctx.checkNameResolution(wf.Syntax(), scope)
}

// defineAndCheckDeclaration binds d's name into scope and, when it carries
// an initializer, checks that the initializer's inferred type coerces to
// the declared type. requireInit additionally reports a missing
// initializer (every output declaration requires one; §4.6).
func (ctx *Context) defineAndCheckDeclaration(scope *Scope, d astview.Declaration, requireInit bool) {
	name := identNameOf(d.Syntax())
	if name == "" {
		return
	}
	declaredType := types.NoType
	if te := d.Type(); te != nil {
		declaredType = resolveTypeExpr(te.Syntax(), ctx.In, ctx.Named)
		if declaredType == types.NoType {
			if bare, ok := typeExprBareIdent(te); ok {
				ctx.report(te.Syntax(), "UnresolvedStruct", sevError, diag.SemaUnresolvedStruct, te.Syntax().Span(),
					"unresolved type \""+bare+"\"")
			}
		}
	}
	scope.DefineLocal(Symbol{Name: name, Kind: SymDeclaration, Type: declaredType, Node: d.Syntax()})

	init := d.Initializer()
	if init == nil {
		if requireInit {
			ctx.report(d.Syntax(), "MissingOutputInitializer", sevError, diag.SemaNonOptionalMissing, d.Syntax().Span(),
				"output \""+name+"\" must have an initializer")
		}
		return
	}
	env := &inferEnv{in: ctx.In, named: ctx.Named, scope: scope}
	checkPlaceholdersIn(ctx, init, env)
	initType := inferType(init, env)
	if declaredType != types.NoType && initType != types.NoType && !ctx.In.Coerce(initType, declaredType).Ok() {
		ctx.report(init, "TypeMismatch", sevError, diag.SemaTypeMismatch, init.Span(),
			"cannot assign "+ctx.In.Display(initType)+" to declared type "+ctx.In.Display(declaredType))
	}
}

func (ctx *Context) checkCallTarget(call astview.CallStatement) {
	target := ctx.resolveCallTarget(call.TargetName())
	if !target.ok() {
		ctx.report(call.Syntax(), "UnresolvedTask", sevError, diag.SemaUnresolvedTask, call.Syntax().Span(),
			"call target \""+call.TargetName()+"\" does not resolve to a task or workflow")
	}
}

// defineCallAlias binds a call statement's result name to a synthetic
// struct type whose fields mirror the target's declared outputs, so
// `alias.outputName` member access type-checks the same way a real struct
// field access does.
func (ctx *Context) defineCallAlias(scope *Scope, call astview.CallStatement) {
	name := callName(call)
	if name == "" {
		return
	}
	target := ctx.resolveCallTarget(call.TargetName())
	var fields []types.Field
	if target.ok() {
		fields = ctx.targetOutputFields(target)
	}
	t := ctx.In.Struct(syntheticCallTypeName(ctx.Doc.URI, name), fields)
	scope.DefineLocal(Symbol{Name: name, Kind: SymCallAlias, Type: t, Node: call.Syntax()})
}

// syntheticCallTypeName gives each call's output-bundle struct a name that
// cannot collide with a real struct defined anywhere in the graph.
func syntheticCallTypeName(docURI, callName string) string {
	return "$call:" + docURI + ":" + callName
}

func (ctx *Context) targetOutputFields(target callTarget) []types.Field {
	var out *astview.OutputSection
	if target.Task != nil {
		out = target.Task.Output()
	} else if target.Workflow != nil {
		out = target.Workflow.Output()
	}
	if out == nil || target.Doc == nil {
		return nil
	}
	named := ctx.AllNamed[target.Doc.URI]
	decls := out.Declarations()
	fields := make([]types.Field, 0, len(decls))
	for _, d := range decls {
		name := identNameOf(d.Syntax())
		t := types.NoType
		if te := d.Type(); te != nil {
			t = resolveTypeExpr(te.Syntax(), ctx.In, named)
		}
		fields = append(fields, types.Field{Name: name, Type: t})
	}
	return fields
}

func (ctx *Context) defineScatterVar(scope *Scope, scatterNode *cst.Node, env *inferEnv) {
	varName := scatterLoopVarName(scatterNode)
	if varName == "" {
		return
	}
	var elemType types.TypeID
	children := scatterNode.Children()
	if len(children) > 0 {
		rangeType := inferType(children[0], env)
		if t := ctx.In.Type(rangeType); t.Kind == types.KindArray {
			elemType = t.Elem
		}
	}
	if _, shadowed := scope.LookupOuter(varName); shadowed {
		ctx.report(scatterNode, "ScatterVarShadow", sevWarning, diag.SemaScatterVarShadow, scatterNode.Span(),
			"scatter variable \""+varName+"\" shadows an outer binding")
	}
	scope.DefineLocal(Symbol{Name: varName, Kind: SymScatterVar, Type: elemType, Node: scatterNode})
}

func (ctx *Context) targetInputDeclarations(target callTarget) (map[string]astview.Declaration, NamedTypes) {
	var in *astview.InputSection
	if target.Task != nil {
		in = target.Task.Input()
	} else if target.Workflow != nil {
		in = target.Workflow.Input()
	}
	var named NamedTypes
	if target.Doc != nil {
		named = ctx.AllNamed[target.Doc.URI]
	}
	out := make(map[string]astview.Declaration)
	if in == nil {
		return out, named
	}
	for _, d := range in.Declarations() {
		out[identNameOf(d.Syntax())] = d
	}
	return out, named
}

func (ctx *Context) checkCallInputs(call astview.CallStatement, env *inferEnv) {
	target := ctx.resolveCallTarget(call.TargetName())
	if !target.ok() {
		return
	}
	inputDecls, named := ctx.targetInputDeclarations(target)
	bound := make(map[string]bool, len(inputDecls))
	if inputs := call.Inputs(); inputs != nil {
		for _, b := range inputs.Bindings() {
			name := identNameOf(b.Syntax())
			if name == "" {
				continue
			}
			bound[name] = true
			decl, ok := inputDecls[name]
			if !ok {
				continue
			}
			value := bindingValue(b.Syntax())
			if value == nil {
				continue
			}
			checkPlaceholdersIn(ctx, value, env)
			declaredType := types.NoType
			if te := decl.Type(); te != nil {
				declaredType = resolveTypeExpr(te.Syntax(), ctx.In, named)
			}
			valType := inferType(value, env)
			if declaredType != types.NoType && valType != types.NoType && !ctx.In.Coerce(valType, declaredType).Ok() {
				ctx.report(value, "CallInputType", sevError, diag.SemaTypeMismatch, value.Span(),
					"input \""+name+"\" expects "+ctx.In.Display(declaredType)+", got "+ctx.In.Display(valType))
			}
		}
	}
	for name, decl := range inputDecls {
		if bound[name] {
			continue
		}
		te := decl.Type()
		optional := te != nil && te.IsOptional()
		hasDefault := decl.Initializer() != nil
		if !optional && !hasDefault {
			ctx.report(call.Syntax(), "NonOptionalMissing", sevError, diag.SemaNonOptionalMissing, call.Syntax().Span(),
				"missing required input \""+name+"\"")
		}
	}
}

func (ctx *Context) checkScatterRange(s *cst.Node, env *inferEnv) {
	children := s.Children()
	if len(children) == 0 {
		return
	}
	rangeExpr := children[0]
	checkPlaceholdersIn(ctx, rangeExpr, env)
	rt := inferType(rangeExpr, env)
	if rt == types.NoType {
		return
	}
	if ctx.In.Type(rt).Kind != types.KindArray {
		ctx.report(rangeExpr, "ScatterRangeType", sevError, diag.OrchScatterTypeMismatch, rangeExpr.Span(),
			"scatter() expression must be an Array, got "+ctx.In.Display(rt))
	}
}

func (ctx *Context) checkConditional(n *cst.Node, env *inferEnv) {
	children := n.Children()
	if len(children) == 0 {
		return
	}
	cond := children[0]
	checkPlaceholdersIn(ctx, cond, env)
	ct := inferType(cond, env)
	if ct == types.NoType {
		return
	}
	if ctx.In.WithoutOptional(ct) != ctx.In.Boolean() {
		ctx.report(cond, "ConditionalType", sevError, diag.SemaTypeMismatch, cond.Span(),
			"if condition must be Boolean, got "+ctx.In.Display(ct))
	}
}

func (ctx *Context) checkAfterReferences(calls []astview.CallStatement) {
	declared := make(map[string]bool, len(calls))
	for _, c := range calls {
		declared[callName(c)] = true
	}
	for _, c := range calls {
		for _, after := range c.Afters() {
			name := identNameOf(after.Syntax())
			if name == "" || declared[name] {
				continue
			}
			ctx.report(after.Syntax(), "AfterUndeclaredCall", sevError, diag.SemaAfterUndeclaredCall, after.Syntax().Span(),
				"'after' references undeclared call \""+name+"\"")
		}
	}
}

func (ctx *Context) checkNameResolution(root *cst.Node, scope *Scope) {
	for _, n := range root.Preorder() {
		if n.Kind() != cst.KindNameRef {
			continue
		}
		tok := n.FirstToken()
		if tok == nil {
			continue
		}
		if _, ok := scope.Lookup(tok.Text()); !ok {
			ctx.report(n, "UnresolvedName", sevError, diag.SemaUnresolvedName, n.Span(),
				"unresolved name \""+tok.Text()+"\"")
		}
	}
}

// checkPlaceholdersIn walks every Placeholder and stdlib call reachable
// from root (a command section, or an expression that might itself
// contain a string literal with interpolations or a function call) and
// validates placeholder options and call names/arities.
func checkPlaceholdersIn(ctx *Context, root *cst.Node, env *inferEnv) {
	if root == nil {
		return
	}
	for _, n := range root.Preorder() {
		switch n.Kind() {
		case cst.KindPlaceholder:
			ctx.checkPlaceholder(n, env)
		case cst.KindApplyExpr:
			ctx.checkApplyExpr(n)
		}
	}
}

// checkApplyExpr reports an unknown standard-library function name or a
// call with the wrong number of arguments (§4.7's fixed function table).
func (ctx *Context) checkApplyExpr(node *cst.Node) {
	name, args := applyNameAndArgs(node)
	if name == "" {
		return
	}
	fn, ok := stdlib.Lookup(name)
	if !ok {
		ctx.report(node, "UnknownFunction", sevError, diag.SemaUnknownFunction, node.Span(),
			"unknown function \""+name+"\"")
		return
	}
	if !fn.CheckArity(len(args)) {
		ctx.report(node, "WrongArgCount", sevError, diag.SemaWrongArgCount, node.Span(),
			"wrong number of arguments to \""+name+"\"")
	}
}

func (ctx *Context) checkPlaceholder(node *cst.Node, env *inferEnv) {
	v, ok := astview.Cast(node).(astview.Placeholder)
	if !ok {
		return
	}
	exprType := inferType(v.Expr(), env)

	var hasSep, hasDefault, hasTrue, hasFalse bool
	for _, opt := range v.Options() {
		switch opt.Name() {
		case "sep":
			hasSep = true
		case "default":
			hasDefault = true
		case "true":
			hasTrue = true
		case "false":
			hasFalse = true
		}
	}

	if hasSep && exprType != types.NoType {
		if ctx.In.Type(exprType).Kind != types.KindArray {
			ctx.report(node, "PlaceholderOption", sevError, diag.SemaTypeMismatch, node.Span(),
				"'sep' placeholder option requires an Array expression")
		}
	}
	if hasTrue != hasFalse {
		ctx.report(node, "PlaceholderOption", sevError, diag.SemaTypeMismatch, node.Span(),
			"'true' and 'false' placeholder options must both be present")
	}
	if (hasTrue || hasFalse) && exprType != types.NoType && ctx.In.WithoutOptional(exprType) != ctx.In.Boolean() {
		ctx.report(node, "PlaceholderOption", sevError, diag.SemaTypeMismatch, node.Span(),
			"'true'/'false' placeholder options require a Boolean expression")
	}
	if hasDefault && (hasTrue || hasFalse) {
		ctx.report(node, "PlaceholderOption", sevError, diag.SemaTypeMismatch, node.Span(),
			"'default' cannot be combined with 'true'/'false'")
	}
}
