// Package orchestrator implements the workflow orchestrator (§4.10):
// evaluating a workflow's scoped statements — declarations, conditionals,
// scatters, and calls — against the task execution pipeline (component H,
// internal/engine). No teacher file implements a workflow evaluator of any
// kind (the compiler stops at semantic analysis), so this package's shape
// is grounded directly on spec.md §4.10's statement-by-statement
// description, reusing internal/eval.Env for scoping exactly the way
// internal/engine's output evaluation already does, and
// internal/engine/pipeline.go's errgroup-bounded concurrent fan-out
// pattern (itself grounded on vovakirdan-surge's internal/driver/
// parallel.go) for scatter iterations and independent calls.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/docgraph"
	"wdlc/internal/engine"
	"wdlc/internal/eval"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// Orchestrator evaluates workflows defined in one document against a
// shared task execution Engine.
type Orchestrator struct {
	Engine      *engine.Engine
	Doc         *docgraph.Document
	Concurrency int // scatter/call batch concurrency bound at each nesting level

	interner *types.Interner
	paths    *workflowPaths
}

// New returns an Orchestrator for workflows in doc, running tasks through
// eng and staging workflow-level I/O (stdlib calls outside any task) under
// runRoot.
func New(eng *engine.Engine, doc *docgraph.Document, runRoot string, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		Engine:      eng,
		Doc:         doc,
		Concurrency: concurrency,
		interner:    types.NewInterner(),
		paths:       newWorkflowPaths(runRoot),
	}
}

// NewRunID returns a fresh identifier for one workflow invocation, used to
// label diagnostics and metrics; it plays no part in the call cache key
// (§4.9's key is purely a function of task inputs, not of which run
// invoked it).
func NewRunID() string { return uuid.NewString() }

// Run evaluates wf's body against inputs (already merged with any
// caller-supplied overrides) and returns its declared outputs. On
// cancellation or an unrecovered task failure, Run returns the partial
// output set computed before the failure alongside the error (§4.10
// "cancelled workflows report the partial set of outputs computed so far
// plus a diagnostic").
func (o *Orchestrator) Run(ctx context.Context, wf astview.WorkflowDefinition, inputs map[string]value.Value) (map[string]value.Value, error) {
	env := eval.NewEnv(o.interner, nil, o.paths, o.Doc.Version)
	for name, v := range inputs {
		env.Bind(name, v)
	}
	if in := wf.Input(); in != nil {
		for _, decl := range in.Declarations() {
			name := declName(decl)
			if name == "" {
				continue
			}
			if _, ok := env.Lookup(name); ok {
				continue
			}
			init := decl.Initializer()
			if init == nil {
				continue
			}
			v, err := eval.Eval(init, env)
			if err != nil {
				return nil, fmt.Errorf("workflow input %s: %w", name, err)
			}
			env.Bind(name, v)
		}
	}

	body := bodyStatements(wf.Syntax())
	if _, err := o.runBody(ctx, body, env); err != nil {
		return o.collectOutputs(wf, env), err
	}

	return o.collectOutputs(wf, env), nil
}

// collectOutputs evaluates wf's output section (if any) against env,
// binding each output alongside its declared body statements. Called both
// on success and on a partial/cancelled run, so an output referencing only
// variables bound before the failing statement still surfaces.
func (o *Orchestrator) collectOutputs(wf astview.WorkflowDefinition, env *eval.Env) map[string]value.Value {
	result := make(map[string]value.Value)
	out := wf.Output()
	if out == nil {
		return result
	}
	for _, decl := range out.Declarations() {
		name := declName(decl)
		if name == "" {
			continue
		}
		init := decl.Initializer()
		var v value.Value
		var ok bool
		if init != nil {
			var err error
			v, err = eval.Eval(init, env)
			if err != nil {
				continue
			}
			ok = true
		} else {
			v, ok = env.Lookup(name)
		}
		if !ok {
			continue
		}
		env.Bind(name, v)
		result[name] = v
	}
	return result
}

// bodyStatements returns n's direct Declaration/CallStatement/IfStatement/
// ScatterStatement children in document order, skipping input/output/meta
// sections (valid siblings at the workflow level but not executable
// statements).
func bodyStatements(n *cst.Node) []*cst.Node {
	var out []*cst.Node
	for _, c := range n.Children() {
		switch c.Kind() {
		case cst.KindDeclaration, cst.KindCallStatement, cst.KindIfStatement, cst.KindScatterStatement:
			out = append(out, c)
		}
	}
	return out
}

// runBody executes stmts against env in document order, returning the
// names newly bound directly in env by this body (for promotion/gathering
// by an enclosing conditional or scatter). Declarations evaluate inline;
// contiguous runs of call statements are batched and scheduled by their
// dependency graph (runCallBatch); if/scatter recurse.
func (o *Orchestrator) runBody(ctx context.Context, stmts []*cst.Node, env *eval.Env) ([]string, error) {
	var declared []string
	i := 0
	for i < len(stmts) {
		if ctx.Err() != nil {
			return declared, ctx.Err()
		}
		switch v := astview.Cast(stmts[i]).(type) {
		case astview.Declaration:
			name := declName(v)
			init := v.Initializer()
			if name != "" && init != nil {
				val, err := eval.Eval(init, env)
				if err != nil {
					return declared, fmt.Errorf("declaration %s: %w", name, err)
				}
				env.Bind(name, val)
				declared = append(declared, name)
			}
			i++
		case astview.CallStatement:
			j := i
			var batch []astview.CallStatement
			for j < len(stmts) {
				cs, ok := astview.Cast(stmts[j]).(astview.CallStatement)
				if !ok {
					break
				}
				batch = append(batch, cs)
				j++
			}
			names, err := o.runCallBatch(ctx, batch, env)
			declared = append(declared, names...)
			if err != nil {
				return declared, err
			}
			i = j
		case astview.IfStatement:
			names, err := o.runIf(ctx, v, env)
			declared = append(declared, names...)
			if err != nil {
				return declared, err
			}
			i++
		case astview.ScatterStatement:
			names, err := o.runScatter(ctx, v, env)
			declared = append(declared, names...)
			if err != nil {
				return declared, err
			}
			i++
		default:
			i++
		}
	}
	return declared, nil
}

// runIf implements §4.10's conditional: on a true condition, its body runs
// in a child scope and every name it declares is promoted into the outer
// scope holding that value; on false, the same names are promoted holding
// None. Either way the body's declared names become `T?` in the outer
// scope, per spec.
func (o *Orchestrator) runIf(ctx context.Context, s astview.IfStatement, env *eval.Env) ([]string, error) {
	children := s.Syntax().Children()
	if len(children) == 0 {
		return nil, nil
	}
	cond, err := eval.Eval(children[0], env)
	if err != nil {
		return nil, fmt.Errorf("if condition: %w", err)
	}
	bodyNodes := children[1:]

	if !cond.Bool() {
		names := collectDeclaredNames(bodyNodes)
		for _, name := range names {
			env.Bind(name, value.None())
		}
		return names, nil
	}

	child := env.Child()
	names, err := o.runBody(ctx, bodyNodes, child)
	for _, name := range names {
		v, ok := child.Lookup(name)
		if !ok {
			v = value.None()
		}
		env.Bind(name, v)
	}
	return names, err
}
