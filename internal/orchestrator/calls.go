package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"wdlc/internal/astview"
	"wdlc/internal/engine"
	"wdlc/internal/eval"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// runScatter implements §4.10's scatter: the body runs once per element of
// the source array, each iteration in its own child scope with the loop
// variable bound, and every name the body declares is gathered into an
// Array (in the source array's order) bound in the outer scope under its
// unmodified name as Array[T]. Iterations run concurrently, bounded by
// o.Concurrency via errgroup, mirroring internal/engine/pipeline.go's
// stageInputs fan-out. A nested ScatterStatement builds its own
// independently-bounded errgroup, so N nesting levels naturally cap total
// in-flight work at Concurrency^N.
func (o *Orchestrator) runScatter(ctx context.Context, s astview.ScatterStatement, env *eval.Env) ([]string, error) {
	children := s.Syntax().Children()
	if len(children) == 0 {
		return nil, nil
	}
	arr, err := eval.Eval(children[0], env)
	if err != nil {
		return nil, fmt.Errorf("scatter source: %w", err)
	}
	bodyNodes := children[1:]
	loopVar := scatterVarName(s)
	elems := arr.Elements()

	perIter := make([]map[string]value.Value, len(elems))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)
	for i, elem := range elems {
		i, elem := i, elem
		g.Go(func() error {
			child := env.Child()
			child.Bind(loopVar, elem)
			declared, err := o.runBody(gctx, bodyNodes, child)
			if err != nil {
				return err
			}
			result := make(map[string]value.Value, len(declared))
			for _, name := range declared {
				v, ok := child.Lookup(name)
				if !ok {
					v = value.None()
				}
				result[name] = v
			}
			perIter[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := collectDeclaredNames(bodyNodes)
	for _, name := range names {
		gathered := make([]value.Value, len(elems))
		for i, result := range perIter {
			if result != nil {
				gathered[i] = result[name]
			} else {
				gathered[i] = value.None()
			}
		}
		env.Bind(name, value.Array(types.NoType, gathered))
	}
	return names, nil
}

// runCallBatch schedules a contiguous run of call statements (the only
// source of real concurrency in a workflow body) by their dependency
// graph: explicit `after` clauses plus any reference, inside a call's own
// input expressions, to another call in the same batch. Calls are layered
// into waves by Kahn's algorithm; within a wave, calls run concurrently
// doing only reads against env (evaluating inputs, dispatching); results
// are bound into env sequentially, in the calling goroutine, once the
// whole wave finishes — eval.Env.Bind has no internal locking, so binds
// must never race a concurrent Bind or Lookup on the same Env.
func (o *Orchestrator) runCallBatch(ctx context.Context, batch []astview.CallStatement, env *eval.Env) ([]string, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	bindingOf := make([]string, len(batch))
	scope := make(map[string]bool, len(batch))
	for i, cs := range batch {
		name := callBindingName(cs)
		bindingOf[i] = name
		scope[name] = true
	}

	deps := make([]map[string]bool, len(batch))
	indegree := make([]int, len(batch))
	dependents := make(map[string][]int, len(batch))
	for i, cs := range batch {
		deps[i] = callDependencyNames(cs, scope)
		delete(deps[i], bindingOf[i])
		for dep := range deps[i] {
			indegree[i]++
			dependents[dep] = append(dependents[dep], i)
		}
	}

	var declared []string
	done := make([]bool, len(batch))
	remaining := len(batch)
	for remaining > 0 {
		var wave []int
		for i := range batch {
			if !done[i] && indegree[i] == 0 {
				wave = append(wave, i)
			}
		}
		if len(wave) == 0 {
			return declared, fmt.Errorf("call dependency cycle among %v", bindingOf)
		}

		results := make([]map[string]value.Value, len(wave))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.Concurrency)
		for slot, idx := range wave {
			slot, idx := slot, idx
			g.Go(func() error {
				out, err := o.dispatchCall(gctx, batch[idx], env)
				if err != nil {
					return fmt.Errorf("call %s: %w", bindingOf[idx], err)
				}
				results[slot] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return declared, err
		}

		for slot, idx := range wave {
			env.Bind(bindingOf[idx], value.Object(results[slot]))
			declared = append(declared, bindingOf[idx])
			done[idx] = true
			remaining--
		}
		for _, idx := range wave {
			for _, dependent := range dependents[bindingOf[idx]] {
				indegree[dependent]--
			}
		}
	}
	return declared, nil
}

// dispatchCall evaluates a call statement's input bindings against env and
// runs it (as a task through o.Engine, or recursively as a sub-workflow
// through o.Run), returning its output map. Only same-document,
// unqualified call targets are resolved; namespace-qualified targets from
// imported documents are not yet supported.
func (o *Orchestrator) dispatchCall(ctx context.Context, cs astview.CallStatement, env *eval.Env) (map[string]value.Value, error) {
	target := cs.TargetName()

	explicit := make(map[string]value.Value)
	if inputs := cs.Inputs(); inputs != nil {
		for _, ci := range inputs.Bindings() {
			name := callInputName(ci)
			if name == "" {
				continue
			}
			if expr := callInputValue(ci); expr != nil {
				v, err := eval.Eval(expr, env)
				if err != nil {
					return nil, fmt.Errorf("input %s: %w", name, err)
				}
				explicit[name] = v
				continue
			}
			v, ok := env.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("input %s: shorthand binding has no matching name in scope", name)
			}
			explicit[name] = v
		}
	}

	if task, ok := o.Doc.TaskNames[target]; ok {
		return o.dispatchTaskCall(ctx, target, task, explicit)
	}
	if wf, ok := o.Doc.WorkflowNames[target]; ok {
		return o.Run(ctx, wf, explicit)
	}
	return nil, fmt.Errorf("call target %q not found", target)
}

// dispatchTaskCall builds a task-scoped Env seeded with explicit, applies
// the task's own unfilled input defaults, and runs it through the engine.
func (o *Orchestrator) dispatchTaskCall(ctx context.Context, name string, task astview.TaskDefinition, explicit map[string]value.Value) (map[string]value.Value, error) {
	taskEnv := eval.NewEnv(o.interner, nil, o.paths, o.Doc.Version)
	for k, v := range explicit {
		taskEnv.Bind(k, v)
	}
	if in := task.Input(); in != nil {
		for _, decl := range in.Declarations() {
			dname := declName(decl)
			if dname == "" {
				continue
			}
			if _, ok := taskEnv.Lookup(dname); ok {
				continue
			}
			init := decl.Initializer()
			if init == nil {
				continue
			}
			v, err := eval.Eval(init, taskEnv)
			if err != nil {
				return nil, fmt.Errorf("task %s input %s: %w", name, dname, err)
			}
			taskEnv.Bind(dname, v)
		}
	}

	spec := engine.TaskSpec{Name: name, Task: task, Env: taskEnv, Inputs: explicit}
	return o.Engine.RunTask(ctx, spec)
}
