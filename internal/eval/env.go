// Package eval implements WDL's expression evaluator and standard library
// dispatch (§4.7): given a typed AST expression and a scope, it returns a
// runtime value or a runtime error. Evaluation is eager; `&&`/`||` short-
// circuit. String and command-section placeholders render through the same
// evaluator, applying `default`/`sep`/`true`/`false` options in that order.
package eval

import (
	"wdlc/internal/stdlib"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// Paths is the evaluator's path-resolution context, implementing
// stdlib.Env so the same Env value drives both expression evaluation and
// stdlib I/O functions. A task execution (internal/engine) supplies a
// Paths rooted at its working directory; analysis-only evaluation (e.g.
// default-value checks with no task around it) can supply one that errors
// on every I/O method.
type Paths interface {
	ResolvePath(path string) string
	Glob(pattern string) ([]string, error)
	ReadFile(path string) (string, error)
	WriteFile(content string) (string, error)
	Stat(path string) (int64, error)
}

// Env is the expression evaluator's scope: a chain of bound values (one
// link per task/workflow body, if-branch, or scatter iteration — mirroring
// internal/sema.Scope's parent-chain shape), the shared type interner, the
// document's struct/enum table, and the path-resolution context the
// standard library's I/O functions run against.
type Env struct {
	in      *types.Interner
	named   map[string]types.TypeID
	parent  *Env
	vars    map[string]value.Value
	paths   Paths
	version string
}

// NewEnv creates a root Env with no bindings.
func NewEnv(in *types.Interner, named map[string]types.TypeID, paths Paths, version string) *Env {
	return &Env{in: in, named: named, vars: make(map[string]value.Value), paths: paths, version: version}
}

// Child opens a nested Env (an if-branch or one scatter iteration) whose
// lookups fall back to e.
func (e *Env) Child() *Env {
	return &Env{in: e.in, named: e.named, parent: e, vars: make(map[string]value.Value), paths: e.paths, version: e.version}
}

// Bind binds name to v in this Env only.
func (e *Env) Bind(name string, v value.Value) { e.vars[name] = v }

// Lookup resolves name against this Env and every enclosing one.
func (e *Env) Lookup(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

func (e *Env) Interner() *types.Interner { return e.in }

// --- stdlib.Env ---

func (e *Env) ResolvePath(path string) string { return e.paths.ResolvePath(path) }
func (e *Env) Glob(pattern string) ([]string, error) {
	return e.paths.Glob(pattern)
}
func (e *Env) ReadFile(path string) (string, error)   { return e.paths.ReadFile(path) }
func (e *Env) WriteFile(content string) (string, error) { return e.paths.WriteFile(content) }
func (e *Env) Stat(path string) (int64, error)         { return e.paths.Stat(path) }

var _ stdlib.Env = (*Env)(nil)
