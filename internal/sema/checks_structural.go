package sema

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
)

// These rules check document-level and declaration-level structural
// constraints that don't need a scope: at most one of something, no
// duplicate name in a flat list. Grounded on wdl-ast's counts.rs
// (CountingVisitor), generalized from its per-document tallies to our
// own diagnostic shape.

type ruleDuplicateImportNamespace struct{}

func (ruleDuplicateImportNamespace) Name() string { return "duplicate-import-namespace" }

func (ruleDuplicateImportNamespace) Check(ctx *Context) {
	views := ctx.Doc.View.Imports()
	seen := make(map[string]bool, len(ctx.Doc.Imports))
	for i, edge := range ctx.Doc.Imports {
		if edge.Namespace == "" {
			continue
		}
		var elem *cst.Node
		if i < len(views) {
			elem = views[i].Syntax()
		}
		if seen[edge.Namespace] {
			ctx.report(elem, "DuplicateImportNamespace", sevError, diag.SemaDuplicateImportNamespace, edge.Span,
				"duplicate import namespace \""+edge.Namespace+"\"")
			continue
		}
		seen[edge.Namespace] = true
	}
}

type ruleEmptyStruct struct{}

func (ruleEmptyStruct) Name() string { return "empty-struct" }

func (ruleEmptyStruct) Check(ctx *Context) {
	for _, s := range ctx.Doc.View.Structs() {
		if len(s.Members()) == 0 {
			ctx.report(s.Syntax(), "EmptyStruct", sevError, diag.SemaEmptyStruct, s.Syntax().Span(),
				"struct \""+identNameOf(s.Syntax())+"\" must declare at least one member")
		}
	}
}

type ruleAtMostOneWorkflow struct{}

func (ruleAtMostOneWorkflow) Name() string { return "at-most-one-workflow" }

func (ruleAtMostOneWorkflow) Check(ctx *Context) {
	wfs := ctx.Doc.View.Workflows()
	for i := 1; i < len(wfs); i++ {
		ctx.report(wfs[i].Syntax(), "MultipleWorkflows", sevError, diag.SemaMultipleWorkflows, wfs[i].Syntax().Span(),
			"a document may declare at most one workflow")
	}
}

type ruleDuplicateStructMember struct{}

func (ruleDuplicateStructMember) Name() string { return "duplicate-struct-member" }

func (ruleDuplicateStructMember) Check(ctx *Context) {
	for _, s := range ctx.Doc.View.Structs() {
		seen := make(map[string]bool)
		for _, m := range s.Members() {
			name := identNameOf(m.Syntax())
			if name == "" {
				continue
			}
			if seen[name] {
				ctx.report(m.Syntax(), "DuplicateStructMember", sevError, diag.SemaDuplicateStructMember, m.Syntax().Span(),
					"duplicate member \""+name+"\" in struct \""+identNameOf(s.Syntax())+"\"")
				continue
			}
			seen[name] = true
		}
	}
}

// ruleDuplicateDeclaration enforces a single flat namespace across a
// task/workflow's input, private, and output declarations combined — WDL
// treats all three as one scope, so the same name cannot appear twice
// anywhere among them.
type ruleDuplicateDeclaration struct{}

func (ruleDuplicateDeclaration) Name() string { return "duplicate-declaration" }

func (ruleDuplicateDeclaration) Check(ctx *Context) {
	for _, t := range ctx.Doc.View.Tasks() {
		var decls []*cst.Node
		if in := t.Input(); in != nil {
			for _, d := range in.Declarations() {
				decls = append(decls, d.Syntax())
			}
		}
		decls = append(decls, directDeclarations(t.Syntax())...)
		if out := t.Output(); out != nil {
			for _, d := range out.Declarations() {
				decls = append(decls, d.Syntax())
			}
		}
		reportDuplicateNames(ctx, decls)
	}
	for _, w := range ctx.Doc.View.Workflows() {
		var decls []*cst.Node
		if in := w.Input(); in != nil {
			for _, d := range in.Declarations() {
				decls = append(decls, d.Syntax())
			}
		}
		walkWorkflowBody(w.Syntax(), func(n *cst.Node) {
			if n.Kind() == cst.KindDeclaration {
				decls = append(decls, n)
			}
		})
		if out := w.Output(); out != nil {
			for _, d := range out.Declarations() {
				decls = append(decls, d.Syntax())
			}
		}
		reportDuplicateNames(ctx, decls)
	}
}

func reportDuplicateNames(ctx *Context, decls []*cst.Node) {
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		name := identNameOf(d)
		if name == "" {
			continue
		}
		if seen[name] {
			ctx.report(d, "DuplicateDeclaration", sevError, diag.SemaDuplicateInput, d.Span(),
				"duplicate declaration \""+name+"\" in this scope")
			continue
		}
		seen[name] = true
	}
}

type ruleDuplicateCallName struct{}

func (ruleDuplicateCallName) Name() string { return "duplicate-call-name" }

func (ruleDuplicateCallName) Check(ctx *Context) {
	for _, w := range ctx.Doc.View.Workflows() {
		seen := make(map[string]bool)
		walkWorkflowBody(w.Syntax(), func(n *cst.Node) {
			if n.Kind() != cst.KindCallStatement {
				return
			}
			v, ok := castCallStatement(n)
			if !ok {
				return
			}
			name := callName(v)
			if name == "" {
				return
			}
			if seen[name] {
				ctx.report(n, "DuplicateCallName", sevError, diag.SemaDuplicateCallName, n.Span(),
					"duplicate call name \""+name+"\" in this workflow")
				return
			}
			seen[name] = true
		})
	}
}

type ruleDuplicateCallInput struct{}

func (ruleDuplicateCallInput) Name() string { return "duplicate-call-input" }

func (ruleDuplicateCallInput) Check(ctx *Context) {
	for _, w := range ctx.Doc.View.Workflows() {
		walkWorkflowBody(w.Syntax(), func(n *cst.Node) {
			if n.Kind() != cst.KindCallStatement {
				return
			}
			v, ok := castCallStatement(n)
			if !ok {
				return
			}
			inputs := v.Inputs()
			if inputs == nil {
				return
			}
			seen := make(map[string]bool)
			for _, b := range inputs.Bindings() {
				name := identNameOf(b.Syntax())
				if name == "" {
					continue
				}
				if seen[name] {
					ctx.report(b.Syntax(), "DuplicateCallInput", sevError, diag.SemaDuplicateCallInput, b.Syntax().Span(),
						"duplicate input binding \""+name+"\"")
					continue
				}
				seen[name] = true
			}
		})
	}
}
