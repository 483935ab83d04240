package sema

import (
	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/docgraph"
	"wdlc/internal/source"
	"wdlc/internal/types"
)

// Context is the per-document state every Rule runs against: the document
// itself, its interned struct/enum table, and the type interner shared
// across the whole analysis run. AllNamed carries every already-analyzed
// document's NamedTypes, keyed by URI, so a call's input/output types can
// be resolved against the *target* document's own struct table rather than
// the calling document's.
type Context struct {
	Doc      *docgraph.Document
	In       *types.Interner
	Named    NamedTypes
	AllNamed map[string]NamedTypes
}

// report emits a suppressible diagnostic anchored at element, following
// the same §4.1 collector every other phase uses.
func (c *Context) report(element *cst.Node, rule string, sev diag.Severity, code diag.Code, span source.Span, msg string) {
	d := &diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: span, Rule: rule}
	c.Doc.Diags.ExceptableAdd(d, element, nil)
}

// callTarget is a resolved `call Target` / `call ns.Target` reference. Doc
// is the document the task/workflow was defined in (which may differ from
// the calling document), needed to resolve its declared input/output types
// against its own NamedTypes table rather than the caller's.
type callTarget struct {
	Doc      *docgraph.Document
	Task     *astview.TaskDefinition
	Workflow *astview.WorkflowDefinition
}

func (t callTarget) ok() bool { return t.Task != nil || t.Workflow != nil }

// resolveCallTarget resolves a (possibly namespace-qualified) call target
// name against doc's own definitions and its resolved imports.
func (c *Context) resolveCallTarget(name string) callTarget {
	ns, local := splitNamespace(name)
	doc := c.Doc
	if ns != "" {
		doc = nil
		for _, edge := range c.Doc.Imports {
			if edge.Namespace == ns && edge.Target != nil {
				doc = edge.Target
				break
			}
		}
		if doc == nil {
			return callTarget{}
		}
	}
	if t, ok := doc.TaskNames[local]; ok {
		tc := t
		return callTarget{Doc: doc, Task: &tc}
	}
	if w, ok := doc.WorkflowNames[local]; ok {
		wc := w
		return callTarget{Doc: doc, Workflow: &wc}
	}
	return callTarget{}
}

func splitNamespace(name string) (ns, local string) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}
