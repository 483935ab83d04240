package astview

import (
	"wdlc/internal/cst"
	"wdlc/internal/token"
)

func init() {
	register(cst.KindTaskDefinition, func(n *cst.Node) Node { return TaskDefinition{n} })
	register(cst.KindWorkflowDefinition, func(n *cst.Node) Node { return WorkflowDefinition{n} })
	register(cst.KindCallStatement, func(n *cst.Node) Node { return CallStatement{n} })
	register(cst.KindCallAfter, func(n *cst.Node) Node { return CallAfter{n} })
	register(cst.KindCallInputs, func(n *cst.Node) Node { return CallInputs{n} })
	register(cst.KindCallInput, func(n *cst.Node) Node { return CallInput{n} })
	register(cst.KindIfStatement, func(n *cst.Node) Node { return IfStatement{n} })
	register(cst.KindScatterStatement, func(n *cst.Node) Node { return ScatterStatement{n} })
}

// TaskDefinition is the view over `task Name { ... }`.
type TaskDefinition struct{ n *cst.Node }

func (t TaskDefinition) Syntax() *cst.Node { return t.n }

func (t TaskDefinition) Input() *InputSection {
	return castFirst[InputSection](t.n, cst.KindInputSection)
}

func (t TaskDefinition) Output() *OutputSection {
	return castFirst[OutputSection](t.n, cst.KindOutputSection)
}

func (t TaskDefinition) Command() *CommandSection {
	return castFirst[CommandSection](t.n, cst.KindCommandSection)
}

func (t TaskDefinition) Runtime() *cst.Node {
	return firstChildOfKind(t.n, cst.KindRuntimeSection)
}

func (t TaskDefinition) Requirements() *cst.Node {
	return firstChildOfKind(t.n, cst.KindRequirementsSection)
}

func (t TaskDefinition) Hints() *cst.Node {
	return firstChildOfKind(t.n, cst.KindHintsSection)
}

func (t TaskDefinition) Meta() *cst.Node {
	return firstChildOfKind(t.n, cst.KindMetaSection)
}

func (t TaskDefinition) ParameterMeta() *cst.Node {
	return firstChildOfKind(t.n, cst.KindParameterMetaSection)
}

// castFirst casts the first direct child of kind k to T, or returns nil.
func castFirst[T any](n *cst.Node, k cst.Kind) *T {
	c := firstChildOfKind(n, k)
	if c == nil {
		return nil
	}
	v := Cast(c)
	typed, ok := v.(T)
	if !ok {
		return nil
	}
	return &typed
}

// WorkflowDefinition is the view over `workflow Name { ... }`.
type WorkflowDefinition struct{ n *cst.Node }

func (w WorkflowDefinition) Syntax() *cst.Node { return w.n }

func (w WorkflowDefinition) Input() *InputSection {
	return castFirst[InputSection](w.n, cst.KindInputSection)
}

func (w WorkflowDefinition) Output() *OutputSection {
	return castFirst[OutputSection](w.n, cst.KindOutputSection)
}

func (w WorkflowDefinition) Meta() *cst.Node {
	return firstChildOfKind(w.n, cst.KindMetaSection)
}

func (w WorkflowDefinition) ParameterMeta() *cst.Node {
	return firstChildOfKind(w.n, cst.KindParameterMetaSection)
}

// Calls returns every call statement directly inside this workflow's body
// (not ones nested under if/scatter; use Preorder on Syntax() for those).
func (w WorkflowDefinition) Calls() []CallStatement {
	return castAll[CallStatement](childrenOfKind(w.n, cst.KindCallStatement))
}

// CallStatement is the view over `call Target [as alias] [after x]* [{ input: ... }]`.
type CallStatement struct{ n *cst.Node }

func (c CallStatement) Syntax() *cst.Node { return c.n }

func (c CallStatement) Afters() []CallAfter {
	return castAll[CallAfter](childrenOfKind(c.n, cst.KindCallAfter))
}

func (c CallStatement) Inputs() *CallInputs {
	return castFirst[CallInputs](c.n, cst.KindCallInputs)
}

// TargetName reconstructs the (possibly namespace-qualified) call target's
// own text from its leading identifier/dot tokens, stopping at the first
// 'as'/'after'/'{' keyword or the node's own closing boundary.
func (c CallStatement) TargetName() string {
	var out string
	for _, e := range c.n.ChildrenWithTokens() {
		if e.Token == nil {
			continue
		}
		switch e.Token.Kind() {
		case token.Ident, token.Dot:
			out += e.Token.Text()
		case token.KwAs, token.KwAfter, token.LBrace:
			return out
		}
	}
	return out
}

// CallAfter is the view over one `after name` clause.
type CallAfter struct{ n *cst.Node }

func (a CallAfter) Syntax() *cst.Node { return a.n }

// CallInputs is the view over a call's `{ input: name = expr, ... }` body.
type CallInputs struct{ n *cst.Node }

func (i CallInputs) Syntax() *cst.Node { return i.n }

func (i CallInputs) Bindings() []CallInput {
	return castAll[CallInput](childrenOfKind(i.n, cst.KindCallInput))
}

// CallInput is the view over one `name [= expr]` binding in a call body.
type CallInput struct{ n *cst.Node }

func (b CallInput) Syntax() *cst.Node { return b.n }

// IfStatement is the view over `if (cond) { workflowMember* }`.
type IfStatement struct{ n *cst.Node }

func (s IfStatement) Syntax() *cst.Node { return s.n }

// ScatterStatement is the view over `scatter (x in expr) { workflowMember* }`.
type ScatterStatement struct{ n *cst.Node }

func (s ScatterStatement) Syntax() *cst.Node { return s.n }
