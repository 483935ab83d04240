// Package sema implements the document analyzer's name-resolution and
// type-checking pass (§4.6, second half): given a document graph already
// parsed and ordered by internal/docgraph, it builds each document's scope,
// resolves every name reference, and type-checks declarations, calls,
// outputs, scatter ranges, conditionals, placeholder options, and command
// section interpolations, reporting through the suppression-aware collector
// (§4.1).
package sema

import "wdlc/internal/diag"

// Rule is one independent validation concern run over a single document.
// Splitting the pass into small rules, each naming its own diagnostics for
// suppression, mirrors the teacher's approach of one focused check per
// pass rather than a single monolithic visitor.
type Rule interface {
	// Name identifies the rule for diagnostics and logging; it is not the
	// same as the suppression rule name carried by individual diagnostics,
	// since one Rule may emit several distinct suppressible rule names.
	Name() string
	Check(ctx *Context)
}

// Registry is an ordered collection of Rules run once per document.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a Registry over the given rules, run in order.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: append([]Rule(nil), rules...)}
}

// Add appends a rule to the registry.
func (r *Registry) Add(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Run executes every registered rule against ctx.
func (r *Registry) Run(ctx *Context) {
	for _, rule := range r.rules {
		rule.Check(ctx)
	}
}

// DefaultRegistry returns the built-in rule set implementing §4.6's
// name-resolution and type-checking bullet list.
func DefaultRegistry() *Registry {
	return NewRegistry(
		ruleDuplicateImportNamespace{},
		ruleEmptyStruct{},
		ruleAtMostOneWorkflow{},
		ruleDuplicateStructMember{},
		ruleDuplicateDeclaration{},
		ruleDuplicateCallName{},
		ruleDuplicateCallInput{},
		ruleScopedAnalysis{},
	)
}

// sevError/sevWarning are short aliases so rule files don't each import
// internal/diag's Severity constants under a different local name.
const (
	sevError   = diag.SevError
	sevWarning = diag.SevWarning
)
