package sema

import (
	"wdlc/internal/cst"
	"wdlc/internal/types"
)

// SymbolKind distinguishes how a name entered a Scope, for diagnostic
// wording (a scatter variable shadowing a declaration reads differently
// from two declarations with the same name).
type SymbolKind uint8

const (
	SymDeclaration SymbolKind = iota
	SymScatterVar
	SymCallAlias
)

// Symbol is one bound name visible inside a task or workflow body.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type types.TypeID
	Node *cst.Node
}

// Scope is a chain of local bindings (§4.6 "Build the scope" /
// "shadowing within the same scope is an error"). Each if/scatter body
// opens a child Scope so a redeclaration inside it can be told apart from
// a deliberate shadow of an outer binding.
type Scope struct {
	parent  *Scope
	symbols map[string]Symbol
}

// NewScope opens a scope nested under parent (nil for a task/workflow's
// top-level scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string]Symbol)}
}

// DefineLocal binds sym in this scope only, returning the symbol already
// bound to the same name in this same scope (a true duplicate), if any.
func (s *Scope) DefineLocal(sym Symbol) (Symbol, bool) {
	existing, ok := s.symbols[sym.Name]
	s.symbols[sym.Name] = sym
	return existing, ok
}

// LookupOuter looks up name starting at this scope's parent, skipping this
// scope itself — used to detect a new binding shadowing an enclosing one.
func (s *Scope) LookupOuter(name string) (Symbol, bool) {
	for cur := s.parent; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Lookup resolves name against this scope and every enclosing scope.
func (s *Scope) Lookup(name string) (Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}
