// Package docgraph models a WDL document graph (§3 "Document" and "Document
// graph"): one Document per parsed file, linked by import edges, with cycle
// detection and a topological analysis order. It is the data model the
// analyzer's work queue (internal/analyzer) walks.
package docgraph

import (
	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/lexer"
	"wdlc/internal/parser"
	"wdlc/internal/source"
	"wdlc/internal/token"
)

// ImportEdge is one `import "uri" [as namespace] [alias From as To]*` clause
// resolved against the document graph.
type ImportEdge struct {
	Path      string            // the literal import URI, exactly as written
	Namespace string            // the `as X` namespace, or the URI's file stem when absent
	Aliases   map[string]string // struct renames: From (imported doc's name) -> To (this doc's name)
	Span      source.Span
	Target    *Document // nil until resolved; stays nil if resolution failed
}

// Document is one analyzed WDL file: its parsed syntax, derived namespace
// table, and the diagnostics accumulated while building it (§3 "Document
// (analyzer view)").
type Document struct {
	URI     string
	File    *source.File
	Tree    *cst.Tree
	View    astview.Document
	Version string

	Imports []*ImportEdge

	StructNames   map[string]astview.StructDefinition
	EnumNames     map[string]astview.EnumDefinition
	TaskNames     map[string]astview.TaskDefinition
	WorkflowNames map[string]astview.WorkflowDefinition

	Diags *diag.Bag

	// inCycle is set by Graph.Analyze when this document participates in
	// an import cycle; its import edges keep their resolved Target, and
	// Analyze reports an import-cycle error on it and leaves it out of the
	// order it returns.
	inCycle bool
}

// InCycle reports whether this document was found to be part of an import
// cycle during the most recent Graph.Analyze call.
func (d *Document) InCycle() bool { return d.inCycle }

// parseDocument parses file's content into a Document, deriving its
// namespace table and import edges but not yet resolving them against the
// rest of the graph (§4.4's "no invalid source ever fails parsing": a
// Document is always produced, even for a file that is all errors).
func parseDocument(file *source.File, maxDiags int) *Document {
	bag := diag.NewBag(maxDiags)
	reporter := diag.BagReporter{Bag: bag}

	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	result := parser.ParseDocument(file, lx, parser.Options{Reporter: reporter})

	doc := &Document{
		URI:           file.Path,
		File:          file,
		Tree:          result.Tree,
		Diags:         bag,
		StructNames:   make(map[string]astview.StructDefinition),
		EnumNames:     make(map[string]astview.EnumDefinition),
		TaskNames:     make(map[string]astview.TaskDefinition),
		WorkflowNames: make(map[string]astview.WorkflowDefinition),
	}

	root := astview.Cast(result.Tree.Root())
	view, ok := root.(astview.Document)
	if !ok {
		return doc
	}
	doc.View = view

	if v := view.Version(); v != nil {
		doc.Version = v.VersionText()
	}
	for _, s := range view.Structs() {
		doc.StructNames[identName(s.Syntax())] = s
	}
	for _, e := range view.Enums() {
		doc.EnumNames[identName(e.Syntax())] = e
	}
	for _, t := range view.Tasks() {
		doc.TaskNames[identName(t.Syntax())] = t
	}
	for _, w := range view.Workflows() {
		doc.WorkflowNames[identName(w.Syntax())] = w
	}
	for _, imp := range view.Imports() {
		doc.Imports = append(doc.Imports, newImportEdge(imp))
	}
	return doc
}

// identName returns the first Ident token directly under n — the name that
// follows a defining keyword (struct/enum/task/workflow Name { ... }).
func identName(n *cst.Node) string {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.Ident {
			return e.Token.Text()
		}
	}
	return ""
}

// newImportEdge derives an unresolved ImportEdge from an import statement's
// syntax: the literal URI, the explicit or inferred namespace, and any
// `alias From as To` struct renames.
func newImportEdge(imp astview.ImportStatement) *ImportEdge {
	edge := &ImportEdge{
		Span:    imp.Syntax().Span(),
		Aliases: make(map[string]string),
	}
	if lit := imp.URI(); lit != nil {
		edge.Path = staticStringText(lit)
	}

	var idents []string
	for _, e := range imp.Syntax().ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.Ident {
			idents = append(idents, e.Token.Text())
		}
	}
	if len(idents) > 0 {
		edge.Namespace = idents[0]
	} else {
		edge.Namespace = namespaceFromPath(edge.Path)
	}

	for _, alias := range imp.Aliases() {
		var names []string
		for _, e := range alias.Syntax().ChildrenWithTokens() {
			if e.Token != nil && e.Token.Kind() == token.Ident {
				names = append(names, e.Token.Text())
			}
		}
		if len(names) == 2 {
			edge.Aliases[names[0]] = names[1]
		}
	}
	return edge
}

// staticStringText concatenates a string literal's StringText runs,
// ignoring any placeholders. Import URIs cannot contain placeholders, so a
// placeholder-bearing literal simply yields its literal runs verbatim.
func staticStringText(lit *cst.Node) string {
	var buf []byte
	for _, e := range lit.ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.StringText {
			buf = append(buf, e.Token.Text()...)
		}
	}
	return string(buf)
}

// namespaceFromPath derives the default import namespace from a URI's file
// stem (the part of the final path segment before its extension), WDL's
// fallback when an import has no explicit `as` clause.
func namespaceFromPath(path string) string {
	start := 0
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			start = i + 1
			break
		}
	}
	name := path[start:]
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}
