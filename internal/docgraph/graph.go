package docgraph

import (
	"fmt"
	"sort"

	"wdlc/internal/diag"
	"wdlc/internal/source"
)

// Loader resolves an import path, relative to the importing document's URI,
// into the bytes of the target document. Graph is agnostic to where those
// bytes come from (local filesystem, an in-memory fixture, a virtual
// FileSet entry); the caller supplies this per §3's "Document graph" being
// independent of any single storage backend.
type Loader func(fromURI, importPath string) (resolvedURI string, content []byte, err error)

// Graph is a document graph (§3): documents linked by import edges, with
// cycle detection and a stable topological analysis order.
type Graph struct {
	fileSet   *source.FileSet
	loader    Loader
	maxDiags  int
	documents map[string]*Document // by URI
	order     []string             // insertion order, for deterministic iteration
}

// NewGraph creates an empty Graph. fileSet backs every Document's
// source.File; loader supplies the bytes behind each import edge.
func NewGraph(fileSet *source.FileSet, loader Loader, maxDiags int) *Graph {
	return &Graph{
		fileSet:   fileSet,
		loader:    loader,
		maxDiags:  maxDiags,
		documents: make(map[string]*Document),
	}
}

// Get returns the document already loaded under uri, if any.
func (g *Graph) Get(uri string) (*Document, bool) {
	d, ok := g.documents[uri]
	return d, ok
}

// Documents returns every document currently in the graph, in the order
// they were first added.
func (g *Graph) Documents() []*Document {
	out := make([]*Document, 0, len(g.order))
	for _, uri := range g.order {
		out = append(out, g.documents[uri])
	}
	return out
}

// AddRoot parses content under uri and adds it to the graph as a root
// document (one the caller asked to analyze directly, as opposed to one
// pulled in transitively via an import). Re-adding the same uri replaces
// the previous Document (§3 "change_notification" re-parses on edit).
func (g *Graph) AddRoot(uri string, content []byte) *Document {
	doc := g.Parse(uri, content)
	g.Insert(doc)
	return doc
}

// Parse parses content under uri into a Document without touching the
// graph, so a caller (internal/analyzer's parallel work queue) can parse a
// batch of roots concurrently before inserting them one at a time.
func (g *Graph) Parse(uri string, content []byte) *Document {
	file := g.fileSet.Get(g.fileSet.Add(uri, content, 0))
	doc := parseDocument(file, g.maxDiags)
	doc.URI = uri
	return doc
}

// Insert adds an already-parsed Document to the graph, replacing any
// earlier document at the same URI. Not safe for concurrent use; callers
// parsing a batch with Parse must Insert sequentially.
func (g *Graph) Insert(doc *Document) {
	if _, existed := g.documents[doc.URI]; !existed {
		g.order = append(g.order, doc.URI)
	}
	g.documents[doc.URI] = doc
}

// Remove drops uri from the graph (§4.6 "remove_documents"). Other
// documents' ImportEdge.Target pointers into it are left dangling but
// harmless: the next Resolve pass re-walks every edge.
func (g *Graph) Remove(uri string) {
	delete(g.documents, uri)
	for i, u := range g.order {
		if u == uri {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Resolve walks every document's import edges, loading and parsing any
// transitively-imported document not already in the graph, until no new
// imports remain to discover (§4.6's reachability closure). It reports a
// ProjMissingDocument diagnostic (on the importing document) for an import
// the Loader cannot resolve, and leaves that edge's Target nil.
func (g *Graph) Resolve() error {
	pending := append([]string(nil), g.order...)
	for len(pending) > 0 {
		uri := pending[0]
		pending = pending[1:]
		doc, ok := g.documents[uri]
		if !ok {
			continue
		}
		for _, edge := range doc.Imports {
			resolvedURI, content, err := g.loader(doc.URI, edge.Path)
			if err != nil {
				diag.ReportError(diag.BagReporter{Bag: doc.Diags}, diag.ProjMissingDocument, edge.Span,
					fmt.Sprintf("cannot resolve import %q: %v", edge.Path, err)).Emit()
				continue
			}
			target, existed := g.documents[resolvedURI]
			if !existed {
				file := g.fileSet.Get(g.fileSet.Add(resolvedURI, content, 0))
				target = parseDocument(file, g.maxDiags)
				target.URI = resolvedURI
				g.documents[resolvedURI] = target
				g.order = append(g.order, resolvedURI)
				pending = append(pending, resolvedURI)
			}
			edge.Target = target
		}
	}
	return nil
}

// Analyze detects import cycles and computes a topological analysis order
// (§3 "Document graph" invariants). Documents in a cycle are marked via
// Document.InCycle and get a ProjImportCycle diagnostic; order omits them,
// since no acyclic placement would be valid for every one of them.
func (g *Graph) Analyze() (order []*Document, cyclic bool) {
	indeg := make(map[string]int, len(g.order))
	for _, uri := range g.order {
		indeg[uri] = 0
	}
	for _, uri := range g.order {
		doc := g.documents[uri]
		for _, edge := range doc.Imports {
			if edge.Target != nil {
				indeg[uri]++
			}
		}
	}

	ready := make([]string, 0, len(g.order))
	for _, uri := range g.order {
		if indeg[uri] == 0 {
			ready = append(ready, uri)
		}
	}
	sort.Strings(ready)

	visited := 0
	for len(ready) > 0 {
		next := make([]string, 0)
		for _, uri := range ready {
			order = append(order, g.documents[uri])
			visited++
			for _, other := range g.order {
				od := g.documents[other]
				for _, edge := range od.Imports {
					if edge.Target != nil && edge.Target.URI == uri {
						indeg[other]--
						if indeg[other] == 0 {
							next = append(next, other)
						}
					}
				}
			}
		}
		sort.Strings(next)
		ready = next
	}

	if visited != len(g.order) {
		cyclic = true
		for _, uri := range g.order {
			if indeg[uri] > 0 {
				doc := g.documents[uri]
				doc.inCycle = true
				diag.ReportError(diag.BagReporter{Bag: doc.Diags}, diag.ProjImportCycle, doc.Tree.Root().Span(),
					"document participates in an import cycle").Emit()
			}
		}
	}
	return order, cyclic
}
