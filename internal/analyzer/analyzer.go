// Package analyzer implements the document analyzer's work queue (§4.6):
// add_documents/analyze/remove_documents/change_notification over an
// internal/docgraph.Graph, farming the CPU-bound parse step across a
// bounded worker pool.
package analyzer

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"wdlc/internal/diag"
	"wdlc/internal/docgraph"
	"wdlc/internal/sema"
	"wdlc/internal/types"
)

// Change is a document edit notification (§4.6 "change_notification"). A
// zero-value Change with no Range is a full-text refetch; a non-empty
// Range is an incremental edit. The analyzer's parser has no incremental
// re-parse mode (§4.4 does not ask for one), so both forms invalidate and
// fully re-parse the document; Range is carried for a future incremental
// parser and ignored today.
type Change struct {
	Content []byte
	Range   *TextRange
}

// TextRange is a half-open [Start, End) byte range within a document's
// previous text, describing what an incremental edit replaced.
type TextRange struct {
	Start, End uint32
}

// AnalysisResult is one document's outcome after a drained analyze() call.
type AnalysisResult struct {
	URI         string
	Document    *docgraph.Document
	Diagnostics []*diag.Diagnostic
	InCycle     bool
}

// ProgressFunc receives phase/completed/total updates as the queue drains
// (§4.6's progress callback); tag identifies the batch (e.g. the document
// URI currently finishing). A nil ProgressFunc disables reporting.
type ProgressFunc func(phase string, completed, total int, tag string)

// Analyzer owns a document graph and a queue of URIs pending (re)analysis.
// Per §3 "Analyzer state: owned by a single actor-like task", every
// exported method takes Analyzer's lock for its own duration — callers
// never hold a reference into graph state across calls.
type Analyzer struct {
	mu         sync.Mutex
	graph      *docgraph.Graph
	jobs       int
	pending    map[string]struct{}
	onProgress ProgressFunc
	types      *types.Interner
	rules      *sema.Registry
}

// New creates an Analyzer over graph. jobs <= 0 means
// runtime.GOMAXPROCS(0), mirroring the teacher's own worker-count default.
// The type interner and sema.Registry live for the Analyzer's whole
// lifetime, so a struct interned while analyzing one batch keeps the same
// TypeID across later Analyze calls (incremental edits re-intern the same
// names, not fresh ones).
func New(graph *docgraph.Graph, jobs int, onProgress ProgressFunc) *Analyzer {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{
		graph:      graph,
		jobs:       jobs,
		pending:    make(map[string]struct{}),
		onProgress: onProgress,
		types:      types.NewInterner(),
		rules:      sema.DefaultRegistry(),
	}
}

// AddDocuments resolves and parses each URI in contents, enqueuing it (and,
// once Resolve discovers them, every newly reachable import) for the next
// analyze() call (§4.6 "add_documents").
func (a *Analyzer) AddDocuments(ctx context.Context, contents map[string][]byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	uris := make([]string, 0, len(contents))
	for uri := range contents {
		uris = append(uris, uri)
	}
	sort.Strings(uris) // deterministic iteration despite the map above

	docs := make([]*docgraph.Document, len(uris))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(a.jobs, max(len(uris), 1)))
	for i, uri := range uris {
		g.Go(func(i int, uri string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				docs[i] = a.graph.Parse(uri, contents[uri])
				return nil
			}
		}(i, uri))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, uri := range uris {
		a.graph.Insert(docs[i])
		a.pending[uri] = struct{}{}
	}
	return nil
}

// RemoveDocuments drops uris from the graph (§4.6 "remove_documents").
// Import edges of other documents that point at a removed document keep
// their Target until the next Resolve reloads the imports.
func (a *Analyzer) RemoveDocuments(uris []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, uri := range uris {
		a.graph.Remove(uri)
		delete(a.pending, uri)
	}
}

// ChangeNotification applies change to uri and marks it (and every
// document reachable from the graph, since an edit can add or remove
// import edges) for re-analysis (§4.6 "change_notification").
func (a *Analyzer) ChangeNotification(uri string, change Change) {
	a.mu.Lock()
	defer a.mu.Unlock()
	doc := a.graph.Parse(uri, change.Content)
	a.graph.Insert(doc)
	for _, d := range a.graph.Documents() {
		a.pending[d.URI] = struct{}{}
	}
}

// Analyze blocks until the queue drains: it resolves every pending
// document's transitive imports, computes the document graph's cycle/order
// analysis, runs internal/sema's name-resolution and type-checking pass
// over the resulting topological order, and returns one AnalysisResult per
// document currently in the graph (§4.6 "analyze() -> [AnalysisResult]").
func (a *Analyzer) Analyze(ctx context.Context) ([]AnalysisResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := len(a.pending)
	a.report("resolve", 0, total, "")
	if err := a.graph.Resolve(); err != nil {
		return nil, err
	}
	a.report("resolve", total, total, "")

	docs := a.graph.Documents()
	a.report("order", 0, len(docs), "")
	order, _ := a.graph.Analyze()
	inCycle := make(map[string]bool, len(docs))
	for _, d := range docs {
		inCycle[d.URI] = d.InCycle()
	}
	a.report("order", len(docs), len(docs), "")

	a.report("sema", 0, len(order), "")
	sema.AnalyzeDocuments(order, a.types, a.rules)
	a.report("sema", len(order), len(order), "")

	results := make([]AnalysisResult, 0, len(docs))
	for i, d := range docs {
		a.report("collect", i, len(docs), d.URI)
		results = append(results, AnalysisResult{
			URI:         d.URI,
			Document:    d,
			Diagnostics: d.Diags.Items(),
			InCycle:     inCycle[d.URI],
		})
	}
	a.report("collect", len(docs), len(docs), "")

	a.pending = make(map[string]struct{})
	return results, nil
}

func (a *Analyzer) report(phase string, completed, total int, tag string) {
	if a.onProgress != nil {
		a.onProgress(phase, completed, total, tag)
	}
}
