package docgraph_test

import (
	"errors"
	"fmt"
	"testing"

	"wdlc/internal/docgraph"
	"wdlc/internal/source"
)

func newFixture() (*docgraph.Graph, *source.FileSet, map[string][]byte) {
	files := map[string][]byte{
		"main.wdl": []byte("version 1.2\nimport \"lib.wdl\" as lib\n"),
		"lib.wdl":  []byte("version 1.2\nstruct Point { Int x }\n"),
	}
	fs := source.NewFileSet()
	loader := func(fromURI, importPath string) (string, []byte, error) {
		content, ok := files[importPath]
		if !ok {
			return "", nil, fmt.Errorf("no such file: %s", importPath)
		}
		return importPath, content, nil
	}
	return docgraph.NewGraph(fs, loader, 64), fs, files
}

func TestResolveDiscoversTransitiveImports(t *testing.T) {
	g, _, files := newFixture()
	g.AddRoot("main.wdl", files["main.wdl"])
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	main, ok := g.Get("main.wdl")
	if !ok {
		t.Fatal("expected main.wdl in graph")
	}
	if len(main.Imports) != 1 {
		t.Fatalf("expected 1 import edge, got %d", len(main.Imports))
	}
	edge := main.Imports[0]
	if edge.Namespace != "lib" {
		t.Errorf("Namespace = %q, want %q", edge.Namespace, "lib")
	}
	if edge.Target == nil {
		t.Fatal("expected import to resolve to a Document")
	}
	if _, ok := edge.Target.StructNames["Point"]; !ok {
		t.Error("expected lib.wdl's Point struct to be visible on the resolved target")
	}
}

func TestResolveReportsMissingImport(t *testing.T) {
	g, _, _ := newFixture()
	g.AddRoot("main.wdl", []byte("version 1.2\nimport \"missing.wdl\"\n"))
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	main, _ := g.Get("main.wdl")
	if !main.Diags.HasErrors() {
		t.Fatal("expected a ProjMissingDocument diagnostic for an unresolvable import")
	}
	if main.Imports[0].Target != nil {
		t.Fatal("expected unresolved import edge to have a nil Target")
	}
}

func TestAnalyzeDetectsImportCycle(t *testing.T) {
	files := map[string][]byte{
		"a.wdl": []byte("version 1.2\nimport \"b.wdl\" as b\n"),
		"b.wdl": []byte("version 1.2\nimport \"a.wdl\" as a\n"),
	}
	fs := source.NewFileSet()
	loader := func(fromURI, importPath string) (string, []byte, error) {
		content, ok := files[importPath]
		if !ok {
			return "", nil, errors.New("no such file")
		}
		return importPath, content, nil
	}
	g := docgraph.NewGraph(fs, loader, 64)
	g.AddRoot("a.wdl", files["a.wdl"])
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	order, cyclic := g.Analyze()
	if !cyclic {
		t.Fatal("expected Analyze to detect the a.wdl <-> b.wdl cycle")
	}
	if len(order) != 0 {
		t.Fatalf("expected no document to be placed in a topological order across a cycle, got %d", len(order))
	}
	a, _ := g.Get("a.wdl")
	b, _ := g.Get("b.wdl")
	if !a.InCycle() || !b.InCycle() {
		t.Fatal("expected both a.wdl and b.wdl to be marked InCycle")
	}
}

func TestAnalyzeOrdersAcyclicGraphDependenciesFirst(t *testing.T) {
	g, _, files := newFixture()
	g.AddRoot("main.wdl", files["main.wdl"])
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	order, cyclic := g.Analyze()
	if cyclic {
		t.Fatal("expected no cycle in a simple linear import")
	}
	if len(order) != 2 {
		t.Fatalf("expected 2 documents in order, got %d", len(order))
	}
	if order[0].URI != "lib.wdl" || order[1].URI != "main.wdl" {
		t.Fatalf("expected lib.wdl before main.wdl, got [%s, %s]", order[0].URI, order[1].URI)
	}
}

func TestRemoveDropsDocumentFromGraph(t *testing.T) {
	g, _, files := newFixture()
	g.AddRoot("main.wdl", files["main.wdl"])
	g.Remove("main.wdl")
	if _, ok := g.Get("main.wdl"); ok {
		t.Fatal("expected main.wdl to be removed from the graph")
	}
	if len(g.Documents()) != 0 {
		t.Fatalf("expected an empty graph after removing the only document, got %d", len(g.Documents()))
	}
}
