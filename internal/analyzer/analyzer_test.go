package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"wdlc/internal/analyzer"
	"wdlc/internal/docgraph"
	"wdlc/internal/source"
)

func newTestAnalyzer(files map[string][]byte) *analyzer.Analyzer {
	fs := source.NewFileSet()
	loader := func(fromURI, importPath string) (string, []byte, error) {
		content, ok := files[importPath]
		if !ok {
			return "", nil, errors.New("no such file")
		}
		return importPath, content, nil
	}
	graph := docgraph.NewGraph(fs, loader, 64)
	return analyzer.New(graph, 2, nil)
}

func TestAnalyzeReturnsOneResultPerDocument(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte("version 1.2\nimport \"lib.wdl\" as lib\n"),
		"lib.wdl":  []byte("version 1.2\nstruct Point { Int x }\n"),
	}
	a := newTestAnalyzer(files)

	if err := a.AddDocuments(context.Background(), map[string][]byte{"main.wdl": files["main.wdl"]}); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	results, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (main.wdl + its transitively-discovered import lib.wdl), got %d", len(results))
	}
	byURI := make(map[string]analyzer.AnalysisResult, len(results))
	for _, r := range results {
		byURI[r.URI] = r
	}
	if _, ok := byURI["lib.wdl"]; !ok {
		t.Error("expected lib.wdl to be reachable and analyzed transitively")
	}
}

func TestAnalyzeReportsProgress(t *testing.T) {
	files := map[string][]byte{"main.wdl": []byte("version 1.2\n")}
	var phases []string
	fs := source.NewFileSet()
	graph := docgraph.NewGraph(fs, func(string, string) (string, []byte, error) {
		return "", nil, errors.New("no imports")
	}, 64)
	a := analyzer.New(graph, 1, func(phase string, completed, total int, tag string) {
		phases = append(phases, phase)
	})

	if err := a.AddDocuments(context.Background(), files); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if _, err := a.Analyze(context.Background()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(phases) == 0 {
		t.Fatal("expected at least one progress callback")
	}
}

func TestRemoveDocumentsDropsFromGraph(t *testing.T) {
	files := map[string][]byte{"main.wdl": []byte("version 1.2\n")}
	a := newTestAnalyzer(files)
	if err := a.AddDocuments(context.Background(), files); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if _, err := a.Analyze(context.Background()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	a.RemoveDocuments([]string{"main.wdl"})
	results, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results after removing the only document, got %d", len(results))
	}
}

func TestChangeNotificationReanalyzesDocument(t *testing.T) {
	a := newTestAnalyzer(nil)
	if err := a.AddDocuments(context.Background(), map[string][]byte{"main.wdl": []byte("version 1.2\n")}); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if _, err := a.Analyze(context.Background()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	a.ChangeNotification("main.wdl", analyzer.Change{Content: []byte("version 1.2\nstruct Point { Int x }\n")})
	results, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if _, ok := results[0].Document.StructNames["Point"]; !ok {
		t.Fatal("expected the edited document's new struct to show up after re-analysis")
	}
}
