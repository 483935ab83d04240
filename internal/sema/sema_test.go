package sema_test

import (
	"errors"
	"testing"

	"wdlc/internal/diag"
	"wdlc/internal/docgraph"
	"wdlc/internal/sema"
	"wdlc/internal/source"
	"wdlc/internal/types"
)

// analyze parses files (rooted at root) through docgraph, runs
// sema.AnalyzeDocuments, and returns every document's accumulated
// diagnostics keyed by URI.
func analyze(t *testing.T, files map[string][]byte, root string) map[string][]*diag.Diagnostic {
	t.Helper()
	fs := source.NewFileSet()
	loader := func(fromURI, importPath string) (string, []byte, error) {
		content, ok := files[importPath]
		if !ok {
			return "", nil, errors.New("no such file: " + importPath)
		}
		return importPath, content, nil
	}
	g := docgraph.NewGraph(fs, loader, 64)
	g.AddRoot(root, files[root])
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	order, cyclic := g.Analyze()
	if cyclic {
		t.Fatal("unexpected import cycle")
	}
	sema.AnalyzeDocuments(order, types.NewInterner(), sema.DefaultRegistry())

	out := make(map[string][]*diag.Diagnostic, len(order))
	for _, d := range order {
		out[d.URI] = d.Diags.Items()
	}
	return out
}

func hasCode(diags []*diag.Diagnostic, code diag.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestUnresolvedNameReported(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
workflow w {
  input { Int x }
  output { Int y = x + missing }
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaUnresolvedName) {
		t.Fatal("expected SemaUnresolvedName for a reference to an undeclared name")
	}
}

func TestDeclarationInitializerTypeMismatch(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
workflow w {
  Int n = "not a number"
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaTypeMismatch) {
		t.Fatal("expected SemaTypeMismatch for an Int declaration initialized with a String")
	}
}

func TestDuplicateDeclarationAcrossInputAndOutput(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
task t {
  input { Int x }
  command {}
  output { Int x = 1 }
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaDuplicateInput) {
		t.Fatal("expected a duplicate-declaration diagnostic for \"x\" reused in output")
	}
}

func TestScatterRangeMustBeArray(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
workflow w {
  Int n = 5
  scatter (i in n) {
    Int doubled = i * 2
  }
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.OrchScatterTypeMismatch) {
		t.Fatal("expected a scatter range type mismatch for a non-Array range")
	}
}

func TestConditionalMustBeBoolean(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
workflow w {
  Int n = 5
  if (n) {
    Int m = 1
  }
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaTypeMismatch) {
		t.Fatal("expected a type mismatch for a non-Boolean if condition")
	}
}

func TestEmptyStructReported(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
struct Empty {
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaEmptyStruct) {
		t.Fatal("expected SemaEmptyStruct for a struct declaring no members")
	}
}

func TestAtMostOneWorkflow(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
workflow a { }
workflow b { }
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaMultipleWorkflows) {
		t.Fatal("expected SemaMultipleWorkflows for a second workflow definition")
	}
}

func TestCallInputTypeCheckedAgainstImportedTaskDefinition(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
import "lib.wdl" as lib

workflow w {
  call lib.greet { input: name = 5 }
}
`),
		"lib.wdl": []byte(`version 1.2
task greet {
  input { String name }
  command {}
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaTypeMismatch) {
		t.Fatal("expected SemaTypeMismatch for an Int passed to an imported task's String input")
	}
}

func TestMissingRequiredCallInputReported(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
task greet {
  input { String name }
  command {}
}

workflow w {
  call greet
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaNonOptionalMissing) {
		t.Fatal("expected SemaNonOptionalMissing for an unbound required input")
	}
}

func TestCallAliasMemberAccessTypeChecks(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
task greet {
  command {}
  output { String greeting = "hi" }
}

workflow w {
  call greet
  output { Int bad = greet.greeting }
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaTypeMismatch) {
		t.Fatal("expected SemaTypeMismatch assigning a call's String output to an Int output")
	}
}

func TestAfterReferencesUndeclaredCall(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
task t {
  command {}
}

workflow w {
  call t as first after second
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaAfterUndeclaredCall) {
		t.Fatal("expected SemaAfterUndeclaredCall for \"after second\" with no such call")
	}
}

func TestStructForwardReferenceResolves(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
struct A {
  B b
}
struct B {
  Int x
}
workflow w {
  A a = A { b: B { x: 1 } }
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if hasCode(diags["main.wdl"], diag.SemaUnresolvedStruct) {
		t.Fatal("expected struct A's forward reference to B to resolve without SemaUnresolvedStruct")
	}
	if hasCode(diags["main.wdl"], diag.SemaStructFieldCycle) {
		t.Fatal("A -> B is not a cycle, did not expect SemaStructFieldCycle")
	}
}

func TestStructFieldCycleDetected(t *testing.T) {
	files := map[string][]byte{
		"main.wdl": []byte(`version 1.2
struct A {
  B b
}
struct B {
  A a
}
`),
	}
	diags := analyze(t, files, "main.wdl")
	if !hasCode(diags["main.wdl"], diag.SemaStructFieldCycle) {
		t.Fatal("expected SemaStructFieldCycle for A <-> B")
	}
}
