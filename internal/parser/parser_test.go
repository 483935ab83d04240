package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/lexer"
	"wdlc/internal/parser"
	"wdlc/internal/source"
)

type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
		Fixes:    fixes,
	})
}

func (r *testReporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return messages
}

func parseSource(t *testing.T, input string) (parser.Result, *testReporter) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.wdl", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	result := parser.ParseDocument(file, lx, parser.Options{Reporter: reporter})
	return result, reporter
}

// findFirst returns the first descendant (including the root itself) with
// the given kind, or nil.
func findFirst(n *cst.Node, kind cst.Kind) *cst.Node {
	for _, d := range n.Preorder() {
		if d.Kind() == kind {
			return d
		}
	}
	return nil
}

func findAll(n *cst.Node, kind cst.Kind) []*cst.Node {
	var out []*cst.Node
	for _, d := range n.Preorder() {
		if d.Kind() == kind {
			out = append(out, d)
		}
	}
	return out
}

func TestParseRoundTripsSourceText(t *testing.T) {
	src := "version 1.0\n\ntask greet {\n  input {\n    String name\n  }\n  command {\n    echo \"hello ~{name}\"\n  }\n  output {\n    String out = stdout()\n  }\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if got := result.Tree.Root().Text(); got != src {
		t.Fatalf("round-trip mismatch:\n got: %q\nwant: %q", got, src)
	}
}

func TestParseVersionStatement(t *testing.T) {
	result, reporter := parseSource(t, "version 1.0\n")
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	vs := findFirst(result.Tree.Root(), cst.KindVersionStatement)
	if vs == nil {
		t.Fatalf("expected a VersionStatement node")
	}
}

func TestParseMissingVersionReportsDiagnostic(t *testing.T) {
	_, reporter := parseSource(t, "task t { command { echo hi } }")
	if !reporter.HasErrors() {
		t.Fatalf("expected an error for a document missing its version statement")
	}
}

func TestParseImportWithAliases(t *testing.T) {
	src := "version 1.0\n\nimport \"lib.wdl\" as lib alias Foo as Bar\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	imp := findFirst(result.Tree.Root(), cst.KindImportStatement)
	if imp == nil {
		t.Fatalf("expected an ImportStatement node")
	}
	if alias := findFirst(imp, cst.KindImportAlias); alias == nil {
		t.Fatalf("expected an ImportAlias node nested under the import statement")
	}
}

func TestParseStructDefinition(t *testing.T) {
	src := "version 1.0\n\nstruct Sample {\n  String name\n  Int depth\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	members := findAll(result.Tree.Root(), cst.KindStructMember)
	if len(members) != 2 {
		t.Fatalf("expected 2 struct members, got %d", len(members))
	}
}

func TestParseEnumDefinition(t *testing.T) {
	src := "version 1.2\n\nenum Strand {\n  Forward,\n  Reverse\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	variants := findAll(result.Tree.Root(), cst.KindEnumVariant)
	if len(variants) != 2 {
		t.Fatalf("expected 2 enum variants, got %d", len(variants))
	}
}

func TestParseTaskAllSections(t *testing.T) {
	src := `version 1.2

task pipeline {
  input {
    String name
    Int depth = 10
  }
  command <<<
    echo ~{name}
  >>>
  output {
    String result = stdout()
  }
  requirements {
    container: "ubuntu:latest"
  }
  hints {
    maxRetries: 2
  }
  meta {
    description: "an example task"
  }
  parameter_meta {
    name: "the sample name"
  }
}
`
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	task := findFirst(result.Tree.Root(), cst.KindTaskDefinition)
	if task == nil {
		t.Fatalf("expected a TaskDefinition node")
	}
	for _, kind := range []cst.Kind{
		cst.KindInputSection, cst.KindCommandSection, cst.KindOutputSection,
		cst.KindRequirementsSection, cst.KindHintsSection,
		cst.KindMetaSection, cst.KindParameterMetaSection,
	} {
		if findFirst(task, kind) == nil {
			t.Errorf("expected a %s node under the task", kind)
		}
	}
}

func TestParseWorkflowWithCallIfScatter(t *testing.T) {
	src := `version 1.0

workflow main {
  input {
    Array[String] names
  }
  scatter (n in names) {
    if (n != "") {
      call greet { input: name = n }
    }
  }
  output {
    Array[String] greetings = greet.out
  }
}
`
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	wf := findFirst(result.Tree.Root(), cst.KindWorkflowDefinition)
	if wf == nil {
		t.Fatalf("expected a WorkflowDefinition node")
	}
	if findFirst(wf, cst.KindScatterStatement) == nil {
		t.Errorf("expected a ScatterStatement node")
	}
	if findFirst(wf, cst.KindIfStatement) == nil {
		t.Errorf("expected an IfStatement node")
	}
	call := findFirst(wf, cst.KindCallStatement)
	if call == nil {
		t.Fatalf("expected a CallStatement node")
	}
	if findFirst(call, cst.KindCallInputs) == nil {
		t.Errorf("expected a CallInputs node under the call statement")
	}
}

func TestParseCallWithAsAndAfter(t *testing.T) {
	src := `version 1.0

workflow main {
  call greet as hello after setup
}
`
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	call := findFirst(result.Tree.Root(), cst.KindCallStatement)
	if call == nil {
		t.Fatalf("expected a CallStatement node")
	}
	if findFirst(call, cst.KindCallAfter) == nil {
		t.Errorf("expected a CallAfter node")
	}
}

// Exercises every rung of the §4.4 precedence table in one expression and
// relies on the resulting tree shape being well-formed (no panics, no
// unclosed nodes) rather than asserting the exact nesting, since shape
// assertions on a Pratt parser's output are brittle.
func TestParseExpressionPrecedenceAndAssociativity(t *testing.T) {
	src := "version 1.0\n\nworkflow w {\n  Boolean b = true || false && !false == (1 < 2) + 3 * 4 - 5 % 2\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindBinaryExpr) == nil {
		t.Fatalf("expected at least one BinaryExpr node")
	}
}

func TestParseLeftAssociativeChain(t *testing.T) {
	// "a - b - c" must parse as "(a - b) - c": the outer BinaryExpr's first
	// child (by document order) should itself be a BinaryExpr, not a bare
	// name reference.
	src := "version 1.0\n\nworkflow w {\n  Int x = a - b - c\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	decl := findFirst(result.Tree.Root(), cst.KindDeclaration)
	if decl == nil {
		t.Fatalf("expected a Declaration node")
	}
	outer := findFirst(decl, cst.KindBinaryExpr)
	if outer == nil {
		t.Fatalf("expected a BinaryExpr node")
	}
	children := outer.Children()
	if len(children) == 0 || children[0].Kind() != cst.KindBinaryExpr {
		t.Fatalf("expected left-associative nesting: outer BinaryExpr's first child should be a BinaryExpr, got %v", children)
	}
}

func TestParseTernaryExpression(t *testing.T) {
	src := "version 1.0\n\nworkflow w {\n  Int x = if true then 1 else 2\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindTernaryExpr) == nil {
		t.Fatalf("expected a TernaryExpr node")
	}
}

func TestParsePostfixChain(t *testing.T) {
	src := "version 1.0\n\nworkflow w {\n  Int x = a.b[0].c(1, 2)\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindMemberExpr) == nil {
		t.Errorf("expected a MemberExpr node")
	}
	if findFirst(result.Tree.Root(), cst.KindIndexExpr) == nil {
		t.Errorf("expected an IndexExpr node")
	}
	if findFirst(result.Tree.Root(), cst.KindApplyExpr) == nil {
		t.Errorf("expected an ApplyExpr node")
	}
}

func TestParseStructLiteralVsNameReference(t *testing.T) {
	src := "version 1.0\n\nworkflow w {\n  Sample s = Sample { name: \"x\", depth: 1 }\n  Int n = depth\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindStructLiteral) == nil {
		t.Fatalf("expected a StructLiteral node for 'Sample { ... }'")
	}
	refs := findAll(result.Tree.Root(), cst.KindNameRef)
	foundBareRef := false
	for _, r := range refs {
		if tok := r.FirstToken(); tok != nil && tok.Text() == "depth" {
			foundBareRef = true
		}
	}
	if !foundBareRef {
		t.Fatalf("expected a bare NameRef for the second declaration's initializer")
	}
}

func TestParsePlaceholderOptionVsBareIdentifier(t *testing.T) {
	// "sep" used as a plain variable reference inside a placeholder must not
	// be mistaken for the sep= placeholder option, since it is not followed
	// by '='.
	src := "version 1.0\n\ntask t {\n  input {\n    String sep\n  }\n  command {\n    echo ~{sep}\n  }\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindPlaceholderOption) != nil {
		t.Fatalf("bare 'sep' reference must not be parsed as a placeholder option")
	}
	if findFirst(result.Tree.Root(), cst.KindPlaceholder) == nil {
		t.Fatalf("expected a Placeholder node")
	}
}

func TestParsePlaceholderWithSepOption(t *testing.T) {
	src := "version 1.0\n\ntask t {\n  input {\n    Array[String] xs\n  }\n  command {\n    echo ~{sep=\",\" xs}\n  }\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	opt := findFirst(result.Tree.Root(), cst.KindPlaceholderOption)
	if opt == nil {
		t.Fatalf("expected a PlaceholderOption node for 'sep=\",\"'")
	}
}

func TestParseArrayMapPairLiterals(t *testing.T) {
	src := "version 1.0\n\nworkflow w {\n  Array[Int] a = [1, 2, 3]\n  Map[String, Int] m = { \"a\": 1 }\n  Pair[Int, Int] p = (1, 2)\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindArrayLiteral) == nil {
		t.Errorf("expected an ArrayLiteral node")
	}
	if findFirst(result.Tree.Root(), cst.KindMapLiteral) == nil {
		t.Errorf("expected a MapLiteral node")
	}
	if findFirst(result.Tree.Root(), cst.KindPairLiteral) == nil {
		t.Errorf("expected a PairLiteral node")
	}
}

func TestParseParenthesizedExpressionIsNotAPair(t *testing.T) {
	src := "version 1.0\n\nworkflow w {\n  Int x = (1 + 2)\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindPairLiteral) != nil {
		t.Fatalf("'(1 + 2)' must not be parsed as a Pair literal")
	}
	if findFirst(result.Tree.Root(), cst.KindParenExpr) == nil {
		t.Fatalf("expected a ParenExpr node")
	}
}

func TestParseCompoundTypeExprs(t *testing.T) {
	src := "version 1.0\n\nworkflow w {\n  input {\n    Array[String]+ names\n    Map[String, Int]? counts\n    Pair[Int, Int] range\n  }\n}\n"
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindArrayTypeExpr) == nil {
		t.Errorf("expected an ArrayTypeExpr node")
	}
	if findFirst(result.Tree.Root(), cst.KindMapTypeExpr) == nil {
		t.Errorf("expected a MapTypeExpr node")
	}
	if findFirst(result.Tree.Root(), cst.KindPairTypeExpr) == nil {
		t.Errorf("expected a PairTypeExpr node")
	}
	if findFirst(result.Tree.Root(), cst.KindNonEmptySuffix) == nil {
		t.Errorf("expected a NonEmptySuffix node for 'Array[String]+'")
	}
	if findFirst(result.Tree.Root(), cst.KindOptionalTypeSuffix) == nil {
		t.Errorf("expected an OptionalTypeSuffix node for 'Map[String, Int]?'")
	}
}

func TestParseMetaSectionNestedValues(t *testing.T) {
	src := `version 1.2

task t {
  command { echo hi }
  meta {
    authors: ["a", "b"]
    info: {
      nested: true
    }
  }
}
`
	result, reporter := parseSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if findFirst(result.Tree.Root(), cst.KindMetaArray) == nil {
		t.Errorf("expected a MetaArray node")
	}
	if findFirst(result.Tree.Root(), cst.KindMetaObject) == nil {
		t.Errorf("expected a MetaObject node")
	}
}

// Malformed input must never abort the parse: the tree stays structurally
// well-formed (a single root, every opened node finished) and the parser
// instead reports diagnostics and recovers at the next top-level keyword.
func TestParseRecoversFromMalformedTopLevelItem(t *testing.T) {
	src := "version 1.0\n\n%%% garbage %%%\n\ntask t {\n  command { echo hi }\n}\n"
	result, reporter := parseSource(t, src)
	if !reporter.HasErrors() {
		t.Fatalf("expected diagnostics for malformed top-level input")
	}
	if findFirst(result.Tree.Root(), cst.KindTaskDefinition) == nil {
		t.Fatalf("expected the parser to recover and still parse the trailing task definition")
	}
}

func TestParseRecoversFromUnclosedBrace(t *testing.T) {
	src := "version 1.0\n\ntask t {\n  command { echo hi }\n\ntask u {\n  command { echo bye }\n}\n"
	result, reporter := parseSource(t, src)
	if !reporter.HasErrors() {
		t.Fatalf("expected a diagnostic for the unclosed task body")
	}
	if result.Tree.Root().Kind() != cst.KindDocument {
		t.Fatalf("expected a well-formed Document root even for an unclosed task body")
	}
	if got := result.Tree.Root().Text(); got != src {
		t.Fatalf("lossless round-trip must hold even on malformed input:\n got: %q\nwant: %q", got, src)
	}
}

func TestParseErrorBudgetStopsReporting(t *testing.T) {
	src := "%%% %%% %%% %%% %%%"
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.wdl", []byte(src))
	file := fs.Get(fileID)
	reporter := &testReporter{}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})

	result := parser.ParseDocument(file, lx, parser.Options{MaxErrors: 2, Reporter: reporter})
	if len(reporter.diagnostics) > 2 {
		t.Fatalf("expected at most 2 diagnostics once the error budget is spent, got %d", len(reporter.diagnostics))
	}
	if result.Tree == nil {
		t.Fatalf("expected a tree even once the error budget is exhausted")
	}
}

func TestParseEmptyDocumentOnlyVersion(t *testing.T) {
	result, reporter := parseSource(t, "version 1.0\n")
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
	if result.Tree.Root().Kind() != cst.KindDocument {
		t.Fatalf("expected the root node to be KindDocument")
	}
}

func TestParseTreeStaysWellFormedOnGarbageInput(t *testing.T) {
	inputs := []string{
		"",
		"version",
		"version 1.0 task",
		"version 1.0\ntask {{{{",
		"version 1.0\nworkflow w { call }",
	}
	for _, src := range inputs {
		t.Run(strings.TrimSpace(src), func(t *testing.T) {
			result, _ := parseSource(t, src)
			if result.Tree == nil || result.Tree.Root() == nil {
				t.Fatalf("expected a non-nil tree even for malformed input %q", src)
			}
		})
	}
}
