package diag_test

import (
	"testing"

	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/lexer"
	"wdlc/internal/parser"
	"wdlc/internal/source"
)

// parseForSuppress parses src and returns its root Document node and the
// first task definition node inside it, for directive-placement tests.
func parseForSuppress(t *testing.T, src string) (*cst.Node, *cst.Node) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("suppress.wdl", []byte(src))
	file := fs.Get(id)

	lx := lexer.New(file, lexer.Options{})
	result := parser.ParseDocument(file, lx, parser.Options{})

	root := result.Tree.Root()
	var task *cst.Node
	for _, n := range root.Children() {
		if n.Kind() == cst.KindTaskDefinition {
			task = n
			break
		}
	}
	if task == nil {
		t.Fatalf("expected a task definition in parsed document, got none")
	}
	return root, task
}

func ruleDiag(rule string) *diag.Diagnostic {
	return &diag.Diagnostic{Severity: diag.SevWarning, Code: diag.SemaInfo, Message: "test", Rule: rule}
}

func TestSuppressedDropsMatchingRuleOnDirectlyAnnotatedNode(t *testing.T) {
	_, task := parseForSuppress(t, "version 1.2\n#@ except: UnusedInput\ntask t { command {} }\n")
	d := ruleDiag("UnusedInput")
	if !diag.Suppressed(d, task, nil) {
		t.Fatal("expected directive on the task itself to suppress its own rule")
	}
}

func TestSuppressedPassesThroughUnlistedRule(t *testing.T) {
	_, task := parseForSuppress(t, "version 1.2\n#@ except: UnusedInput\ntask t { command {} }\n")
	d := ruleDiag("DuplicateInput")
	if diag.Suppressed(d, task, nil) {
		t.Fatal("expected a rule name absent from the directive to remain unsuppressed")
	}
}

func TestSuppressedStopsAtScopeBoundary(t *testing.T) {
	_, task := parseForSuppress(t, "version 1.2\n#@ except: UnusedInput\ntask t { command {} }\n")
	d := ruleDiag("UnusedInput")
	if diag.Suppressed(d, task, []cst.Kind{cst.KindWorkflowDefinition}) {
		t.Fatal("expected the walk to stop before reaching a directive outside allowedScopes")
	}
}

func TestSuppressedNoRuleIsNeverSuppressed(t *testing.T) {
	_, task := parseForSuppress(t, "version 1.2\n#@ except: UnusedInput\ntask t { command {} }\n")
	d := &diag.Diagnostic{Severity: diag.SevWarning, Code: diag.SemaInfo, Message: "test"}
	if diag.Suppressed(d, task, nil) {
		t.Fatal("expected a diagnostic with no Rule to never be suppressible")
	}
}

func TestExceptableAddIsIdempotent(t *testing.T) {
	_, task := parseForSuppress(t, "version 1.2\n#@ except: UnusedInput\ntask t { command {} }\n")
	bag := diag.NewBag(16)

	first := bag.ExceptableAdd(ruleDiag("UnusedInput"), task, nil)
	second := bag.ExceptableAdd(ruleDiag("UnusedInput"), task, nil)

	if first || second {
		t.Fatal("expected both calls to report the diagnostic as suppressed")
	}
	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics to land in the bag, got %d", bag.Len())
	}
}

func TestExceptableAddKeepsUnsuppressedDiagnostics(t *testing.T) {
	_, task := parseForSuppress(t, "version 1.2\ntask t { command {} }\n")
	bag := diag.NewBag(16)

	if !bag.ExceptableAdd(ruleDiag("UnusedInput"), task, nil) {
		t.Fatal("expected an undirected diagnostic to be added")
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic in the bag, got %d", bag.Len())
	}
}
