package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"wdlc/internal/backend"
	"wdlc/internal/cache"
	"wdlc/internal/config"
	"wdlc/internal/docgraph"
	"wdlc/internal/engine"
	"wdlc/internal/orchestrator"
	"wdlc/internal/source"
	"wdlc/internal/value"
)

// fakeBackend runs no real process: every task exits 0 and echoes nothing,
// since the tasks in these fixtures compute their outputs purely from
// their declared expressions.
type fakeBackend struct{ calls int }

func (b *fakeBackend) Name() string     { return "fake" }
func (b *fakeBackend) Parallelism() int { return 4 }

func (b *fakeBackend) Execute(ctx context.Context, spec backend.ExecSpec) (backend.ExecResult, error) {
	b.calls++
	return backend.ExecResult{ExitCode: 0}, nil
}

func parseDoc(t *testing.T, src string) *docgraph.Document {
	t.Helper()
	fs := source.NewFileSet()
	loader := func(fromURI, importPath string) (string, []byte, error) {
		return "", nil, errors.New("no imports in this fixture")
	}
	g := docgraph.NewGraph(fs, loader, 64)
	doc := g.AddRoot("main.wdl", []byte(src))
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return doc
}

func newOrchestrator(t *testing.T, be backend.Backend, doc *docgraph.Document) *orchestrator.Orchestrator {
	t.Helper()
	dc, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() { dc.Close() })
	eng := engine.New(config.Default(), dc, be, nil, t.TempDir())
	return orchestrator.New(eng, doc, t.TempDir(), 4)
}

const doubleTaskAndScatterWorkflow = `version 1.2

task double {
  input {
    Int n
  }
  command {
    echo noop
  }
  output {
    Int out = n * 2
  }
}

workflow main {
  input {
    Array[Int] xs
  }
  Int base = 1
  if (base == 1) {
    Int flag = 99
  }
  scatter (x in xs) {
    call double { input: n = x }
  }
  output {
    Array[Int] doubled = double.out
    Int flagOut = flag
  }
}
`

func TestRunDeclarationConditionalScatterCall(t *testing.T) {
	be := &fakeBackend{}
	doc := parseDoc(t, doubleTaskAndScatterWorkflow)
	o := newOrchestrator(t, be, doc)

	wf, ok := doc.WorkflowNames["main"]
	if !ok {
		t.Fatalf("no workflow %q found", "main")
	}

	inputs := map[string]value.Value{
		"xs": value.Array(0, []value.Value{value.Int(1), value.Int(2), value.Int(3)}),
	}

	outputs, err := o.Run(context.Background(), wf, inputs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	doubled := outputs["doubled"]
	elems := doubled.Elements()
	if len(elems) != 3 {
		t.Fatalf("got %d elements, want 3", len(elems))
	}
	for i, want := range []int64{2, 4, 6} {
		if elems[i].Int() != want {
			t.Fatalf("element %d: got %d, want %d", i, elems[i].Int(), want)
		}
	}

	if got := outputs["flagOut"].Int(); got != 99 {
		t.Fatalf("flagOut: got %d, want 99 (conditional was true)", got)
	}

	if be.calls != 3 {
		t.Fatalf("expected 3 task invocations, got %d", be.calls)
	}
}

const conditionalFalseWorkflow = `version 1.2

workflow main {
  Boolean cond = false
  if (cond) {
    Int hidden = 7
  }
  output {
    Int? hiddenOut = hidden
  }
}
`

func TestRunConditionalFalseBranchYieldsNone(t *testing.T) {
	be := &fakeBackend{}
	doc := parseDoc(t, conditionalFalseWorkflow)
	o := newOrchestrator(t, be, doc)

	wf, ok := doc.WorkflowNames["main"]
	if !ok {
		t.Fatalf("no workflow %q found", "main")
	}

	outputs, err := o.Run(context.Background(), wf, map[string]value.Value{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !outputs["hiddenOut"].IsNone() {
		t.Fatalf("expected hiddenOut to be None when the conditional did not run")
	}
	if be.calls != 0 {
		t.Fatalf("expected no task invocations, got %d", be.calls)
	}
}

const dependentCallsWorkflow = `version 1.2

task addOne {
  input {
    Int n
  }
  command {
    echo noop
  }
  output {
    Int out = n + 1
  }
}

workflow main {
  call addOne as first { input: n = 1 }
  call addOne as second { input: n = first.out }
  output {
    Int result = second.out
  }
}
`

func TestRunSequentialCallDependency(t *testing.T) {
	be := &fakeBackend{}
	doc := parseDoc(t, dependentCallsWorkflow)
	o := newOrchestrator(t, be, doc)

	wf, ok := doc.WorkflowNames["main"]
	if !ok {
		t.Fatalf("no workflow %q found", "main")
	}

	outputs, err := o.Run(context.Background(), wf, map[string]value.Value{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := outputs["result"].Int(); got != 3 {
		t.Fatalf("result: got %d, want 3", got)
	}
	if be.calls != 2 {
		t.Fatalf("expected 2 task invocations, got %d", be.calls)
	}
}
