package engine_test

import (
	"context"
	"errors"
	"testing"

	"wdlc/internal/astview"
	"wdlc/internal/backend"
	"wdlc/internal/cache"
	"wdlc/internal/config"
	"wdlc/internal/docgraph"
	"wdlc/internal/engine"
	"wdlc/internal/eval"
	"wdlc/internal/source"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// fakeBackend runs no real process: it records how many times Execute was
// called and replays a scripted sequence of results, so retry/backoff
// behavior can be exercised without shelling out.
type fakeBackend struct {
	results []backend.ExecResult
	calls   int
}

func (b *fakeBackend) Name() string     { return "fake" }
func (b *fakeBackend) Parallelism() int { return 1 }

func (b *fakeBackend) Execute(ctx context.Context, spec backend.ExecSpec) (backend.ExecResult, error) {
	i := b.calls
	b.calls++
	if i < len(b.results) {
		return b.results[i], nil
	}
	return backend.ExecResult{ExitCode: 0}, nil
}

// parseTask parses a single-file document containing one task named "t"
// and returns its TaskDefinition view and a fresh Env scoped to it, the
// same fixture shape internal/eval's own tests use.
func parseTask(t *testing.T, body string) (astview.TaskDefinition, *eval.Env) {
	t.Helper()
	src := "version 1.2\ntask t {\n" + body + "\n}\n"
	fs := source.NewFileSet()
	loader := func(fromURI, importPath string) (string, []byte, error) {
		return "", nil, errors.New("no imports in this fixture")
	}
	g := docgraph.NewGraph(fs, loader, 64)
	doc := g.AddRoot("main.wdl", []byte(src))
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	tsk, ok := doc.TaskNames["t"]
	if !ok {
		t.Fatalf("no task %q found", "t")
	}
	return tsk, eval.NewEnv(types.NewInterner(), nil, noPaths{}, "1.2")
}

type noPaths struct{}

func (noPaths) ResolvePath(p string) string      { return p }
func (noPaths) Glob(string) ([]string, error)    { return nil, errors.New("glob: not available") }
func (noPaths) ReadFile(string) (string, error)  { return "", errors.New("readFile: not available") }
func (noPaths) WriteFile(string) (string, error) { return "", errors.New("writeFile: not available") }
func (noPaths) Stat(string) (int64, error)       { return 0, errors.New("stat: not available") }

func TestRunTaskCacheMissThenHit(t *testing.T) {
	task, env := parseTask(t, `
  command { echo hi }
  output {
    Int x = 1 + 1
  }
`)

	dc, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer dc.Close()

	be := &fakeBackend{}
	eng := engine.New(config.Default(), dc, be, nil, t.TempDir())

	spec := engine.TaskSpec{Name: "t", Task: task, Env: env, Inputs: map[string]value.Value{}}

	outputs, err := eng.RunTask(context.Background(), spec)
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if outputs["x"].Int() != 2 {
		t.Fatalf("got %v, want 2", outputs["x"].Int())
	}
	if be.calls != 1 {
		t.Fatalf("expected 1 backend call on miss, got %d", be.calls)
	}

	outputs2, err := eng.RunTask(context.Background(), spec)
	if err != nil {
		t.Fatalf("RunTask (cached): %v", err)
	}
	if outputs2["x"].Int() != 2 {
		t.Fatalf("got %v, want 2", outputs2["x"].Int())
	}
	if be.calls != 1 {
		t.Fatalf("expected cache hit to skip a second backend call, got %d calls", be.calls)
	}
}

func TestRunTaskNonZeroExitRetriesThenFails(t *testing.T) {
	task, env := parseTask(t, `
  command { exit 1 }
  requirements {
    maxRetries: 2
  }
  output {
    Int x = 1
  }
`)

	dc, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer dc.Close()

	be := &fakeBackend{results: []backend.ExecResult{
		{ExitCode: 1}, {ExitCode: 1}, {ExitCode: 1},
	}}
	eng := engine.New(config.Default(), dc, be, nil, t.TempDir())

	spec := engine.TaskSpec{Name: "t", Task: task, Env: env, Inputs: map[string]value.Value{}}

	_, err = eng.RunTask(context.Background(), spec)
	if err == nil {
		t.Fatalf("expected failure after exhausting retries")
	}
	if be.calls != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries), got %d", be.calls)
	}
}

func TestRunTaskSucceedsAfterRetry(t *testing.T) {
	task, env := parseTask(t, `
  command { maybe_fail }
  requirements {
    maxRetries: 3
  }
  output {
    Int x = 5
  }
`)

	dc, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer dc.Close()

	be := &fakeBackend{results: []backend.ExecResult{
		{ExitCode: 1}, {ExitCode: 0},
	}}
	eng := engine.New(config.Default(), dc, be, nil, t.TempDir())

	spec := engine.TaskSpec{Name: "t", Task: task, Env: env, Inputs: map[string]value.Value{}}

	outputs, err := eng.RunTask(context.Background(), spec)
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if outputs["x"].Int() != 5 {
		t.Fatalf("got %v, want 5", outputs["x"].Int())
	}
	if be.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", be.calls)
	}
}

func TestRunTaskResourceAdmissionWithinBudget(t *testing.T) {
	task, env := parseTask(t, `
  command { echo hi }
  requirements {
    cpu: 1
  }
  output {
    Int x = 1
  }
`)

	dc, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer dc.Close()

	cfg := config.Default()
	cfg.Resources.CPU = 1
	cfg.Resources.Memory = 0

	be := &fakeBackend{}
	eng := engine.New(cfg, dc, be, nil, t.TempDir())

	spec := engine.TaskSpec{Name: "t", Task: task, Env: env, Inputs: map[string]value.Value{}}

	if _, err := eng.RunTask(context.Background(), spec); err != nil {
		t.Fatalf("RunTask: %v", err)
	}
}
