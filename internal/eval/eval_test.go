package eval_test

import (
	"errors"
	"testing"

	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/docgraph"
	"wdlc/internal/eval"
	"wdlc/internal/source"
	"wdlc/internal/token"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// exprs parses a task's `output { ... }` section out of a single-file
// document and returns each output declaration's initializer node keyed by
// name, so individual expressions can be evaluated in isolation.
func exprs(t *testing.T, body string) map[string]*cst.Node {
	t.Helper()
	src := "version 1.2\ntask t {\n  command {}\n  output {\n" + body + "\n  }\n}\n"
	fs := source.NewFileSet()
	loader := func(fromURI, importPath string) (string, []byte, error) {
		return "", nil, errors.New("no imports in this fixture")
	}
	g := docgraph.NewGraph(fs, loader, 64)
	doc := g.AddRoot("main.wdl", []byte(src))
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	task, ok := doc.TaskNames["t"]
	if !ok {
		t.Fatalf("no task %q found", "t")
	}
	out := task.Output()
	if out == nil {
		t.Fatalf("no output section")
	}
	result := make(map[string]*cst.Node)
	for _, d := range out.Declarations() {
		name := declName(d)
		if name == "" {
			continue
		}
		result[name] = d.Initializer()
	}
	return result
}

func declName(d astview.Declaration) string {
	for _, e := range d.Syntax().ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.Ident {
			return e.Token.Text()
		}
	}
	return ""
}

type noPaths struct{}

func (noPaths) ResolvePath(p string) string      { return p }
func (noPaths) Glob(string) ([]string, error)    { return nil, errors.New("glob: not available") }
func (noPaths) ReadFile(string) (string, error)  { return "", errors.New("readFile: not available") }
func (noPaths) WriteFile(string) (string, error) { return "", errors.New("writeFile: not available") }
func (noPaths) Stat(string) (int64, error)       { return 0, errors.New("stat: not available") }

func newEnv() *eval.Env {
	return eval.NewEnv(types.NewInterner(), nil, noPaths{}, "1.2")
}

func evalOne(t *testing.T, body, name string) value.Value {
	t.Helper()
	nodes := exprs(t, body)
	n, ok := nodes[name]
	if !ok {
		t.Fatalf("no output named %q", name)
	}
	v, err := eval.Eval(n, newEnv())
	if err != nil {
		t.Fatalf("Eval(%q): %v", name, err)
	}
	return v
}

func TestArithmetic(t *testing.T) {
	v := evalOne(t, "Int x = 2 + 3 * 4", "x")
	if v.Int() != 14 {
		t.Fatalf("got %d, want 14", v.Int())
	}
}

func TestFloatWidening(t *testing.T) {
	v := evalOne(t, "Float x = 1 + 2.5", "x")
	if v.Kind != types.KindFloat || v.Float() != 3.5 {
		t.Fatalf("got %v %v, want Float 3.5", v.Kind, v.Float())
	}
}

func TestStringConcat(t *testing.T) {
	v := evalOne(t, `String x = "a" + "b"`, "x")
	if v.Str() != "ab" {
		t.Fatalf("got %q, want %q", v.Str(), "ab")
	}
}

func TestShortCircuitAnd(t *testing.T) {
	// the right side would divide by zero if evaluated; && must not evaluate it.
	v := evalOne(t, "Boolean x = false && (1 / 0 == 1)", "x")
	if v.Bool() {
		t.Fatalf("got true, want false")
	}
}

func TestShortCircuitOr(t *testing.T) {
	v := evalOne(t, "Boolean x = true || (1 / 0 == 1)", "x")
	if !v.Bool() {
		t.Fatalf("got false, want true")
	}
}

func TestDivisionByZeroError(t *testing.T) {
	nodes := exprs(t, "Int x = 1 / 0")
	_, err := eval.Eval(nodes["x"], newEnv())
	if err == nil {
		t.Fatalf("expected division-by-zero error")
	}
}

func TestTernary(t *testing.T) {
	v := evalOne(t, `String x = if true then "yes" else "no"`, "x")
	if v.Str() != "yes" {
		t.Fatalf("got %q, want %q", v.Str(), "yes")
	}
}

func TestArrayIndex(t *testing.T) {
	v := evalOne(t, "Int x = [10, 20, 30][1]", "x")
	if v.Int() != 20 {
		t.Fatalf("got %d, want 20", v.Int())
	}
}

func TestArrayIndexOutOfBounds(t *testing.T) {
	nodes := exprs(t, "Int x = [1, 2][5]")
	_, err := eval.Eval(nodes["x"], newEnv())
	if err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
}

func TestMapLookup(t *testing.T) {
	v := evalOne(t, `Int x = {"a": 1, "b": 2}["b"]`, "x")
	if v.Int() != 2 {
		t.Fatalf("got %d, want 2", v.Int())
	}
}

func TestPairMembers(t *testing.T) {
	v := evalOne(t, "Int x = (1, 2).left", "x")
	if v.Int() != 1 {
		t.Fatalf("got %d, want 1", v.Int())
	}
}

func TestObjectMember(t *testing.T) {
	v := evalOne(t, `Int x = object {a: 1, b: 2}.b`, "x")
	if v.Int() != 2 {
		t.Fatalf("got %d, want 2", v.Int())
	}
}

func TestArrayOfObjectMemberBroadcast(t *testing.T) {
	v := evalOne(t, `Array[Int] x = [object {a: 1}, object {a: 2}, object {a: 3}].a`, "x")
	got := v.Elements()
	if len(got) != 3 {
		t.Fatalf("got %d elements, want 3", len(got))
	}
	for i, want := range []int64{1, 2, 3} {
		if got[i].Int() != want {
			t.Fatalf("element %d: got %d, want %d", i, got[i].Int(), want)
		}
	}
}

func TestStdlibCall(t *testing.T) {
	v := evalOne(t, "Int x = ceil(1.2)", "x")
	if v.Int() != 2 {
		t.Fatalf("got %d, want 2", v.Int())
	}
}

func TestStdlibUnknownFunction(t *testing.T) {
	nodes := exprs(t, "Int x = not_a_real_function(1)")
	_, err := eval.Eval(nodes["x"], newEnv())
	if err == nil {
		t.Fatalf("expected unknown-function error")
	}
}

func TestComparisonOperators(t *testing.T) {
	v := evalOne(t, `Boolean x = "abc" < "abd"`, "x")
	if !v.Bool() {
		t.Fatalf("got false, want true")
	}
}

func TestStripCommonIndentUniform(t *testing.T) {
	parts := []string{"  echo hi\n  echo bye\n"}
	stripped, ok := eval.StripCommonIndent(parts)
	if !ok {
		t.Fatalf("expected ok")
	}
	if stripped[0] != "echo hi\necho bye\n" {
		t.Fatalf("got %q", stripped[0])
	}
}

func TestStripCommonIndentMixedTabsSpaces(t *testing.T) {
	parts := []string{"  echo hi\n\techo bye\n"}
	_, ok := eval.StripCommonIndent(parts)
	if ok {
		t.Fatalf("expected mixed-indent parts to be rejected")
	}
}

func TestStripCommonIndentBlankLinesIgnored(t *testing.T) {
	parts := []string{"  echo hi\n\n  echo bye\n"}
	stripped, ok := eval.StripCommonIndent(parts)
	if !ok {
		t.Fatalf("expected ok")
	}
	if stripped[0] != "echo hi\n\necho bye\n" {
		t.Fatalf("got %q", stripped[0])
	}
}

// taskCommandNode parses a single-task document and returns its command
// section's syntax node, for exercising eval.RenderCommand directly.
func taskCommandNode(t *testing.T, command string) *cst.Node {
	t.Helper()
	src := "version 1.2\ntask t {\n  command <<<\n" + command + "\n  >>>\n}\n"
	fs := source.NewFileSet()
	loader := func(fromURI, importPath string) (string, []byte, error) {
		return "", nil, errors.New("no imports in this fixture")
	}
	g := docgraph.NewGraph(fs, loader, 64)
	doc := g.AddRoot("main.wdl", []byte(src))
	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	task, ok := doc.TaskNames["t"]
	if !ok {
		t.Fatalf("no task %q found", "t")
	}
	cmd := task.Command()
	if cmd == nil {
		t.Fatalf("no command section")
	}
	return cmd.Syntax()
}

func TestRenderCommandStripsCommonIndent(t *testing.T) {
	n := taskCommandNode(t, "    echo one\n    echo two\n")
	got, err := eval.RenderCommand(n, newEnv())
	if err != nil {
		t.Fatalf("RenderCommand: %v", err)
	}
	want := "echo one\necho two\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
