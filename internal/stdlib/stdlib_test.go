package stdlib_test

import (
	"errors"
	"testing"

	"wdlc/internal/stdlib"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

type fakeEnv struct {
	in    *types.Interner
	files map[string]string
	sizes map[string]int64
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{in: types.NewInterner(), files: map[string]string{}, sizes: map[string]int64{}}
}

func (e *fakeEnv) Interner() *types.Interner     { return e.in }
func (e *fakeEnv) ResolvePath(p string) string   { return p }
func (e *fakeEnv) Glob(pattern string) ([]string, error) {
	return nil, errors.New("glob: not used in this test")
}
func (e *fakeEnv) ReadFile(path string) (string, error) {
	content, ok := e.files[path]
	if !ok {
		return "", errors.New("read: no such file " + path)
	}
	return content, nil
}
func (e *fakeEnv) WriteFile(content string) (string, error) {
	p := "/tmp/out"
	e.files[p] = content
	return p, nil
}
func (e *fakeEnv) Stat(path string) (int64, error) {
	n, ok := e.sizes[path]
	if !ok {
		return 0, errors.New("stat: no such file " + path)
	}
	return n, nil
}

var _ stdlib.Env = (*fakeEnv)(nil)

func call(t *testing.T, name string, env *fakeEnv, args ...value.Value) value.Value {
	t.Helper()
	fn, ok := stdlib.Lookup(name)
	if !ok {
		t.Fatalf("no such function %q", name)
	}
	if !fn.CheckArity(len(args)) {
		t.Fatalf("%s: %d arguments fails arity check", name, len(args))
	}
	v, err := fn.Impl(env, args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return v
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := stdlib.Lookup("totally_not_a_function"); ok {
		t.Fatalf("expected lookup to fail")
	}
}

func TestCheckArity(t *testing.T) {
	fn, ok := stdlib.Lookup("basename")
	if !ok {
		t.Fatalf("basename not found")
	}
	if !fn.CheckArity(1) || !fn.CheckArity(2) {
		t.Fatalf("basename should accept 1 or 2 arguments")
	}
	if fn.CheckArity(0) || fn.CheckArity(3) {
		t.Fatalf("basename should reject 0 or 3 arguments")
	}
}

func TestVersionAtLeast(t *testing.T) {
	if !stdlib.VersionAtLeast("1.2", "1.0") {
		t.Fatalf("1.2 should satisfy a 1.0 gate")
	}
	if stdlib.VersionAtLeast("1.0", "1.1") {
		t.Fatalf("1.0 should not satisfy a 1.1 gate")
	}
	if !stdlib.VersionAtLeast("unknown", "1.1") {
		t.Fatalf("an unrecognized version string should not be gated")
	}
}

func TestBasenameStripsSuffix(t *testing.T) {
	env := newFakeEnv()
	v := call(t, "basename", env, value.String("/a/b/c.txt"), value.String(".txt"))
	if v.Str() != "c" {
		t.Fatalf("got %q, want %q", v.Str(), "c")
	}
}

func TestSub(t *testing.T) {
	env := newFakeEnv()
	v := call(t, "sub", env, value.String("hello world"), value.String("o"), value.String("0"))
	if v.Str() != "hell0 w0rld" {
		t.Fatalf("got %q", v.Str())
	}
}

func TestSizeOfFile(t *testing.T) {
	env := newFakeEnv()
	env.sizes["/data/f.txt"] = 2048
	v := call(t, "size", env, value.File("/data/f.txt"), value.String("KB"))
	if v.Float() != 2.048 {
		t.Fatalf("got %v, want 2.048", v.Float())
	}
}

func TestSizeOfNoneIsZero(t *testing.T) {
	env := newFakeEnv()
	v := call(t, "size", env, value.None())
	if v.Float() != 0 {
		t.Fatalf("got %v, want 0", v.Float())
	}
}

func TestSelectFirst(t *testing.T) {
	env := newFakeEnv()
	arr := value.Array(types.NoType, []value.Value{value.None(), value.Int(5)})
	v := call(t, "select_first", env, arr)
	if v.Int() != 5 {
		t.Fatalf("got %d, want 5", v.Int())
	}
}

func TestSelectFirstAllNoneErrors(t *testing.T) {
	env := newFakeEnv()
	fn, _ := stdlib.Lookup("select_first")
	arr := value.Array(types.NoType, []value.Value{value.None(), value.None()})
	if _, err := fn.Impl(env, []value.Value{arr}); err == nil {
		t.Fatalf("expected an error when every element is None")
	}
}

func TestRange(t *testing.T) {
	env := newFakeEnv()
	v := call(t, "range", env, value.Int(3))
	elems := v.Elements()
	if len(elems) != 3 || elems[0].Int() != 0 || elems[2].Int() != 2 {
		t.Fatalf("got %v", elems)
	}
}

func TestZip(t *testing.T) {
	env := newFakeEnv()
	a := value.Array(types.NoType, []value.Value{value.Int(1), value.Int(2)})
	b := value.Array(types.NoType, []value.Value{value.String("x"), value.String("y")})
	v := call(t, "zip", env, a, b)
	elems := v.Elements()
	if len(elems) != 2 {
		t.Fatalf("got %d elements, want 2", len(elems))
	}
	l, r := elems[0].PairParts()
	if l.Int() != 1 || r.Str() != "x" {
		t.Fatalf("got (%v, %v)", l, r)
	}
}

func TestFloorCeilRound(t *testing.T) {
	env := newFakeEnv()
	if v := call(t, "floor", env, value.Float(1.7)); v.Int() != 1 {
		t.Fatalf("floor: got %d", v.Int())
	}
	if v := call(t, "ceil", env, value.Float(1.2)); v.Int() != 2 {
		t.Fatalf("ceil: got %d", v.Int())
	}
	if v := call(t, "round", env, value.Float(1.5)); v.Int() != 2 {
		t.Fatalf("round: got %d", v.Int())
	}
}

func TestWriteLinesThenReadLines(t *testing.T) {
	env := newFakeEnv()
	arr := value.Array(types.NoType, []value.Value{value.String("a"), value.String("b")})
	f := call(t, "write_lines", env, arr)
	v := call(t, "read_lines", env, value.File(f.Path()))
	elems := v.Elements()
	if len(elems) != 2 || elems[0].Str() != "a" || elems[1].Str() != "b" {
		t.Fatalf("got %v", elems)
	}
}

func TestPrefixSuffixQuote(t *testing.T) {
	env := newFakeEnv()
	arr := value.Array(types.NoType, []value.Value{value.String("a"), value.String("b")})
	p := call(t, "prefix", env, value.String("-"), arr)
	if p.Elements()[0].Str() != "-a" {
		t.Fatalf("got %q", p.Elements()[0].Str())
	}
	s := call(t, "suffix", env, value.String(".txt"), arr)
	if s.Elements()[1].Str() != "b.txt" {
		t.Fatalf("got %q", s.Elements()[1].Str())
	}
	q := call(t, "quote", env, arr)
	if q.Elements()[0].Str() != `"a"` {
		t.Fatalf("got %q", q.Elements()[0].Str())
	}
}

func TestReadJSONNotYetSupported(t *testing.T) {
	env := newFakeEnv()
	fn, _ := stdlib.Lookup("read_json")
	if _, err := fn.Impl(env, []value.Value{value.File("/x.json")}); err == nil {
		t.Fatalf("expected read_json to report it is unsupported")
	}
}
