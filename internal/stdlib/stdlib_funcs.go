package stdlib

import (
	"fmt"
	"math"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"wdlc/internal/types"
	"wdlc/internal/value"
)

// compileRegexp compiles pattern with Go's RE2 engine (regexp package);
// WDL's own reference implementations are POSIX-extended-regex based, so a
// pattern relying on backreferences or lookaround will fail to compile
// here rather than silently behaving differently — flagged in DESIGN.md.
func compileRegexp(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}

func buildTable() map[string]Func {
	fns := []Func{
		{Name: "read_lines", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Array(in.String(), false) },
			Impl:   implReadLines},
		{Name: "read_string", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.String() },
			Impl:   implReadString},
		{Name: "read_int", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Int() },
			Impl:   implReadInt},
		{Name: "read_float", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Float() },
			Impl:   implReadFloat},
		{Name: "read_boolean", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Boolean() },
			Impl:   implReadBoolean},
		{Name: "read_tsv", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID {
				return in.Array(in.Array(in.String(), false), false)
			},
			Impl: implReadTSV},
		{Name: "read_map", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Map(in.String(), in.String()) },
			Impl:   implReadMap},
		{Name: "read_json", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Object() },
			Impl:   implReadJSON},
		{Name: "write_lines", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.File() },
			Impl:   implWriteLines},
		{Name: "write_tsv", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.File() },
			Impl:   implWriteTSV},
		{Name: "write_map", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.File() },
			Impl:   implWriteMap},
		{Name: "write_json", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.File() },
			Impl:   implWriteJSON},
		{Name: "glob", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Array(in.File(), false) },
			Impl:   implGlob},
		{Name: "basename", MinArgs: 1, MaxArgs: 2, MinVersion: "1.0",
			Return: fixedString, Impl: implBasename},
		{Name: "sub", MinArgs: 3, MaxArgs: 3, MinVersion: "1.0",
			Return: fixedString, Impl: implSub},
		{Name: "size", MinArgs: 1, MaxArgs: 2, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Float() },
			Impl:   implSize},
		{Name: "range", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Array(in.Int(), false) },
			Impl:   implRange},
		{Name: "select_first", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, args []types.TypeID) types.TypeID {
				if len(args) == 0 {
					return types.NoType
				}
				return in.WithoutOptional(arrayElem(in, args[0]))
			},
			Impl: implSelectFirst},
		{Name: "select_all", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, args []types.TypeID) types.TypeID {
				if len(args) == 0 {
					return types.NoType
				}
				return in.Array(in.WithoutOptional(arrayElem(in, args[0])), false)
			},
			Impl: implSelectAll},
		{Name: "defined", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Boolean() },
			Impl:   implDefined},
		{Name: "length", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Int() },
			Impl:   implLength},
		{Name: "flatten", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, args []types.TypeID) types.TypeID {
				if len(args) == 0 {
					return types.NoType
				}
				return in.Array(arrayElem(in, arrayElem(in, args[0])), false)
			},
			Impl: implFlatten},
		{Name: "zip", MinArgs: 2, MaxArgs: 2, MinVersion: "1.0",
			Return: pairArrayReturn, Impl: implZip},
		{Name: "cross", MinArgs: 2, MaxArgs: 2, MinVersion: "1.0",
			Return: pairArrayReturn, Impl: implCross},
		{Name: "as_map", MinArgs: 1, MaxArgs: 1, MinVersion: "1.1",
			Return: func(in *types.Interner, args []types.TypeID) types.TypeID {
				if len(args) == 0 {
					return types.NoType
				}
				elem := in.Type(arrayElem(in, args[0]))
				return in.Map(elem.Left, elem.Right)
			},
			Impl: implAsMap},
		{Name: "as_pairs", MinArgs: 1, MaxArgs: 1, MinVersion: "1.1",
			Return: func(in *types.Interner, args []types.TypeID) types.TypeID {
				if len(args) == 0 {
					return types.NoType
				}
				m := in.Type(args[0])
				return in.Array(in.Pair(m.Key, m.Value), false)
			},
			Impl: implAsPairs},
		{Name: "keys", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, args []types.TypeID) types.TypeID {
				if len(args) == 0 {
					return types.NoType
				}
				return in.Array(in.Type(args[0]).Key, false)
			},
			Impl: implKeys},
		{Name: "floor", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Int() },
			Impl:   implFloor},
		{Name: "ceil", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Int() },
			Impl:   implCeil},
		{Name: "round", MinArgs: 1, MaxArgs: 1, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Int() },
			Impl:   implRound},
		{Name: "min", MinArgs: 2, MaxArgs: 2, MinVersion: "1.0",
			Return: numericUnify, Impl: implMin},
		{Name: "max", MinArgs: 2, MaxArgs: 2, MinVersion: "1.0",
			Return: numericUnify, Impl: implMax},
		{Name: "sep", MinArgs: 2, MaxArgs: 2, MinVersion: "1.1",
			Return: fixedString, Impl: implSep},
		{Name: "prefix", MinArgs: 2, MaxArgs: 2, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Array(in.String(), false) },
			Impl:   implPrefix},
		{Name: "suffix", MinArgs: 2, MaxArgs: 2, MinVersion: "1.1",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Array(in.String(), false) },
			Impl:   implSuffix},
		{Name: "quote", MinArgs: 1, MaxArgs: 1, MinVersion: "1.1",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Array(in.String(), false) },
			Impl:   implQuote},
		{Name: "squote", MinArgs: 1, MaxArgs: 1, MinVersion: "1.1",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.Array(in.String(), false) },
			Impl:   implSquote},
		{Name: "stdout", MinArgs: 0, MaxArgs: 0, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.File() },
			Impl:   implStdout},
		{Name: "stderr", MinArgs: 0, MaxArgs: 0, MinVersion: "1.0",
			Return: func(in *types.Interner, _ []types.TypeID) types.TypeID { return in.File() },
			Impl:   implStderr},
	}
	out := make(map[string]Func, len(fns))
	for _, f := range fns {
		out[f.Name] = f
	}
	return out
}

func fixedString(in *types.Interner, _ []types.TypeID) types.TypeID { return in.String() }

func pairArrayReturn(in *types.Interner, args []types.TypeID) types.TypeID {
	if len(args) < 2 {
		return types.NoType
	}
	return in.Array(in.Pair(arrayElem(in, args[0]), arrayElem(in, args[1])), false)
}

func numericUnify(in *types.Interner, args []types.TypeID) types.TypeID {
	if len(args) < 2 {
		return in.Int()
	}
	if id, ok := in.Unify(args[0], args[1]); ok {
		return id
	}
	return in.Int()
}

// --- I/O functions ---

func implReadLines(env Env, args []value.Value) (value.Value, error) {
	content, err := env.ReadFile(env.ResolvePath(args[0].Path()))
	if err != nil {
		return value.Value{}, err
	}
	lines := splitLines(content)
	elems := make([]value.Value, len(lines))
	for i, l := range lines {
		elems[i] = value.String(l)
	}
	return value.Array(env.Interner().String(), elems), nil
}

func implReadString(env Env, args []value.Value) (value.Value, error) {
	content, err := env.ReadFile(env.ResolvePath(args[0].Path()))
	if err != nil {
		return value.Value{}, err
	}
	return value.String(strings.TrimRight(content, "\n")), nil
}

func implReadInt(env Env, args []value.Value) (value.Value, error) {
	s, err := implReadString(env, args)
	if err != nil {
		return value.Value{}, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s.Str()), 10, 64)
	if err != nil {
		return value.Value{}, fmt.Errorf("read_int: %w", err)
	}
	return value.Int(n), nil
}

func implReadFloat(env Env, args []value.Value) (value.Value, error) {
	s, err := implReadString(env, args)
	if err != nil {
		return value.Value{}, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s.Str()), 64)
	if err != nil {
		return value.Value{}, fmt.Errorf("read_float: %w", err)
	}
	return value.Float(f), nil
}

func implReadBoolean(env Env, args []value.Value) (value.Value, error) {
	s, err := implReadString(env, args)
	if err != nil {
		return value.Value{}, err
	}
	switch strings.ToLower(strings.TrimSpace(s.Str())) {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	}
	return value.Value{}, fmt.Errorf("read_boolean: not a boolean literal: %q", s.Str())
}

func implReadTSV(env Env, args []value.Value) (value.Value, error) {
	content, err := env.ReadFile(env.ResolvePath(args[0].Path()))
	if err != nil {
		return value.Value{}, err
	}
	var rows []value.Value
	for _, line := range splitLines(content) {
		cells := strings.Split(line, "\t")
		row := make([]value.Value, len(cells))
		for i, c := range cells {
			row[i] = value.String(c)
		}
		rows = append(rows, value.Array(env.Interner().String(), row))
	}
	return value.Array(env.Interner().Array(env.Interner().String(), false), rows), nil
}

func implReadMap(env Env, args []value.Value) (value.Value, error) {
	content, err := env.ReadFile(env.ResolvePath(args[0].Path()))
	if err != nil {
		return value.Value{}, err
	}
	var entries []value.MapEntry
	for _, line := range splitLines(content) {
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return value.Value{}, fmt.Errorf("read_map: malformed line %q", line)
		}
		entries = append(entries, value.MapEntry{Key: value.String(parts[0]), Value: value.String(parts[1])})
	}
	return value.Map(entries), nil
}

// implReadJSON parses no JSON: it returns an error for every input (see
// DESIGN.md).
func implReadJSON(env Env, args []value.Value) (value.Value, error) {
	return value.Value{}, fmt.Errorf("read_json: not yet supported")
}

func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func implWriteLines(env Env, args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, e := range args[0].Elements() {
		b.WriteString(e.Str())
		b.WriteByte('\n')
	}
	p, err := env.WriteFile(b.String())
	if err != nil {
		return value.Value{}, err
	}
	return value.File(p), nil
}

func implWriteTSV(env Env, args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, row := range args[0].Elements() {
		cells := make([]string, 0, len(row.Elements()))
		for _, c := range row.Elements() {
			cells = append(cells, c.Str())
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	p, err := env.WriteFile(b.String())
	if err != nil {
		return value.Value{}, err
	}
	return value.File(p), nil
}

func implWriteMap(env Env, args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, e := range args[0].Entries() {
		b.WriteString(e.Key.Str())
		b.WriteByte('\t')
		b.WriteString(e.Value.Str())
		b.WriteByte('\n')
	}
	p, err := env.WriteFile(b.String())
	if err != nil {
		return value.Value{}, err
	}
	return value.File(p), nil
}

// implWriteJSON writes no JSON: like implReadJSON, it returns an error for
// every input.
func implWriteJSON(env Env, args []value.Value) (value.Value, error) {
	return value.Value{}, fmt.Errorf("write_json: not yet supported")
}

func implGlob(env Env, args []value.Value) (value.Value, error) {
	matches, err := env.Glob(args[0].Str())
	if err != nil {
		return value.Value{}, err
	}
	sort.Strings(matches)
	elems := make([]value.Value, len(matches))
	for i, m := range matches {
		elems[i] = value.File(m)
	}
	return value.Array(env.Interner().File(), elems), nil
}

// --- pure functions ---

func implBasename(env Env, args []value.Value) (value.Value, error) {
	name := path.Base(args[0].Str())
	if len(args) == 2 {
		name = strings.TrimSuffix(name, args[1].Str())
	}
	return value.String(name), nil
}

func implSub(env Env, args []value.Value) (value.Value, error) {
	input, pattern, replacement := args[0].Str(), args[1].Str(), args[2].Str()
	re, err := compileRegexp(pattern)
	if err != nil {
		return value.Value{}, fmt.Errorf("sub: %w", err)
	}
	return value.String(re.ReplaceAllString(input, replacement)), nil
}

func implSize(env Env, args []value.Value) (value.Value, error) {
	unit := "B"
	if len(args) == 2 {
		unit = args[1].Str()
	}
	var total int64
	switch args[0].Kind {
	case types.KindNone:
		return value.Float(0), nil
	case types.KindFile, types.KindDirectory:
		n, err := env.Stat(env.ResolvePath(args[0].Path()))
		if err != nil {
			return value.Value{}, err
		}
		total = n
	case types.KindArray:
		for _, e := range args[0].Elements() {
			if e.IsNone() {
				continue
			}
			n, err := env.Stat(env.ResolvePath(e.Path()))
			if err != nil {
				return value.Value{}, err
			}
			total += n
		}
	default:
		return value.Value{}, fmt.Errorf("size: unsupported argument kind %v", args[0].Kind)
	}
	return value.Float(float64(total) / unitDivisor(unit)), nil
}

func unitDivisor(unit string) float64 {
	switch strings.ToUpper(unit) {
	case "B":
		return 1
	case "KB", "K":
		return 1e3
	case "MB", "M":
		return 1e6
	case "GB", "G":
		return 1e9
	case "TB", "T":
		return 1e12
	case "KIB":
		return 1024
	case "MIB":
		return 1024 * 1024
	case "GIB":
		return 1024 * 1024 * 1024
	case "TIB":
		return 1024 * 1024 * 1024 * 1024
	default:
		return 1
	}
}

func implRange(env Env, args []value.Value) (value.Value, error) {
	n := args[0].Int()
	if n < 0 {
		return value.Value{}, fmt.Errorf("range: negative length %d", n)
	}
	elems := make([]value.Value, n)
	for i := int64(0); i < n; i++ {
		elems[i] = value.Int(i)
	}
	return value.Array(env.Interner().Int(), elems), nil
}

func implSelectFirst(env Env, args []value.Value) (value.Value, error) {
	for _, e := range args[0].Elements() {
		if !e.IsNone() {
			return e, nil
		}
	}
	return value.Value{}, fmt.Errorf("select_first: every element is None")
}

func implSelectAll(env Env, args []value.Value) (value.Value, error) {
	var out []value.Value
	elemType := types.NoType
	for _, e := range args[0].Elements() {
		if !e.IsNone() {
			out = append(out, e)
			elemType = e.Type
		}
	}
	return value.Array(elemType, out), nil
}

func implDefined(env Env, args []value.Value) (value.Value, error) {
	return value.Bool(!args[0].IsNone()), nil
}

func implLength(env Env, args []value.Value) (value.Value, error) {
	switch args[0].Kind {
	case types.KindArray:
		return value.Int(int64(len(args[0].Elements()))), nil
	case types.KindMap:
		return value.Int(int64(len(args[0].Entries()))), nil
	}
	return value.Value{}, fmt.Errorf("length: unsupported argument kind %v", args[0].Kind)
}

func implFlatten(env Env, args []value.Value) (value.Value, error) {
	var out []value.Value
	elemType := types.NoType
	for _, inner := range args[0].Elements() {
		out = append(out, inner.Elements()...)
		elemType = inner.Type
	}
	if elemType != types.NoType {
		elemType = env.Interner().Type(elemType).Elem
	}
	return value.Array(elemType, out), nil
}

func implZip(env Env, args []value.Value) (value.Value, error) {
	a, b := args[0].Elements(), args[1].Elements()
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i] = value.Pair(a[i], b[i])
	}
	return value.Array(types.NoType, out), nil
}

func implCross(env Env, args []value.Value) (value.Value, error) {
	a, b := args[0].Elements(), args[1].Elements()
	out := make([]value.Value, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, value.Pair(x, y))
		}
	}
	return value.Array(types.NoType, out), nil
}

func implAsMap(env Env, args []value.Value) (value.Value, error) {
	entries := make([]value.MapEntry, 0, len(args[0].Elements()))
	for _, p := range args[0].Elements() {
		l, r := p.PairParts()
		entries = append(entries, value.MapEntry{Key: l, Value: r})
	}
	return value.Map(entries), nil
}

func implAsPairs(env Env, args []value.Value) (value.Value, error) {
	out := make([]value.Value, 0, len(args[0].Entries()))
	for _, e := range args[0].Entries() {
		out = append(out, value.Pair(e.Key, e.Value))
	}
	return value.Array(types.NoType, out), nil
}

func implKeys(env Env, args []value.Value) (value.Value, error) {
	out := make([]value.Value, 0, len(args[0].Entries()))
	elemType := types.NoType
	for _, e := range args[0].Entries() {
		out = append(out, e.Key)
		elemType = e.Key.Type
	}
	return value.Array(elemType, out), nil
}

func implFloor(env Env, args []value.Value) (value.Value, error) {
	return value.Int(int64(math.Floor(numericFloat(args[0])))), nil
}

func implCeil(env Env, args []value.Value) (value.Value, error) {
	return value.Int(int64(math.Ceil(numericFloat(args[0])))), nil
}

func implRound(env Env, args []value.Value) (value.Value, error) {
	return value.Int(int64(math.Round(numericFloat(args[0])))), nil
}

func numericFloat(v value.Value) float64 {
	if v.Kind == types.KindInt {
		return float64(v.Int())
	}
	return v.Float()
}

func implMin(env Env, args []value.Value) (value.Value, error) {
	return numericPick(args[0], args[1], func(a, b float64) bool { return a <= b }), nil
}

func implMax(env Env, args []value.Value) (value.Value, error) {
	return numericPick(args[0], args[1], func(a, b float64) bool { return a >= b }), nil
}

func numericPick(a, b value.Value, keepA func(x, y float64) bool) value.Value {
	if keepA(numericFloat(a), numericFloat(b)) {
		return a
	}
	return b
}

func implSep(env Env, args []value.Value) (value.Value, error) {
	sep := args[0].Str()
	parts := make([]string, 0, len(args[1].Elements()))
	for _, e := range args[1].Elements() {
		parts = append(parts, e.Str())
	}
	return value.String(strings.Join(parts, sep)), nil
}

func implPrefix(env Env, args []value.Value) (value.Value, error) {
	return mapStrings(env, args[0].Str(), args[1].Elements(), func(p, s string) string { return p + s }), nil
}

func implSuffix(env Env, args []value.Value) (value.Value, error) {
	return mapStrings(env, args[0].Str(), args[1].Elements(), func(suf, s string) string { return s + suf }), nil
}

func implQuote(env Env, args []value.Value) (value.Value, error) {
	return mapStrings(env, "", args[0].Elements(), func(_, s string) string { return `"` + s + `"` }), nil
}

func implSquote(env Env, args []value.Value) (value.Value, error) {
	return mapStrings(env, "", args[0].Elements(), func(_, s string) string { return "'" + s + "'" }), nil
}

func mapStrings(env Env, arg string, elems []value.Value, f func(arg, s string) string) value.Value {
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		out[i] = value.String(f(arg, e.Str()))
	}
	return value.Array(env.Interner().String(), out)
}

func implStdout(env Env, _ []value.Value) (value.Value, error) {
	return value.File(env.ResolvePath("stdout")), nil
}

func implStderr(env Env, _ []value.Value) (value.Value, error) {
	return value.File(env.ResolvePath("stderr")), nil
}
