package eval

import (
	"fmt"
	"strings"

	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/token"
	"wdlc/internal/value"
)

// evalStringLiteral renders a quoted string literal's interleaved text and
// placeholders into a single String value.
func evalStringLiteral(n *cst.Node, env *Env) (value.Value, error) {
	s, err := RenderString(n, env)
	if err != nil {
		return value.Value{}, err
	}
	return value.String(s), nil
}

// RenderString evaluates a KindStringLiteral/KindCommandSection-shaped
// node's interleaved text runs and placeholders into its final string
// (§4.7 "placeholders in strings/commands render by evaluating the inner
// expression").
func RenderString(n *cst.Node, env *Env) (string, error) {
	var b strings.Builder
	for _, e := range n.ChildrenWithTokens() {
		switch {
		case e.Token != nil && (e.Token.Kind() == token.StringText || e.Token.Kind() == token.CommandText):
			b.WriteString(unescapeStringText(e.Token.Text()))
		case e.Node != nil && e.Node.Kind() == cst.KindPlaceholder:
			s, err := renderPlaceholder(e.Node, env)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

// RenderCommand renders a task's command section into its final,
// whitespace-stripped text (§4.8 step 2: "render command with whitespace
// stripping"). The common leading whitespace is computed from the
// command's raw, unsubstituted text runs so a placeholder's own
// substituted content (which may itself span lines, e.g. via `sep`)
// never perturbs the indent calculation; once computed, the same prefix
// is stripped from every raw run before placeholders are evaluated and
// interleaved back in. Before that, a whitespace-only first line is
// dropped, and trailing spaces/tabs plus one final newline are trimmed
// when the command starts or ends with text.
func RenderCommand(n *cst.Node, env *Env) (string, error) {
	var rawParts []string
	textFirst, textLast := true, false
	elems := n.ChildrenWithTokens()
	for _, e := range elems {
		if e.Token != nil && e.Token.Kind() == token.CommandText {
			rawParts = append(rawParts, unescapeStringText(e.Token.Text()))
			textLast = true
		} else if e.Node != nil && e.Node.Kind() == cst.KindPlaceholder {
			textFirst, textLast = textFirst && len(rawParts) > 0, false
		}
	}
	if textFirst && len(rawParts) > 0 {
		if i := strings.IndexByte(rawParts[0], '\n'); i >= 0 && strings.TrimSpace(rawParts[0][:i]) == "" {
			rawParts[0] = rawParts[0][i+1:]
		}
	}
	if textLast {
		last := strings.TrimRight(rawParts[len(rawParts)-1], " \t")
		rawParts[len(rawParts)-1] = strings.TrimSuffix(strings.TrimSuffix(last, "\n"), "\r")
	}
	stripped, ok := StripCommonIndent(rawParts)
	if !ok {
		stripped = rawParts
	}

	var b strings.Builder
	next := 0
	for _, e := range elems {
		switch {
		case e.Token != nil && e.Token.Kind() == token.CommandText:
			b.WriteString(stripped[next])
			next++
		case e.Node != nil && e.Node.Kind() == cst.KindPlaceholder:
			s, err := renderPlaceholder(e.Node, env)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

// renderPlaceholder evaluates a `~{expr [option ...]}` placeholder,
// applying its options in §4.7's fixed order: `default` substitutes when
// the value is None, then `sep` joins an Array, then `true`/`false` choose
// between two strings based on a Boolean. A placeholder only ever carries
// one of sep/true-false, so the order only matters for default's
// None-substitution happening first. Option conflicts are rejected at
// analysis time (internal/sema), not here.
func renderPlaceholder(n *cst.Node, env *Env) (string, error) {
	ph, ok := astview.Cast(n).(astview.Placeholder)
	if !ok {
		return "", fmt.Errorf("eval: malformed placeholder")
	}
	v, err := Eval(ph.Expr(), env)
	if err != nil {
		return "", err
	}

	var def, sep *cst.Node
	var trueStr, falseStr *cst.Node
	for _, opt := range ph.Options() {
		optVal := lastChild(opt.Syntax())
		switch opt.Name() {
		case "default":
			def = optVal
		case "sep":
			sep = optVal
		case "true":
			trueStr = optVal
		case "false":
			falseStr = optVal
		}
	}

	if v.IsNone() {
		if def != nil {
			dv, err := Eval(def, env)
			if err != nil {
				return "", err
			}
			return stringOf(dv), nil
		}
		return "", nil
	}

	if sep != nil {
		sv, err := Eval(sep, env)
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, len(v.Elements()))
		for _, e := range v.Elements() {
			parts = append(parts, stringOf(e))
		}
		return strings.Join(parts, sv.Str()), nil
	}

	if trueStr != nil || falseStr != nil {
		var chosen *cst.Node
		if v.Bool() {
			chosen = trueStr
		} else {
			chosen = falseStr
		}
		if chosen == nil {
			return "", nil
		}
		cv, err := Eval(chosen, env)
		if err != nil {
			return "", err
		}
		return stringOf(cv), nil
	}

	return stringOf(v), nil
}

func lastChild(n *cst.Node) *cst.Node {
	children := n.Children()
	if len(children) == 0 {
		return nil
	}
	return children[len(children)-1]
}

func unescapeStringText(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"', '\'':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// StripCommonIndent removes the common leading-whitespace prefix of every
// non-empty static text line in parts (§4.8 step 2: "measured before
// placeholder substitution"). ok is false when the parts mix tabs and
// spaces in a way that makes a common prefix undecidable — callers should
// render the command as-is and emit a warning in that case.
func StripCommonIndent(parts []string) (stripped []string, ok bool) {
	prefix, ok := commonIndent(parts)
	if !ok {
		return parts, false
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = stripPrefixPerLine(p, prefix)
	}
	return out, true
}

func commonIndent(parts []string) (string, bool) {
	var prefix string
	set, sawTab, sawSpace := false, false, false
	for _, part := range parts {
		for _, line := range strings.Split(part, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			indent := leadingWhitespace(line)
			sawTab = sawTab || strings.ContainsRune(indent, '\t')
			sawSpace = sawSpace || strings.ContainsRune(indent, ' ')
			if !set {
				prefix, set = indent, true
				continue
			}
			prefix = commonPrefixOf(prefix, indent)
		}
	}
	if !set {
		return "", true
	}
	// tabs in some indentation and spaces in some (the same or another
	// line's) leave no decidable common prefix.
	if sawTab && sawSpace {
		return "", false
	}
	return prefix, true
}

func leadingWhitespace(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

func commonPrefixOf(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func stripPrefixPerLine(s, prefix string) string {
	if prefix == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
