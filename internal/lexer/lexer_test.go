package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"wdlc/internal/diag"
	"wdlc/internal/lexer"
	"wdlc/internal/source"
	"wdlc/internal/token"
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
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.wdl", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	return lx, reporter
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens
}

func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)
	if len(tokens) > 0 && tokens[len(tokens)-1].Kind == token.EOF {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d\ninput: %q\ntokens: %s\nerrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("token %d: expected %v, got %v (text %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
}

func expectSingleToken(t *testing.T, input string, kind token.Kind, text string) {
	t.Helper()
	lx, _ := makeTestLexer(input)
	tok := lx.Next()
	if tok.Kind != kind {
		t.Errorf("expected kind %v, got %v", kind, tok.Kind)
	}
	if tok.Text != text {
		t.Errorf("expected text %q, got %q", text, tok.Text)
	}
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func TestIdentifiers(t *testing.T) {
	tests := []string{"foo", "_bar", "x123", "camelCase", "snake_case_name"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			expectSingleToken(t, in, token.Ident, in)
		})
	}
}

func TestIdentifiersUnicode(t *testing.T) {
	for _, in := range []string{"имя_переменной", "変数"} {
		t.Run(in, func(t *testing.T) {
			expectSingleToken(t, in, token.Ident, in)
		})
	}
}

func TestKeywordsCaseSensitive(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"version", token.KwVersion},
		{"import", token.KwImport},
		{"workflow", token.KwWorkflow},
		{"task", token.KwTask},
		{"struct", token.KwStruct},
		{"enum", token.KwEnum},
		{"input", token.KwInput},
		{"output", token.KwOutput},
		{"command", token.KwCommand},
		{"runtime", token.KwRuntime},
		{"requirements", token.KwRequirements},
		{"hints", token.KwHints},
		{"meta", token.KwMeta},
		{"parameter_meta", token.KwParameterMeta},
		{"call", token.KwCall},
		{"if", token.KwIf},
		{"then", token.KwThen},
		{"else", token.KwElse},
		{"scatter", token.KwScatter},
		{"in", token.KwIn},
		{"after", token.KwAfter},
		{"object", token.KwObject},
		{"Boolean", token.KwBoolean},
		{"Int", token.KwInt},
		{"Float", token.KwFloat},
		{"String", token.KwString},
		{"File", token.KwFile},
		{"Directory", token.KwDirectory},
		{"Array", token.KwArrayType},
		{"Map", token.KwMapType},
		{"Pair", token.KwPairType},
		{"Object", token.KwObjectType},
		{"None", token.KwNone},
		{"true", token.BoolLit},
		{"false", token.BoolLit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, _ := makeTestLexer(tt.input)
			tok := lx.Next()
			if tok.Kind != tt.kind {
				t.Errorf("expected %v, got %v", tt.kind, tok.Kind)
			}
		})
	}
}

func TestKeywordsAreCaseSensitive(t *testing.T) {
	// WDL keywords only match their exact case; any other case is an Ident.
	for _, in := range []string{"Version", "VERSION", "boolean", "INT", "Call"} {
		t.Run(in, func(t *testing.T) {
			lx, _ := makeTestLexer(in)
			tok := lx.Next()
			if tok.Kind != token.Ident {
				t.Errorf("expected Ident for %q, got %v", in, tok.Kind)
			}
		})
	}
}

func TestNumbersDecimal(t *testing.T) {
	for _, in := range []string{"0", "123", "1_000_000"} {
		t.Run(in, func(t *testing.T) {
			expectSingleToken(t, in, token.IntLit, in)
		})
	}
}

func TestNumbersOctalAndHex(t *testing.T) {
	tests := []string{"0o777", "0O17", "0x1F", "0XDEAD_BEEF"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			expectSingleToken(t, in, token.IntLit, in)
		})
	}
}

func TestNumbersFloat(t *testing.T) {
	tests := []string{"1.0", "3.14", "1.", ".5", "1e10", "1.5e-2", "1E+3"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			expectSingleToken(t, in, token.FloatLit, in)
		})
	}
}

func TestNumberBadExponent(t *testing.T) {
	lx, reporter := makeTestLexer("1e")
	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tok.Kind)
	}
	if !reporter.HasErrors() {
		t.Fatal("expected a diagnostic for a bad exponent")
	}
}

func TestDotFollowedByIdent(t *testing.T) {
	expectTokens(t, ".x", []token.Kind{token.Dot, token.Ident})
}

func TestSimpleDoubleQuotedString(t *testing.T) {
	expectTokens(t, `"hello"`, []token.Kind{
		token.DQuoteOpen, token.StringText, token.DQuoteClose,
	})
}

func TestEmptyDoubleQuotedString(t *testing.T) {
	expectTokens(t, `""`, []token.Kind{token.DQuoteOpen, token.DQuoteClose})
}

func TestSingleQuotedString(t *testing.T) {
	expectTokens(t, `'hello'`, []token.Kind{
		token.SQuoteOpen, token.StringText, token.SQuoteClose,
	})
}

func TestStringWithPlaceholder(t *testing.T) {
	expectTokens(t, `"hi ~{name}!"`, []token.Kind{
		token.DQuoteOpen,
		token.StringText,
		token.PlaceholderOpenTilde,
		token.Ident,
		token.RBrace,
		token.StringText,
		token.DQuoteClose,
	})
}

func TestStringWithLegacyDollarPlaceholder(t *testing.T) {
	expectTokens(t, `"${x}"`, []token.Kind{
		token.DQuoteOpen,
		token.PlaceholderOpenDollar,
		token.Ident,
		token.RBrace,
		token.DQuoteClose,
	})
}

func TestPlaceholderWithNestedFieldAccess(t *testing.T) {
	// the brace closing the placeholder must not be confused with other syntax
	// inside the placeholder expression.
	expectTokens(t, `"~{x.y}"`, []token.Kind{
		token.DQuoteOpen,
		token.PlaceholderOpenTilde,
		token.Ident, token.Dot, token.Ident,
		token.RBrace,
		token.DQuoteClose,
	})
}

func TestStringUnterminated(t *testing.T) {
	lx, reporter := makeTestLexer(`"hello`)
	_ = lx.Next() // DQuoteOpen
	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid for unterminated string, got %v", tok.Kind)
	}
	if !reporter.HasErrors() {
		t.Error("expected a diagnostic for an unterminated string")
	}
}

func TestHeredocCommand(t *testing.T) {
	expectTokens(t, "<<< echo hi >>>", []token.Kind{
		token.HeredocOpen,
		token.CommandText,
		token.HeredocClose,
	})
}

func TestHeredocCommandWithPlaceholder(t *testing.T) {
	expectTokens(t, "<<< echo ~{greeting} >>>", []token.Kind{
		token.HeredocOpen,
		token.CommandText,
		token.PlaceholderOpenTilde,
		token.Ident,
		token.RBrace,
		token.CommandText,
		token.HeredocClose,
	})
}

func TestBraceCommandSection(t *testing.T) {
	expectTokens(t, "command { echo hi }", []token.Kind{
		token.KwCommand,
		token.LBrace,
		token.CommandText,
		token.RBrace,
	})
}

func TestBraceCommandWithLiteralBraces(t *testing.T) {
	// the literal '{'/'}' of a shell brace-expansion must not close the
	// command section early.
	expectTokens(t, "command { for x in {1..3}; do echo $x; done }", []token.Kind{
		token.KwCommand,
		token.LBrace,
		token.CommandText,
		token.RBrace,
	})
}

func TestVersionStatement(t *testing.T) {
	expectTokens(t, "version 1.0", []token.Kind{
		token.KwVersion, token.VersionIdent,
	})
	expectTokens(t, "version draft-3", []token.Kind{
		token.KwVersion, token.VersionIdent,
	})
}

func TestOperatorsAndPunctuation(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"+", token.Plus}, {"-", token.Minus}, {"*", token.Star}, {"/", token.Slash},
		{"%", token.Percent}, {"=", token.Assign}, {"==", token.EqEq}, {"!", token.Bang},
		{"!=", token.BangEq}, {"<", token.Lt}, {"<=", token.LtEq}, {">", token.Gt},
		{">=", token.GtEq}, {"&&", token.AndAnd}, {"||", token.OrOr}, {"?", token.Question},
		{":", token.Colon}, {";", token.Semicolon}, {",", token.Comma}, {".", token.Dot},
		{"(", token.LParen}, {")", token.RParen}, {"{", token.LBrace}, {"}", token.RBrace},
		{"[", token.LBracket}, {"]", token.RBracket},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestOperatorGreedyMatch(t *testing.T) {
	expectTokens(t, "a==b", []token.Kind{token.Ident, token.EqEq, token.Ident})
	expectTokens(t, "a=b", []token.Kind{token.Ident, token.Assign, token.Ident})
}

func TestTriviaSpacesAndNewlines(t *testing.T) {
	lx, _ := makeTestLexer("  \t  foo")
	tok := lx.Next()
	if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaSpace {
		t.Fatalf("expected a single coalesced TriviaSpace, got %+v", tok.Leading)
	}

	lx2, _ := makeTestLexer("\n\n\nfoo")
	tok2 := lx2.Next()
	if len(tok2.Leading) != 1 || tok2.Leading[0].Kind != token.TriviaNewline {
		t.Fatalf("expected a single coalesced TriviaNewline, got %+v", tok2.Leading)
	}
}

func TestTriviaLineComment(t *testing.T) {
	lx, _ := makeTestLexer("# a comment\nfoo")
	tok := lx.Next()
	if len(tok.Leading) != 2 {
		t.Fatalf("expected 2 leading trivia, got %d", len(tok.Leading))
	}
	if tok.Leading[0].Kind != token.TriviaLineComment {
		t.Errorf("expected TriviaLineComment, got %v", tok.Leading[0].Kind)
	}
}

func TestTriviaSuppressDirective(t *testing.T) {
	lx, _ := makeTestLexer("#@ except: DuplicateInput, UnusedImport\nworkflow")
	tok := lx.Next()
	if len(tok.Leading) == 0 || tok.Leading[0].Kind != token.TriviaSuppress {
		t.Fatalf("expected a TriviaSuppress trivia, got %+v", tok.Leading)
	}
	got := tok.Leading[0].Suppress
	if got == nil {
		t.Fatal("expected a parsed SuppressDirective")
	}
	want := []string{"DuplicateInput", "UnusedImport"}
	if len(got.Rules) != len(want) {
		t.Fatalf("expected rules %v, got %v", want, got.Rules)
	}
	for i := range want {
		if got.Rules[i] != want[i] {
			t.Errorf("rule %d: expected %q, got %q", i, want[i], got.Rules[i])
		}
	}
}

func TestLexerPeekAndPush(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	p := lx.Peek()
	if p.Kind != token.Ident || p.Text != "a" {
		t.Fatalf("expected peek 'a', got %v %q", p.Kind, p.Text)
	}
	n := lx.Next()
	if n.Text != "a" {
		t.Fatalf("expected next to return peeked token, got %q", n.Text)
	}
	n2 := lx.Next()
	if n2.Text != "b" {
		t.Fatalf("expected 'b', got %q", n2.Text)
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	lx, _ := makeTestLexer("x")
	_ = lx.Next()
	if tok := lx.Next(); tok.Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", tok.Kind)
	}
	if tok := lx.Next(); tok.Kind != token.EOF {
		t.Fatalf("expected EOF again, got %v", tok.Kind)
	}
}

func TestLexerEmptyAndWhitespaceOnly(t *testing.T) {
	lx, _ := makeTestLexer("")
	if tok := lx.Next(); tok.Kind != token.EOF {
		t.Errorf("expected EOF for empty input, got %v", tok.Kind)
	}
	lx2, _ := makeTestLexer("   \n\t  ")
	if tok := lx2.Next(); tok.Kind != token.EOF {
		t.Errorf("expected EOF for whitespace-only input, got %v", tok.Kind)
	}
}

func TestLexerUnknownCharacter(t *testing.T) {
	for _, in := range []string{"§", "€", "`"} {
		t.Run(in, func(t *testing.T) {
			lx, reporter := makeTestLexer(in)
			tok := lx.Next()
			if tok.Kind != token.Invalid {
				t.Errorf("expected Invalid for %q, got %v", in, tok.Kind)
			}
			if !reporter.HasErrors() {
				t.Error("expected an error report for an unknown character")
			}
		})
	}
}

func BenchmarkLexerTaskDocument(b *testing.B) {
	input := `version 1.0

task greet {
  input {
    String name
  }
  command <<<
    echo "hello ~{name}"
  >>>
  output {
    String greeting = read_string(stdout())
  }
}
`
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("bench.wdl", []byte(input))
	file := fs.Get(fileID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lx := lexer.New(file, lexer.Options{})
		for {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
		}
	}
}
