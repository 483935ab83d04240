// Package parser implements the WDL recursive-descent + Pratt parser (§4.4):
// top-level items and statements are parsed by dedicated recursive-descent
// functions, expressions by a precedence-climbing loop, and every production
// builds the lossless cst.Tree via cst.Builder.
package parser

import (
	"slices"

	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/lexer"
	"wdlc/internal/source"
	"wdlc/internal/token"
)

// Options configures a parse.
type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error budget for this parse has been spent.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Result is the outcome of parsing a single document.
type Result struct {
	Tree *cst.Tree
}

// Parser holds the mutable state for parsing one document.
type Parser struct {
	lx       *lexer.Lexer
	b        *cst.Builder
	file     *source.File
	opts     Options
	lastSpan source.Span
}

// ParseDocument parses a whole WDL document (§4.4) starting from a fresh
// lexer over file. The returned tree is always structurally well-formed:
// invalid input produces Abandoned/Error nodes and diagnostics, never a
// parse failure (§4.4's "no invalid source ever fails parsing").
func ParseDocument(file *source.File, lx *lexer.Lexer, opts Options) Result {
	p := &Parser{
		lx:       lx,
		b:        cst.NewBuilder(),
		file:     file,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	p.b.StartNode(cst.KindDocument)
	p.parseVersionStatement()
	for !p.at(token.EOF) {
		if !p.parseTopLevelItem() {
			break
		}
	}
	rootID := p.b.FinishNode()

	return Result{Tree: cst.NewTree(p.b, rootID, file)}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// advance consumes the next token, appends it (with its leading trivia) to
// the innermost CST node frame, and returns it.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	p.b.Token(tok.Kind, tok.Text, tok.Leading)
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// expect consumes the next token if it matches k; otherwise it reports code
// and leaves the token stream positioned for error recovery.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.currentErrorSpan()
	p.err(code, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: p.lx.Peek().Text}, false
}

func (p *Parser) currentErrorSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF {
		return p.lastSpan.ZeroideToEnd()
	}
	return peek.Span
}

func (p *Parser) err(code diag.Code, sp source.Span, msg string) {
	p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if p.opts.Reporter == nil {
		return
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Enough() {
		return
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
}

// resyncUntil consumes tokens, wrapping them in an Error node, until Peek
// matches a stop-set member or EOF; the stop token itself is left unconsumed
// (§4.4 error recovery: sync-token sets per context).
func (p *Parser) resyncUntil(stop ...token.Kind) {
	p.b.StartNode(cst.KindError)
	for !p.at(token.EOF) && !p.atOr(stop...) {
		p.advance()
	}
	p.b.FinishNode()
}

// topLevelSync is the statement-starter sync set for top-level items.
var topLevelSync = []token.Kind{
	token.KwImport, token.KwStruct, token.KwEnum, token.KwTask, token.KwWorkflow, token.EOF,
}
