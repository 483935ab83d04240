package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"wdlc/internal/diag"
	"wdlc/internal/source"
	"wdlc/internal/token"
)

const maxTokenLength = 64 * 1024 // hard limit in bytes to avoid pathological tokens

// modeKind identifies which lexical context the cursor is currently inside.
// WDL's grammar mixes tokenized code with raw text regions (quoted strings,
// heredoc/brace command sections), each with its own scanning rules; a mode
// stack lets the lexer switch rule sets and resume the outer context once a
// region closes (§4.2).
type modeKind uint8

const (
	modeNormal modeKind = iota
	modeDQuote
	modeSQuote
	modeHeredocCommand
	modeBraceCommand
	modePlaceholder
)

type lexMode struct {
	kind modeKind
	// depth tracks nested '{'/'}' pairs so a closing brace can be told
	// apart from one that terminates the enclosing placeholder/command.
	depth int
}

// Lexer converts source content into a stream of tokens.
type Lexer struct {
	file      *source.File
	cursor    Cursor
	opts      Options
	modes     []lexMode
	lookQueue []token.Token
	hold      []token.Trivia
	last    token.Token
	hasLast bool

	justSawVersion bool
	justSawCommand bool
}

// New creates a new Lexer for the provided file.
func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:  file,
		cursor: NewCursor(file),
		opts:  opts,
		modes: []lexMode{{kind: modeNormal}},
	}
}

// SetRange restricts the lexer to a specific range within the file.
func (lx *Lexer) SetRange(start, end uint32) {
	if lx == nil {
		return
	}
	lx.cursor.Off = start
	if end != 0 {
		lx.cursor.Limit = end
	}
	lx.modes = []lexMode{{kind: modeNormal}}
	lx.lookQueue = nil
	lx.hold = nil
	lx.last = token.Token{}
	lx.hasLast = false
	lx.justSawVersion = false
	lx.justSawCommand = false
}

func (lx *Lexer) curMode() modeKind {
	return lx.modes[len(lx.modes)-1].kind
}

func (lx *Lexer) pushMode(m lexMode) {
	lx.modes = append(lx.modes, m)
}

func (lx *Lexer) popMode() {
	if len(lx.modes) > 1 {
		lx.modes = lx.modes[:len(lx.modes)-1]
	}
}

// Next returns the next significant token with its Leading trivia already
// attached. Once EOF is reached it always returns an EOF token.
func (lx *Lexer) Next() token.Token {
	var tok token.Token
	if len(lx.lookQueue) > 0 {
		tok = lx.lookQueue[0]
		lx.lookQueue = lx.lookQueue[1:]
	} else {
		tok = lx.lexOne()
	}
	lx.last = tok
	lx.hasLast = true
	return tok
}

// lexOne scans exactly one token straight from the cursor, bypassing the
// lookahead queue. Used by Next (when the queue is empty) and by PeekN to
// fill the queue.
func (lx *Lexer) lexOne() token.Token {
	inRawText := lx.curMode() == modeDQuote || lx.curMode() == modeSQuote ||
		lx.curMode() == modeHeredocCommand || lx.curMode() == modeBraceCommand
	if !inRawText {
		lx.collectLeadingTrivia()
	} else {
		lx.hold = nil
	}

	if lx.cursor.EOF() && !inRawText {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan(), Text: ""}
	}

	var tok token.Token
	switch lx.curMode() {
	case modeDQuote:
		tok = lx.scanDQuotePart()
	case modeSQuote:
		tok = lx.scanSQuotePart()
	case modeHeredocCommand:
		tok = lx.scanHeredocCommandPart()
	case modeBraceCommand:
		tok = lx.scanBraceCommandPart()
	default:
		tok = lx.scanNormalOrPlaceholder()
	}

	tok.Leading = lx.hold
	lx.hold = nil

	lx.enforceTokenLength(&tok)
	return tok
}

// scanNormalOrPlaceholder dispatches a token in modeNormal/modePlaceholder,
// tracking brace nesting so a placeholder's closing '}' can be recognized.
func (lx *Lexer) scanNormalOrPlaceholder() token.Token {
	inPlaceholder := lx.curMode() == modePlaceholder

	if lx.justSawVersion {
		lx.justSawVersion = false
		return lx.scanVersionIdent()
	}
	if lx.justSawCommand {
		lx.justSawCommand = false
		if tok, ok := lx.tryOpenCommandSection(); ok {
			return tok
		}
	}

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan(), Text: ""}
	}

	ch := lx.cursor.Peek()
	var tok token.Token
	switch {
	case ch == '"':
		tok = lx.openDQuote()
	case ch == '\'':
		tok = lx.openSQuote()
	case isIdentStartByte(ch):
		tok = lx.scanIdentOrKeyword()
	case ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '.' && lx.isNumberAfterDot():
		tok = lx.scanNumber()
	case lx.atHeredocOpen():
		tok = lx.openHeredoc()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	if tok.Kind == token.KwVersion {
		lx.justSawVersion = true
	}
	if tok.Kind == token.KwCommand {
		lx.justSawCommand = true
	}

	if inPlaceholder {
		top := len(lx.modes) - 1
		switch tok.Kind {
		case token.LBrace:
			lx.modes[top].depth++
		case token.RBrace:
			if lx.modes[top].depth == 0 {
				lx.popMode()
			} else {
				lx.modes[top].depth--
			}
		}
	}
	return tok
}

func (lx *Lexer) atHeredocOpen() bool {
	b0, b1, b2, ok := lx.cursor.Peek3()
	return ok && b0 == '<' && b1 == '<' && b2 == '<'
}

func (lx *Lexer) openHeredoc() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	lx.cursor.Bump()
	lx.pushMode(lexMode{kind: modeHeredocCommand})
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.HeredocOpen, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// tryOpenCommandSection is called right after the 'command' keyword; it
// opens either a brace-delimited or heredoc-delimited command section.
func (lx *Lexer) tryOpenCommandSection() (token.Token, bool) {
	if lx.cursor.EOF() {
		return token.Token{}, false
	}
	if lx.cursor.Peek() == '{' {
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.pushMode(lexMode{kind: modeBraceCommand})
		sp := lx.cursor.SpanFrom(start)
		tok := token.Token{Kind: token.LBrace, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		return tok, true
	}
	if lx.atHeredocOpen() {
		tok := lx.openHeredoc()
		return tok, true
	}
	return token.Token{}, false
}

func (lx *Lexer) openPlaceholder() token.Token {
	start := lx.cursor.Mark()
	var kind token.Kind
	if lx.cursor.Peek() == '~' {
		kind = token.PlaceholderOpenTilde
	} else {
		kind = token.PlaceholderOpenDollar
	}
	lx.cursor.Bump()
	lx.cursor.Bump()
	lx.pushMode(lexMode{kind: modePlaceholder})
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) openDQuote() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.pushMode(lexMode{kind: modeDQuote})
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.DQuoteOpen, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) openSQuote() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.pushMode(lexMode{kind: modeSQuote})
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.SQuoteOpen, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// isPlaceholderSigil reports whether the cursor is at '~{' or '${'.
func (lx *Lexer) isPlaceholderSigil() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && (b0 == '~' || b0 == '$') && b1 == '{'
}

func (lx *Lexer) scanVersionIdent() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Peek()
	if !isVersionStart(b) {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadVersionLine, sp, "expected version identifier after 'version'")
		return lx.scanOperatorOrPunct()
	}
	lx.cursor.Bump()
	for isVersionCont(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.VersionIdent, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func isVersionStart(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isVersionCont(b byte) bool {
	return isVersionStart(b) || b == '.' || b == '-'
}

// Peek returns the next token without consuming it. Equivalent to PeekN(0).
func (lx *Lexer) Peek() token.Token {
	return lx.PeekN(0)
}

// PeekN returns the token n positions ahead (0 = the next token) without
// consuming anything, lexing and buffering as many further tokens as
// needed. Once EOF is reached every further position also yields EOF.
func (lx *Lexer) PeekN(n int) token.Token {
	for len(lx.lookQueue) <= n {
		if len(lx.lookQueue) > 0 && lx.lookQueue[len(lx.lookQueue)-1].Kind == token.EOF {
			return lx.lookQueue[len(lx.lookQueue)-1]
		}
		lx.lookQueue = append(lx.lookQueue, lx.lexOne())
	}
	return lx.lookQueue[n]
}

// Push injects a token back onto the front of the lookahead queue.
func (lx *Lexer) Push(tok token.Token) {
	lx.lookQueue = append([]token.Token{tok}, lx.lookQueue...)
}

// EmptySpan returns a zero-length span at the current cursor position.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) enforceTokenLength(tok *token.Token) {
	if tok == nil {
		return
	}
	length := tok.Span.End - tok.Span.Start
	if length <= maxTokenLength {
		return
	}
	msg := fmt.Sprintf("token length %d exceeds limit %d", length, maxTokenLength)
	lx.errLex(diag.LexTokenTooLong, tok.Span, msg)
	tok.Kind = token.Invalid
	if tok.Text == "" && tok.Span.End > tok.Span.Start && int(tok.Span.End) <= len(lx.file.Content) {
		tok.Text = string(lx.file.Content[tok.Span.Start:tok.Span.End])
	}
	if off, err := safecast.Conv[uint32](len(lx.file.Content)); err == nil {
		lx.cursor.Off = off
	}
}
