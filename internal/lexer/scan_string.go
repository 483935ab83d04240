package lexer

import (
	"wdlc/internal/diag"
	"wdlc/internal/token"
)

// scanDQuotePart scans one token's worth of a double-quoted string: the
// closing quote, a placeholder open sigil, or a run of literal text up to
// the next special character.
func (lx *Lexer) scanDQuotePart() token.Token {
	return lx.scanQuotedPart('"', token.DQuoteClose)
}

// scanSQuotePart is the single-quoted-string counterpart of scanDQuotePart.
func (lx *Lexer) scanSQuotePart() token.Token {
	return lx.scanQuotedPart('\'', token.SQuoteClose)
}

func (lx *Lexer) scanQuotedPart(quote byte, closeKind token.Kind) token.Token {
	if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
		sp := lx.cursor.SpanFrom(lx.cursor.Mark())
		lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
		lx.popMode()
		return token.Token{Kind: token.Invalid, Span: sp, Text: ""}
	}
	if lx.cursor.Peek() == quote {
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.popMode()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: closeKind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	if lx.isPlaceholderSigil() {
		return lx.openPlaceholder()
	}

	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == quote || b == '\n' {
			break
		}
		if lx.isPlaceholderSigil() {
			break
		}
		if b == '\\' {
			lx.scanEscape()
			continue
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
		lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
		lx.popMode()
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	return token.Token{Kind: token.StringText, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// scanEscape consumes a backslash escape sequence. Recognized forms are the
// single-character escapes, \xNN, and \u{...}; anything else is reported
// but still consumed so the lexer keeps making forward progress.
func (lx *Lexer) scanEscape() {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\\'
	if lx.cursor.EOF() {
		return
	}
	switch lx.cursor.Peek() {
	case 'n', 't', 'r', '\\', '\'', '"', '0':
		lx.cursor.Bump()
	case 'x':
		lx.cursor.Bump()
		for i := 0; i < 2 && isHex(lx.cursor.Peek()); i++ {
			lx.cursor.Bump()
		}
	case 'u':
		lx.cursor.Bump()
		if lx.cursor.Peek() == '{' {
			lx.cursor.Bump()
			for !lx.cursor.EOF() && lx.cursor.Peek() != '}' {
				lx.cursor.Bump()
			}
			lx.cursor.Eat('}')
		}
	default:
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadEscape, sp, "invalid escape sequence")
		lx.cursor.Bump()
	}
}

// scanHeredocCommandPart scans one token's worth of a '<<< ... >>>' command
// section: the closing sigil, a placeholder open, or a run of literal text.
func (lx *Lexer) scanHeredocCommandPart() token.Token {
	if lx.cursor.EOF() {
		sp := lx.cursor.SpanFrom(lx.cursor.Mark())
		lx.errLex(diag.LexUnterminatedHeredoc, sp, "unterminated heredoc command section")
		lx.popMode()
		return token.Token{Kind: token.Invalid, Span: sp, Text: ""}
	}
	if lx.atHeredocClose() {
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.cursor.Bump()
		lx.cursor.Bump()
		lx.popMode()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.HeredocClose, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	if lx.isPlaceholderSigil() {
		return lx.openPlaceholder()
	}

	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && !lx.atHeredocClose() && !lx.isPlaceholderSigil() {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.CommandText, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) atHeredocClose() bool {
	b0, b1, b2, ok := lx.cursor.Peek3()
	return ok && b0 == '>' && b1 == '>' && b2 == '>'
}

// scanBraceCommandPart scans one token's worth of a 'command { ... }'
// section. Literal '{'/'}' pairs inside the shell text (e.g. brace-expansion
// loops) are tracked so only the brace matching the section's own opening
// '{' closes the command.
func (lx *Lexer) scanBraceCommandPart() token.Token {
	top := len(lx.modes) - 1
	if lx.cursor.EOF() {
		sp := lx.cursor.SpanFrom(lx.cursor.Mark())
		lx.errLex(diag.LexUnterminatedHeredoc, sp, "unterminated command section")
		lx.popMode()
		return token.Token{Kind: token.Invalid, Span: sp, Text: ""}
	}
	if lx.isPlaceholderSigil() {
		return lx.openPlaceholder()
	}
	if lx.cursor.Peek() == '}' && lx.modes[top].depth == 0 {
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.popMode()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.RBrace, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		if lx.isPlaceholderSigil() {
			break
		}
		b := lx.cursor.Peek()
		if b == '{' {
			lx.modes[top].depth++
			lx.cursor.Bump()
			continue
		}
		if b == '}' {
			if lx.modes[top].depth == 0 {
				break
			}
			lx.modes[top].depth--
			lx.cursor.Bump()
			continue
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.CommandText, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
