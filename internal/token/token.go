package token

import (
	"wdlc/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, boolean, or string literal.
func (t Token) IsLiteral() bool { return t.Kind.IsLiteral() }

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	switch t.Kind {
	case Plus, Minus, Star, Slash, Percent, Assign, EqEq, Bang, BangEq, Lt, LtEq,
		Gt, GtEq, AndAnd, OrOr, Question, Colon, Semicolon, Comma, Dot,
		LParen, RParen, LBrace, RBrace, LBracket, RBracket,
		PlaceholderOpenDollar, PlaceholderOpenTilde, HeredocOpen, HeredocClose,
		DQuoteOpen, DQuoteClose, SQuoteOpen, SQuoteClose:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool { return t.Kind.IsKeyword() }

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
