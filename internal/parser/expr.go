package parser

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/lexer"
	"wdlc/internal/token"
)

// Precedence table per §4.4 (lowest to highest); all binary operators are
// left-associative.
const (
	precNone = iota
	precLogicalOr
	precLogicalAnd
	precEquality
	precComparison
	precAdditive
	precMultiplicative
)

func binaryPrec(k token.Kind) int {
	switch k {
	case token.OrOr:
		return precLogicalOr
	case token.AndAnd:
		return precLogicalAnd
	case token.EqEq, token.BangEq:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	default:
		return precNone
	}
}

// parseExpr parses a full expression, including the ternary `if cond then x
// else y` form (also accepted without the leading `if`) which sits below
// every binary operator in precedence.
func (p *Parser) parseExpr() {
	p.parseTernary()
}

func (p *Parser) parseTernary() {
	if p.at(token.KwIf) {
		p.b.StartNode(cst.KindTernaryExpr)
		p.advance() // 'if'
		p.parseBinary(precNone)
		p.expect(token.KwThen, diag.SynUnexpectedToken, "expected 'then' in the ternary expression")
		p.parseBinary(precNone)
		p.expect(token.KwElse, diag.SynUnexpectedToken, "expected 'else' to complete the ternary expression")
		p.parseBinary(precNone)
		p.b.FinishNode()
		return
	}
	cp := p.b.Checkpoint()
	p.parseBinary(precNone)
	if p.at(token.KwThen) {
		p.b.StartNodeAt(cst.KindTernaryExpr, cp)
		p.advance() // 'then'
		p.parseBinary(precNone)
		p.expect(token.KwElse, diag.SynUnexpectedToken, "expected 'else' to complete the ternary expression")
		p.parseBinary(precNone)
		p.b.FinishNode()
	}
}

// parseBinary is the precedence-climbing loop: it parses a unary expression,
// then repeatedly folds in trailing binary operators whose precedence is
// strictly greater than minPrec.
func (p *Parser) parseBinary(minPrec int) {
	cp := p.b.Checkpoint()
	p.parseUnary()

	for {
		prec := binaryPrec(p.lx.Peek().Kind)
		if prec <= minPrec || prec == precNone {
			return
		}
		p.b.StartNodeAt(cst.KindBinaryExpr, cp)
		p.advance() // operator
		p.parseBinary(prec)
		p.b.FinishNode()
	}
}

// parseUnary parses the prefix operators `!`, `+`, `-` (§4.4 rung 7).
func (p *Parser) parseUnary() {
	if p.atOr(token.Bang, token.Plus, token.Minus) {
		p.b.StartNode(cst.KindUnaryExpr)
		p.advance()
		p.parseUnary()
		p.b.FinishNode()
		return
	}
	p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of call,
// index, and member-access suffixes (§4.4 rungs 8-10).
func (p *Parser) parsePostfix() {
	cp := p.b.Checkpoint()
	p.parsePrimary()

	for {
		switch {
		case p.at(token.LParen):
			p.b.StartNodeAt(cst.KindApplyExpr, cp)
			p.parseArgList()
			p.b.FinishNode()
		case p.at(token.LBracket):
			p.b.StartNodeAt(cst.KindIndexExpr, cp)
			p.advance()
			p.parseExpr()
			p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close index expression")
			p.b.FinishNode()
		case p.at(token.Dot):
			p.b.StartNodeAt(cst.KindMemberExpr, cp)
			p.advance()
			p.parseIdentToken()
			p.b.FinishNode()
		default:
			return
		}
	}
}

func (p *Parser) parseArgList() {
	p.b.StartNode(cst.KindArgList)
	p.advance() // '('
	for !p.at(token.RParen) && !p.at(token.EOF) {
		p.parseExpr()
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close argument list")
	p.b.FinishNode()
}

// parsePrimary parses a literal, a parenthesized expression, or a name
// reference. Every branch must consume at least one token, or emit a
// diagnostic and consume the offending token, to guarantee termination.
func (p *Parser) parsePrimary() {
	switch {
	case p.atOr(token.IntLit, token.FloatLit, token.BoolLit):
		p.b.StartNode(cst.KindLiteralExpr)
		p.advance()
		p.b.FinishNode()
	case p.at(token.KwNone):
		p.b.StartNode(cst.KindNoneLiteral)
		p.advance()
		p.b.FinishNode()
	case p.at(token.DQuoteOpen) || p.at(token.SQuoteOpen):
		p.parseStringLiteral()
	case p.at(token.LParen):
		p.parseParenOrPairLiteral()
	case p.at(token.LBracket):
		p.parseArrayLiteral()
	case p.at(token.LBrace):
		p.parseMapLiteral()
	case p.at(token.KwObject):
		p.parseObjectLiteral()
	case p.at(token.Ident):
		p.parseNameRefOrStructLiteral()
	default:
		p.err(diag.SynExpectedExpression, p.lx.Peek().Span, "expected an expression")
		if !p.at(token.EOF) {
			p.advance()
		}
	}
}

// parseNameRefOrStructLiteral disambiguates a struct literal
// ("Name { field: expr, ... }") from a bare name reference by looking one
// token past the identifier: a struct literal's brace is immediately
// followed by a member name and a colon.
func (p *Parser) parseNameRefOrStructLiteral() {
	if p.lx.PeekN(1).Kind == token.LBrace && structLiteralFollowsBrace(p.lx) {
		p.b.StartNode(cst.KindStructLiteral)
		p.parseIdentToken()
		p.advance() // '{'
		p.parseObjectMembers()
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close struct literal")
		p.b.FinishNode()
		return
	}
	p.b.StartNode(cst.KindNameRef)
	p.advance()
	p.b.FinishNode()
}

// structLiteralFollowsBrace looks two tokens past the opening '{' to tell a
// struct literal's "field: expr" member from a map/block use of '{' that
// merely happens to follow an identifier.
func structLiteralFollowsBrace(lx *lexer.Lexer) bool {
	if lx.PeekN(2).Kind == token.RBrace {
		return true // empty struct literal "Name {}"
	}
	return lx.PeekN(2).Kind == token.Ident && lx.PeekN(3).Kind == token.Colon
}

// parseParenOrPairLiteral disambiguates `(expr)` from `(left, right)`
// (a Pair literal).
func (p *Parser) parseParenOrPairLiteral() {
	cp := p.b.Checkpoint()
	p.advance() // '('
	p.parseExpr()
	if p.at(token.Comma) {
		p.b.StartNodeAt(cst.KindPairLiteral, cp)
		p.advance()
		p.parseExpr()
		p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close pair literal")
		p.b.FinishNode()
		return
	}
	p.b.StartNodeAt(cst.KindParenExpr, cp)
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close parenthesized expression")
	p.b.FinishNode()
}

func (p *Parser) parseArrayLiteral() {
	p.b.StartNode(cst.KindArrayLiteral)
	p.advance() // '['
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		p.parseExpr()
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close array literal")
	p.b.FinishNode()
}

func (p *Parser) parseMapLiteral() {
	p.b.StartNode(cst.KindMapLiteral)
	p.advance() // '{'
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		p.b.StartNode(cst.KindMapEntry)
		p.parseExpr()
		p.expect(token.Colon, diag.SynExpectedColon, "expected ':' between map key and value")
		p.parseExpr()
		p.b.FinishNode()
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close map literal")
	p.b.FinishNode()
}

func (p *Parser) parseObjectLiteral() {
	p.b.StartNode(cst.KindObjectLiteral)
	p.advance() // 'object'
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' after 'object'"); ok {
		p.parseObjectMembers()
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close object literal")
	}
	p.b.FinishNode()
}

func (p *Parser) parseObjectMembers() {
	for p.at(token.Ident) {
		p.b.StartNode(cst.KindObjectMember)
		p.advance()
		p.expect(token.Colon, diag.SynExpectedColon, "expected ':' after object member key")
		p.parseExpr()
		p.b.FinishNode()
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
}

// parseStringLiteral parses a double- or single-quoted string, forwarding
// the lexer's already-decomposed StringText/placeholder token stream and
// parsing each placeholder's interior as a full expression (§4.4's
// "placeholders inside strings and commands are parsed as full expressions").
func (p *Parser) parseStringLiteral() {
	p.b.StartNode(cst.KindStringLiteral)
	closeKind := token.DQuoteClose
	if p.at(token.SQuoteOpen) {
		closeKind = token.SQuoteClose
	}
	p.advance() // opening quote

	for !p.at(closeKind) && !p.at(token.EOF) {
		switch {
		case p.at(token.StringText):
			p.advance()
		case p.at(token.PlaceholderOpenTilde) || p.at(token.PlaceholderOpenDollar):
			p.parsePlaceholder()
		default:
			p.advance()
		}
	}
	p.expect(closeKind, diag.SynUnclosedBrace, "expected the string literal to be closed")
	p.b.FinishNode()
}

// parseStringLiteralNoPlaceholders parses a string literal in a context
// where interpolation is not meaningful (import URIs, meta values): it
// still forwards any placeholder tokens the lexer produced (so the tree
// stays lossless) but does not attempt to interpret them semantically.
func (p *Parser) parseStringLiteralNoPlaceholders() {
	p.parseStringLiteral()
}

// parsePlaceholder parses `~{expr [option ...]}` / `${expr}`. Placeholder
// options (sep=, true=, false=, default=) are a small fixed vocabulary of
// named arguments recognized ahead of the expression.
func (p *Parser) parsePlaceholder() {
	p.b.StartNode(cst.KindPlaceholder)
	p.advance() // '~{' or '${'
	for p.at(token.Ident) && isPlaceholderOptionName(p.lx.Peek().Text) && p.lx.PeekN(1).Kind == token.Assign {
		p.b.StartNode(cst.KindPlaceholderOption)
		p.advance() // option name
		p.expect(token.Assign, diag.SynInvalidPlaceholderOpt, "expected '=' after placeholder option name")
		p.parseStringLiteralNoPlaceholders()
		p.b.FinishNode()
	}
	p.parseExpr()
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close placeholder")
	p.b.FinishNode()
}

func isPlaceholderOptionName(name string) bool {
	switch name {
	case "sep", "true", "false", "default":
		return true
	default:
		return false
	}
}
