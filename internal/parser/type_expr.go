package parser

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/token"
)

var primitiveTypeKeywords = []token.Kind{
	token.KwBoolean, token.KwInt, token.KwFloat, token.KwString, token.KwFile, token.KwDirectory, token.KwNone,
}

// parseTypeExpr parses a WDL type expression: a primitive name, a compound
// type (Array[T], Map[K,V], Pair[L,R]), or a struct/enum reference by name,
// each optionally followed by '+' (non-empty array) and/or '?' (optional).
func (p *Parser) parseTypeExpr() {
	p.b.StartNode(cst.KindTypeExpr)
	switch {
	case p.at(token.KwArrayType):
		p.parseArrayType()
	case p.at(token.KwMapType):
		p.parseMapType()
	case p.at(token.KwPairType):
		p.parsePairType()
	case p.atOr(primitiveTypeKeywords...):
		p.advance()
	case p.at(token.Ident):
		p.advance() // struct/enum type reference
	default:
		p.err(diag.SynExpectedType, p.lx.Peek().Span, "expected a type name")
	}

	if p.at(token.Plus) {
		p.b.StartNode(cst.KindNonEmptySuffix)
		p.advance()
		p.b.FinishNode()
	}
	if p.at(token.Question) {
		p.b.StartNode(cst.KindOptionalTypeSuffix)
		p.advance()
		p.b.FinishNode()
	}
	p.b.FinishNode()
}

func (p *Parser) parseArrayType() {
	p.b.StartNode(cst.KindArrayTypeExpr)
	p.advance() // 'Array'
	if _, ok := p.expect(token.LBracket, diag.SynUnexpectedToken, "expected '[' after 'Array'"); ok {
		p.parseTypeExpr()
		p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close Array type")
	}
	p.b.FinishNode()
}

func (p *Parser) parseMapType() {
	p.b.StartNode(cst.KindMapTypeExpr)
	p.advance() // 'Map'
	if _, ok := p.expect(token.LBracket, diag.SynUnexpectedToken, "expected '[' after 'Map'"); ok {
		p.parseTypeExpr()
		p.expect(token.Comma, diag.SynUnexpectedToken, "expected ',' between Map key and value types")
		p.parseTypeExpr()
		p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close Map type")
	}
	p.b.FinishNode()
}

func (p *Parser) parsePairType() {
	p.b.StartNode(cst.KindPairTypeExpr)
	p.advance() // 'Pair'
	if _, ok := p.expect(token.LBracket, diag.SynUnexpectedToken, "expected '[' after 'Pair'"); ok {
		p.parseTypeExpr()
		p.expect(token.Comma, diag.SynUnexpectedToken, "expected ',' between Pair left and right types")
		p.parseTypeExpr()
		p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close Pair type")
	}
	p.b.FinishNode()
}

// startsTypeExpr reports whether the current token could begin a type
// expression; used to disambiguate a declaration from a bare expression
// statement inside input/output sections.
func (p *Parser) startsTypeExpr() bool {
	return p.at(token.KwArrayType) || p.at(token.KwMapType) || p.at(token.KwPairType) ||
		p.atOr(primitiveTypeKeywords...) || p.at(token.Ident)
}
