package parser

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/token"
)

// parseInputSection parses `input { declaration* }`.
func (p *Parser) parseInputSection() {
	p.b.StartNode(cst.KindInputSection)
	p.advance() // 'input'
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open input section"); ok {
		for p.startsTypeExpr() {
			p.parseDeclaration()
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close input section")
	}
	p.b.FinishNode()
}

// parseOutputSection parses `output { declaration* }` (every output
// declaration requires an initializer, checked by the analyzer, not here).
func (p *Parser) parseOutputSection() {
	p.b.StartNode(cst.KindOutputSection)
	p.advance() // 'output'
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open output section"); ok {
		for p.startsTypeExpr() {
			p.parseDeclaration()
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close output section")
	}
	p.b.FinishNode()
}

// parseCommandSection parses `command { ... }` or `command <<< ... >>>`; the
// lexer has already switched into raw-text mode for the body, so this just
// forwards CommandText/placeholder tokens until the closing delimiter.
func (p *Parser) parseCommandSection() {
	p.b.StartNode(cst.KindCommandSection)
	p.advance() // 'command'; the lexer auto-opens the matching { or <<< next
	closeKind := token.RBrace
	if p.at(token.LBrace) {
		p.advance()
	} else if p.at(token.HeredocOpen) {
		p.advance()
		closeKind = token.HeredocClose
	} else {
		p.err(diag.SynExpectedLBrace, p.lx.Peek().Span, "expected '{' or '<<<' to open command section")
		p.b.FinishNode()
		return
	}

	for !p.at(closeKind) && !p.at(token.EOF) {
		switch {
		case p.at(token.CommandText):
			p.b.StartNode(cst.KindCommandText)
			p.advance()
			p.b.FinishNode()
		case p.at(token.PlaceholderOpenTilde) || p.at(token.PlaceholderOpenDollar):
			p.parsePlaceholder()
		default:
			p.advance()
		}
	}
	p.expect(closeKind, diag.SynUnclosedBrace, "expected the command section to be closed")
	p.b.FinishNode()
}

// parseRuntimeSection parses `runtime { key: expr, ... }` (WDL 1.0/1.1; kept
// alongside requirements/hints for WDL 1.2 documents, §4.4's Non-goal list
// does not exclude supporting older runtime blocks).
func (p *Parser) parseRuntimeSection() {
	p.parseAttrSection(token.KwRuntime, cst.KindRuntimeSection, cst.KindRuntimeAttr)
}

// parseRequirementsSection parses `requirements { key: expr, ... }` (WDL 1.2).
func (p *Parser) parseRequirementsSection() {
	p.parseAttrSection(token.KwRequirements, cst.KindRequirementsSection, cst.KindRequirementsAttr)
}

// parseHintsSection parses `hints { key: expr, ... }` (WDL 1.2).
func (p *Parser) parseHintsSection() {
	p.parseAttrSection(token.KwHints, cst.KindHintsSection, cst.KindHintsAttr)
}

func (p *Parser) parseAttrSection(kw token.Kind, sectionKind, attrKind cst.Kind) {
	p.b.StartNode(sectionKind)
	p.advance() // section keyword
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open section"); ok {
		for p.at(token.Ident) || isTypeNameKeyword(p.lx.Peek().Kind) {
			p.b.StartNode(attrKind)
			p.advance() // key (identifiers share lexical space with type-name keywords in WDL's attr grammar)
			p.expect(token.Colon, diag.SynExpectedColon, "expected ':' after attribute key")
			p.parseExpr()
			p.b.FinishNode()
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close section")
	}
	p.b.FinishNode()
}

func isTypeNameKeyword(k token.Kind) bool {
	switch k {
	case token.KwBoolean, token.KwInt, token.KwFloat, token.KwString, token.KwFile, token.KwDirectory,
		token.KwArrayType, token.KwMapType, token.KwPairType, token.KwObjectType, token.KwNone:
		return true
	default:
		return false
	}
}

// parseMetaSection parses `meta { key: meta-value, ... }` /
// `parameter_meta { ... }`: meta values are a JSON-like sublanguage (string,
// number, bool, null, object, array), not full WDL expressions. The comma
// between entries is optional.
func (p *Parser) parseMetaSection(kw token.Kind, kind cst.Kind) {
	p.b.StartNode(kind)
	p.advance() // 'meta' or 'parameter_meta'
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open meta section"); ok {
		for p.at(token.Ident) {
			p.b.StartNode(cst.KindMetaEntry)
			p.advance() // key
			p.expect(token.Colon, diag.SynExpectedColon, "expected ':' after meta key")
			p.parseMetaValue()
			p.b.FinishNode()
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close meta section")
	}
	p.b.FinishNode()
}

func (p *Parser) parseMetaValue() {
	switch {
	case p.at(token.LBrace):
		p.b.StartNode(cst.KindMetaObject)
		p.advance()
		for p.at(token.Ident) {
			p.advance()
			p.expect(token.Colon, diag.SynExpectedColon, "expected ':' after meta key")
			p.parseMetaValue()
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close meta object")
		p.b.FinishNode()
	case p.at(token.LBracket):
		p.b.StartNode(cst.KindMetaArray)
		p.advance()
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			p.parseMetaValue()
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close meta array")
		p.b.FinishNode()
	case p.at(token.DQuoteOpen) || p.at(token.SQuoteOpen):
		p.parseStringLiteralNoPlaceholders()
	case p.atOr(token.IntLit, token.FloatLit, token.BoolLit, token.KwNone):
		p.advance()
	default:
		p.err(diag.SynExpectedExpression, p.lx.Peek().Span, "expected a meta value")
	}
}
