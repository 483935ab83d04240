package parser

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/token"
)

// parseTopLevelItem dispatches on the next keyword to one of the document's
// top-level productions. Returns false when no progress could be made (the
// caller stops the top-level loop to avoid spinning on unrecoverable input).
func (p *Parser) parseTopLevelItem() bool {
	switch p.lx.Peek().Kind {
	case token.KwImport:
		p.parseImportStatement()
	case token.KwStruct:
		p.parseStructDefinition()
	case token.KwEnum:
		p.parseEnumDefinition()
	case token.KwTask:
		p.parseTaskDefinition()
	case token.KwWorkflow:
		p.parseWorkflowDefinition()
	case token.EOF:
		return false
	default:
		p.err(diag.SynUnexpectedToken, p.lx.Peek().Span, "expected 'import', 'struct', 'enum', 'task', or 'workflow'")
		p.resyncUntil(topLevelSync...)
		if p.at(token.EOF) {
			return false
		}
	}
	return true
}

// parseImportStatement parses `import "uri" [as alias] [alias X as Y ...]`.
func (p *Parser) parseImportStatement() {
	p.b.StartNode(cst.KindImportStatement)
	p.advance() // 'import'
	p.parseStringLiteralNoPlaceholders()
	if p.at(token.KwAs) {
		p.advance()
		p.parseIdentToken()
	}
	for p.at(token.KwAlias) {
		p.b.StartNode(cst.KindImportAlias)
		p.advance() // 'alias'
		p.parseIdentToken()
		p.expect(token.KwAs, diag.SynUnexpectedToken, "expected 'as' in struct alias")
		p.parseIdentToken()
		p.b.FinishNode()
	}
	p.b.FinishNode()
}

// parseStructDefinition parses `struct Name { member*  }`.
func (p *Parser) parseStructDefinition() {
	p.b.StartNode(cst.KindStructDefinition)
	p.advance() // 'struct'
	p.parseIdentToken()
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open struct body"); ok {
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			p.parseStructMember()
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close struct body")
	}
	p.b.FinishNode()
}

func (p *Parser) parseStructMember() {
	p.b.StartNode(cst.KindStructMember)
	p.parseTypeExpr()
	p.parseIdentToken()
	p.b.FinishNode()
}

// parseEnumDefinition parses `enum Name { Variant, Variant, ... }` (WDL 1.2).
func (p *Parser) parseEnumDefinition() {
	p.b.StartNode(cst.KindEnumDefinition)
	p.advance() // 'enum'
	p.parseIdentToken()
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open enum body"); ok {
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			p.b.StartNode(cst.KindEnumVariant)
			p.parseIdentToken()
			p.b.FinishNode()
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close enum body")
	}
	p.b.FinishNode()
}

func (p *Parser) parseIdentToken() (token.Token, bool) {
	return p.expect(token.Ident, diag.SynExpectedIdent, "expected an identifier")
}
