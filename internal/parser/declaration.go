package parser

import (
	"wdlc/internal/cst"
	"wdlc/internal/token"
)

// parseDeclaration parses `Type name ['=' expr]`, used inside input/output
// sections and as bound declarations in a workflow body.
func (p *Parser) parseDeclaration() {
	p.b.StartNode(cst.KindDeclaration)
	p.parseTypeExpr()
	p.parseIdentToken()
	if p.at(token.Assign) {
		p.advance()
		p.parseExpr()
	}
	p.b.FinishNode()
}
