package parser

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/token"
)

// parseVersionStatement parses the mandatory "version <ident>" line that
// must open every WDL document (§4.1, lexed via the lexer's dedicated
// version-identifier path).
func (p *Parser) parseVersionStatement() {
	p.b.StartNode(cst.KindVersionStatement)
	if _, ok := p.expect(token.KwVersion, diag.SynExpectedVersion, "document must begin with a 'version' statement"); !ok {
		p.b.FinishNode()
		return
	}
	p.expect(token.VersionIdent, diag.LexBadVersionLine, "expected a version identifier after 'version'")
	p.b.FinishNode()
}
