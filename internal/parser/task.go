package parser

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/token"
)

// parseTaskDefinition parses a `task Name { ... }` block: input, a single
// mandatory command, output, runtime/requirements/hints, and meta sections,
// in any order, each appearing at most once (enforced by the analyzer via
// diag.SynDuplicateSection/SynMissingSection, not the parser).
func (p *Parser) parseTaskDefinition() {
	p.b.StartNode(cst.KindTaskDefinition)
	p.advance() // 'task'
	p.parseIdentToken()
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open task body"); ok {
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			if !p.parseTaskMember() {
				break
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close task body")
	}
	p.b.FinishNode()
}

func (p *Parser) parseTaskMember() bool {
	switch p.lx.Peek().Kind {
	case token.KwInput:
		p.parseInputSection()
	case token.KwOutput:
		p.parseOutputSection()
	case token.KwCommand:
		p.parseCommandSection()
	case token.KwRuntime:
		p.parseRuntimeSection()
	case token.KwRequirements:
		p.parseRequirementsSection()
	case token.KwHints:
		p.parseHintsSection()
	case token.KwMeta:
		p.parseMetaSection(token.KwMeta, cst.KindMetaSection)
	case token.KwParameterMeta:
		p.parseMetaSection(token.KwParameterMeta, cst.KindParameterMetaSection)
	case token.RBrace, token.EOF:
		return false
	default:
		if p.startsTypeExpr() {
			p.parseDeclaration()
			return true
		}
		p.err(diag.SynUnexpectedToken, p.lx.Peek().Span, "unexpected token inside task body")
		p.resyncUntil(token.KwInput, token.KwOutput, token.KwCommand, token.KwRuntime,
			token.KwRequirements, token.KwHints, token.KwMeta, token.KwParameterMeta, token.RBrace, token.EOF)
	}
	return true
}
