package parser

import (
	"wdlc/internal/cst"
	"wdlc/internal/diag"
	"wdlc/internal/token"
)

// parseWorkflowDefinition parses `workflow Name { ... }`: input/output/meta
// sections plus a body of declarations, calls, if-statements, and scatter
// statements in document order.
func (p *Parser) parseWorkflowDefinition() {
	p.b.StartNode(cst.KindWorkflowDefinition)
	p.advance() // 'workflow'
	p.parseIdentToken()
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open workflow body"); ok {
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			if !p.parseWorkflowMember() {
				break
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close workflow body")
	}
	p.b.FinishNode()
}

func (p *Parser) parseWorkflowMember() bool {
	switch p.lx.Peek().Kind {
	case token.KwInput:
		p.parseInputSection()
	case token.KwOutput:
		p.parseOutputSection()
	case token.KwMeta:
		p.parseMetaSection(token.KwMeta, cst.KindMetaSection)
	case token.KwParameterMeta:
		p.parseMetaSection(token.KwParameterMeta, cst.KindParameterMetaSection)
	case token.KwCall:
		p.parseCallStatement()
	case token.KwIf:
		p.parseIfStatement()
	case token.KwScatter:
		p.parseScatterStatement()
	case token.RBrace, token.EOF:
		return false
	default:
		if p.startsTypeExpr() {
			p.parseDeclaration()
			return true
		}
		p.err(diag.SynUnexpectedToken, p.lx.Peek().Span, "unexpected token inside workflow body")
		p.resyncUntil(token.KwInput, token.KwOutput, token.KwMeta, token.KwParameterMeta,
			token.KwCall, token.KwIf, token.KwScatter, token.RBrace, token.EOF)
	}
	return true
}

// parseCallStatement parses `call Name [as alias] [after x] [{ input: ... }]`.
func (p *Parser) parseCallStatement() {
	p.b.StartNode(cst.KindCallStatement)
	p.advance() // 'call'
	p.parseCallTargetName()
	if p.at(token.KwAs) {
		p.advance()
		p.parseIdentToken()
	}
	for p.at(token.KwAfter) {
		p.b.StartNode(cst.KindCallAfter)
		p.advance()
		p.parseIdentToken()
		p.b.FinishNode()
	}
	if p.at(token.LBrace) {
		p.b.StartNode(cst.KindCallInputs)
		p.advance()
		p.expect(token.KwInput, diag.SynUnexpectedToken, "expected 'input' in call body")
		p.expect(token.Colon, diag.SynExpectedColon, "expected ':' after 'input'")
		for {
			p.b.StartNode(cst.KindCallInput)
			p.parseIdentToken()
			if p.at(token.Assign) {
				p.advance()
				p.parseExpr()
			}
			p.b.FinishNode()
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close call body")
		p.b.FinishNode()
	}
	p.b.FinishNode()
}

// parseCallTargetName parses a (possibly namespace-qualified) call target,
// e.g. `lib.MyTask`.
func (p *Parser) parseCallTargetName() {
	p.parseIdentToken()
	for p.at(token.Dot) {
		p.advance()
		p.parseIdentToken()
	}
}

// parseIfStatement parses `if (expr) { workflowMember* }`.
func (p *Parser) parseIfStatement() {
	p.b.StartNode(cst.KindIfStatement)
	p.advance() // 'if'
	p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after 'if'")
	p.parseExpr()
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close if condition")
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open if body"); ok {
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			if !p.parseWorkflowMember() {
				break
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close if body")
	}
	p.b.FinishNode()
}

// parseScatterStatement parses `scatter (x in expr) { workflowMember* }`.
func (p *Parser) parseScatterStatement() {
	p.b.StartNode(cst.KindScatterStatement)
	p.advance() // 'scatter'
	p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after 'scatter'")
	p.parseIdentToken()
	p.expect(token.KwIn, diag.SynUnexpectedToken, "expected 'in' in scatter clause")
	p.parseExpr()
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close scatter clause")
	if _, ok := p.expect(token.LBrace, diag.SynExpectedLBrace, "expected '{' to open scatter body"); ok {
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			if !p.parseWorkflowMember() {
				break
			}
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close scatter body")
	}
	p.b.FinishNode()
}
