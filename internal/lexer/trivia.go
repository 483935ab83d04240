package lexer

import (
	"strings"

	"wdlc/internal/token"
)

// collectLeadingTrivia gathers whitespace and comments preceding the next
// significant token. Consecutive spaces/tabs coalesce into one TriviaSpace;
// consecutive newlines coalesce into one TriviaNewline. WDL has only line
// comments ('#'); a comment whose text matches "#@ except: R1, R2" is parsed
// as a TriviaSuppress directive (attaches to the following node).
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if b == ' ' || b == '\t' || b == '\r' {
			for {
				b2 := lx.cursor.Peek()
				if b2 != ' ' && b2 != '\t' && b2 != '\r' {
					break
				}
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(start)
			lx.hold = append(lx.hold, token.Trivia{
				Kind: token.TriviaSpace,
				Span: sp,
				Text: string(lx.file.Content[sp.Start:sp.End]),
			})
			continue
		}

		if b == '\n' {
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(start)
			lx.hold = append(lx.hold, token.Trivia{
				Kind: token.TriviaNewline,
				Span: sp,
				Text: string(lx.file.Content[sp.Start:sp.End]),
			})
			continue
		}

		if b == '#' {
			lx.scanCommentIntoHold()
			continue
		}

		break
	}
}

func (lx *Lexer) scanCommentIntoHold() {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '#'
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])

	if directive, ok := parseSuppressDirective(text); ok {
		lx.hold = append(lx.hold, token.Trivia{
			Kind:     token.TriviaSuppress,
			Span:     sp,
			Text:     text,
			Suppress: directive,
		})
		return
	}
	lx.hold = append(lx.hold, token.Trivia{
		Kind: token.TriviaLineComment,
		Span: sp,
		Text: text,
	})
}

// parseSuppressDirective recognizes "#@ except: R1, R2" comments (§4.1).
func parseSuppressDirective(text string) (*token.SuppressDirective, bool) {
	body := strings.TrimPrefix(text, "#")
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "@") {
		return nil, false
	}
	body = strings.TrimSpace(strings.TrimPrefix(body, "@"))
	const marker = "except:"
	if !strings.HasPrefix(body, marker) {
		return nil, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(body, marker))
	if rest == "" {
		return &token.SuppressDirective{}, true
	}
	parts := strings.Split(rest, ",")
	rules := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			rules = append(rules, p)
		}
	}
	return &token.SuppressDirective{Rules: rules}, true
}
