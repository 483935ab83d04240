package token

import "wdlc/internal/source"

// SuppressDirective represents a parsed "#@ except: R1, R2" suppression
// comment (§4.1). It attaches to the node immediately following it.
type SuppressDirective struct {
	Rules []string
}

// TriviaKind classifies types of non-code elements.
type TriviaKind uint8

const (
	// TriviaSpace represents horizontal whitespace.
	TriviaSpace TriviaKind = iota
	// TriviaNewline represents a newline character.
	TriviaNewline
	// TriviaLineComment represents a '#' line comment.
	TriviaLineComment
	// TriviaSuppress represents a '#@ except: ...' suppression comment.
	TriviaSuppress
)

// Trivia represents a non-code source element like comments or whitespace.
// Every byte of source appears either in a significant Token or in a Trivia,
// which preserves the lossless invariant (§3).
type Trivia struct {
	Kind      TriviaKind
	Span      source.Span
	Text      string
	Suppress  *SuppressDirective // non-nil only when Kind == TriviaSuppress
}
