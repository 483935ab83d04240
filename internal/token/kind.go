// Package token defines lexical token kinds and trivia for the WDL front-end.
//
// Invariants:
//   - Token.Text is always the exact source slice for the token's span.
//   - Whitespace and comments are never part of the significant token stream;
//     they are attached as leading Trivia, and the CST builder re-attaches
//     them so every source byte is still accounted for (losslessness).
//   - Built-in type name keywords (Boolean, Int, ...) are reserved words, not
//     identifiers, because WDL treats them as part of the grammar rather than
//     the semantic layer (unlike, e.g., a language with user type aliases
//     shadowing primitives).
package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token (unrecognized byte sequence).
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	// KwVersion represents the 'version' keyword (only meaningful as the first token).
	KwVersion
	// KwImport represents the 'import' keyword.
	KwImport
	// KwAs represents the 'as' keyword (import aliasing).
	KwAs
	// KwAlias represents the 'alias' keyword (struct aliasing in imports).
	KwAlias
	// KwWorkflow represents the 'workflow' keyword.
	KwWorkflow
	// KwTask represents the 'task' keyword.
	KwTask
	// KwStruct represents the 'struct' keyword.
	KwStruct
	// KwEnum represents the 'enum' keyword (WDL 1.2).
	KwEnum
	// KwInput represents the 'input' keyword.
	KwInput
	// KwOutput represents the 'output' keyword.
	KwOutput
	// KwCommand represents the 'command' keyword.
	KwCommand
	// KwRuntime represents the 'runtime' keyword.
	KwRuntime
	// KwRequirements represents the 'requirements' keyword (WDL 1.2).
	KwRequirements
	// KwHints represents the 'hints' keyword (WDL 1.2).
	KwHints
	// KwMeta represents the 'meta' keyword.
	KwMeta
	// KwParameterMeta represents the 'parameter_meta' keyword.
	KwParameterMeta
	// KwCall represents the 'call' keyword.
	KwCall
	// KwIf represents the 'if' keyword.
	KwIf
	// KwThen represents the 'then' keyword (ternary expression grammar only).
	KwThen
	// KwElse represents the 'else' keyword.
	KwElse
	// KwScatter represents the 'scatter' keyword.
	KwScatter
	// KwIn represents the 'in' keyword.
	KwIn
	// KwAfter represents the 'after' keyword.
	KwAfter
	// KwObject represents the 'object' literal constructor keyword.
	KwObject

	// KwBoolean represents the 'Boolean' primitive type name.
	KwBoolean
	// KwInt represents the 'Int' primitive type name.
	KwInt
	// KwFloat represents the 'Float' primitive type name.
	KwFloat
	// KwString represents the 'String' primitive type name.
	KwString
	// KwFile represents the 'File' primitive type name.
	KwFile
	// KwDirectory represents the 'Directory' primitive type name.
	KwDirectory
	// KwArrayType represents the 'Array' compound type name.
	KwArrayType
	// KwMapType represents the 'Map' compound type name.
	KwMapType
	// KwPairType represents the 'Pair' compound type name.
	KwPairType
	// KwObjectType represents the 'Object' compound type name.
	KwObjectType
	// KwNone represents the 'None' literal/type.
	KwNone

	// IntLit represents a decimal/0x/0o integer literal.
	IntLit
	// FloatLit represents a float literal (including scientific notation).
	FloatLit
	// BoolLit represents the 'true'/'false' literal.
	BoolLit
	// VersionIdent represents the version identifier following 'version' (e.g. "1.2").
	VersionIdent
	// DQuoteOpen represents the opening '"' of a double-quoted string.
	DQuoteOpen
	// DQuoteClose represents the closing '"' of a double-quoted string.
	DQuoteClose
	// SQuoteOpen represents the opening ''' of a single-quoted string.
	SQuoteOpen
	// SQuoteClose represents the closing ''' of a single-quoted string.
	SQuoteClose
	// StringText represents a run of literal text inside a quoted string.
	StringText
	// CommandText represents a run of static text inside a command section.
	CommandText

	// Plus represents '+'.
	Plus
	// Minus represents '-'.
	Minus
	// Star represents '*'.
	Star
	// Slash represents '/'.
	Slash
	// Percent represents '%'.
	Percent
	// Assign represents '='.
	Assign
	// EqEq represents '=='.
	EqEq
	// Bang represents '!'.
	Bang
	// BangEq represents '!='.
	BangEq
	// Lt represents '<'.
	Lt
	// LtEq represents '<='.
	LtEq
	// Gt represents '>'.
	Gt
	// GtEq represents '>='.
	GtEq
	// AndAnd represents '&&'.
	AndAnd
	// OrOr represents '||'.
	OrOr
	// Question represents '?'.
	Question
	// Colon represents ':'.
	Colon
	// Semicolon represents ';'.
	Semicolon
	// Comma represents ','.
	Comma
	// Dot represents '.'.
	Dot
	// LParen represents '('.
	LParen
	// RParen represents ')'.
	RParen
	// LBrace represents '{'.
	LBrace
	// RBrace represents '}'.
	RBrace
	// LBracket represents '['.
	LBracket
	// RBracket represents ']'.
	RBracket
	// PlaceholderOpenDollar represents '${' (legacy placeholder sigil).
	PlaceholderOpenDollar
	// PlaceholderOpenTilde represents '~{' (placeholder sigil).
	PlaceholderOpenTilde
	// HeredocOpen represents '<<<' (command section open).
	HeredocOpen
	// HeredocClose represents '>>>' (command section close).
	HeredocClose
)

// IsLiteral reports whether the token is a literal.
func (k Kind) IsLiteral() bool {
	switch k {
	case IntLit, FloatLit, BoolLit, VersionIdent, StringText, CommandText:
		return true
	default:
		return false
	}
}

// IsTypeKeyword reports whether the token is a built-in WDL type name keyword.
func (k Kind) IsTypeKeyword() bool {
	switch k {
	case KwBoolean, KwInt, KwFloat, KwString, KwFile, KwDirectory,
		KwArrayType, KwMapType, KwPairType, KwObjectType, KwNone:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is any reserved keyword (control or type).
func (k Kind) IsKeyword() bool {
	switch k {
	case KwVersion, KwImport, KwAs, KwAlias, KwWorkflow, KwTask, KwStruct, KwEnum,
		KwInput, KwOutput, KwCommand, KwRuntime, KwRequirements, KwHints, KwMeta,
		KwParameterMeta, KwCall, KwIf, KwThen, KwElse, KwScatter, KwIn, KwAfter, KwObject:
		return true
	default:
		return k.IsTypeKeyword()
	}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(unknown)"
}

var kindNames = map[Kind]string{
	Invalid: "INVALID", EOF: "EOF", Ident: "IDENT",
	KwVersion: "version", KwImport: "import", KwAs: "as", KwAlias: "alias",
	KwWorkflow: "workflow", KwTask: "task", KwStruct: "struct", KwEnum: "enum",
	KwInput: "input", KwOutput: "output", KwCommand: "command", KwRuntime: "runtime",
	KwRequirements: "requirements", KwHints: "hints", KwMeta: "meta",
	KwParameterMeta: "parameter_meta", KwCall: "call", KwIf: "if", KwThen: "then",
	KwElse: "else", KwScatter: "scatter", KwIn: "in", KwAfter: "after", KwObject: "object",
	KwBoolean: "Boolean", KwInt: "Int", KwFloat: "Float", KwString: "String",
	KwFile: "File", KwDirectory: "Directory", KwArrayType: "Array", KwMapType: "Map",
	KwPairType: "Pair", KwObjectType: "Object", KwNone: "None",
	IntLit: "int literal", FloatLit: "float literal", BoolLit: "bool literal",
	VersionIdent: "version identifier",
	DQuoteOpen: "\"", DQuoteClose: "\"", SQuoteOpen: "'", SQuoteClose: "'",
	StringText: "string text", CommandText: "command text",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Assign: "=",
	EqEq: "==", Bang: "!", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	AndAnd: "&&", OrOr: "||", Question: "?", Colon: ":", Semicolon: ";", Comma: ",",
	Dot: ".", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	PlaceholderOpenDollar: "${", PlaceholderOpenTilde: "~{",
	HeredocOpen: "<<<", HeredocClose: ">>>",
}
