// Package cst implements the lossless concrete syntax tree: an immutable,
// structurally-shared "green" layer plus a cheaply cloneable "red" handle
// layer for navigation (§4.3).
package cst

import "wdlc/internal/token"

// Kind identifies a node or token in the syntax tree. Token kinds below
// SyntaxKindTokenBase alias token.Kind values directly so a CST token always
// carries its original lexical kind; node kinds start above that boundary.
type Kind uint16

const SyntaxKindTokenBase Kind = 1000

// TokenKind wraps a lexer token.Kind as a CST Kind.
func TokenKind(k token.Kind) Kind {
	return Kind(k)
}

// IsToken reports whether k represents a lexical token rather than a node.
func (k Kind) IsToken() bool {
	return k < SyntaxKindTokenBase
}

// AsTokenKind converts a token Kind back to its token.Kind, valid only when
// IsToken() is true.
func (k Kind) AsTokenKind() token.Kind {
	return token.Kind(k)
}

// Node kinds, one per grammar production that can own children. Grouped by
// the document section they belong to; see §4.4 for the grammar they
// correspond to.
const (
	KindError Kind = SyntaxKindTokenBase + iota
	KindDocument
	KindVersionStatement
	KindImportStatement
	KindImportAlias
	KindStructDefinition
	KindStructMember
	KindEnumDefinition
	KindEnumVariant
	KindTaskDefinition
	KindWorkflowDefinition
	KindInputSection
	KindOutputSection
	KindDeclaration
	KindCommandSection
	KindCommandText
	KindRuntimeSection
	KindRuntimeAttr
	KindRequirementsSection
	KindRequirementsAttr
	KindHintsSection
	KindHintsAttr
	KindMetaSection
	KindParameterMetaSection
	KindMetaEntry
	KindMetaObject
	KindMetaArray
	KindCallStatement
	KindCallAfter
	KindCallInputs
	KindCallInput
	KindIfStatement
	KindScatterStatement
	KindTypeExpr
	KindArrayTypeExpr
	KindMapTypeExpr
	KindPairTypeExpr
	KindOptionalTypeSuffix
	KindNonEmptySuffix

	// Expressions.
	KindLiteralExpr
	KindArrayLiteral
	KindMapLiteral
	KindMapEntry
	KindPairLiteral
	KindObjectLiteral
	KindObjectMember
	KindStructLiteral
	KindNameRef
	KindParenExpr
	KindUnaryExpr
	KindBinaryExpr
	KindTernaryExpr
	KindApplyExpr
	KindArgList
	KindIndexExpr
	KindMemberExpr
	KindPlaceholder
	KindPlaceholderOption
	KindStringLiteral
	KindNoneLiteral

	kindSentinelEnd
)

var kindNames = map[Kind]string{
	KindError:               "Error",
	KindDocument:             "Document",
	KindVersionStatement:     "VersionStatement",
	KindImportStatement:      "ImportStatement",
	KindImportAlias:          "ImportAlias",
	KindStructDefinition:     "StructDefinition",
	KindStructMember:         "StructMember",
	KindEnumDefinition:       "EnumDefinition",
	KindEnumVariant:          "EnumVariant",
	KindTaskDefinition:       "TaskDefinition",
	KindWorkflowDefinition:   "WorkflowDefinition",
	KindInputSection:         "InputSection",
	KindOutputSection:        "OutputSection",
	KindDeclaration:          "Declaration",
	KindCommandSection:       "CommandSection",
	KindCommandText:          "CommandText",
	KindRuntimeSection:       "RuntimeSection",
	KindRuntimeAttr:          "RuntimeAttr",
	KindRequirementsSection:  "RequirementsSection",
	KindRequirementsAttr:     "RequirementsAttr",
	KindHintsSection:         "HintsSection",
	KindHintsAttr:            "HintsAttr",
	KindMetaSection:          "MetaSection",
	KindParameterMetaSection: "ParameterMetaSection",
	KindMetaEntry:            "MetaEntry",
	KindMetaObject:           "MetaObject",
	KindMetaArray:            "MetaArray",
	KindCallStatement:        "CallStatement",
	KindCallAfter:            "CallAfter",
	KindCallInputs:           "CallInputs",
	KindCallInput:            "CallInput",
	KindIfStatement:          "IfStatement",
	KindScatterStatement:     "ScatterStatement",
	KindTypeExpr:             "TypeExpr",
	KindArrayTypeExpr:        "ArrayTypeExpr",
	KindMapTypeExpr:          "MapTypeExpr",
	KindPairTypeExpr:         "PairTypeExpr",
	KindOptionalTypeSuffix:   "OptionalTypeSuffix",
	KindNonEmptySuffix:       "NonEmptySuffix",
	KindLiteralExpr:          "LiteralExpr",
	KindArrayLiteral:         "ArrayLiteral",
	KindMapLiteral:           "MapLiteral",
	KindMapEntry:             "MapEntry",
	KindPairLiteral:          "PairLiteral",
	KindObjectLiteral:        "ObjectLiteral",
	KindObjectMember:         "ObjectMember",
	KindStructLiteral:        "StructLiteral",
	KindNameRef:              "NameRef",
	KindParenExpr:            "ParenExpr",
	KindUnaryExpr:            "UnaryExpr",
	KindBinaryExpr:           "BinaryExpr",
	KindTernaryExpr:          "TernaryExpr",
	KindApplyExpr:            "ApplyExpr",
	KindArgList:              "ArgList",
	KindIndexExpr:            "IndexExpr",
	KindMemberExpr:           "MemberExpr",
	KindPlaceholder:          "Placeholder",
	KindPlaceholderOption:    "PlaceholderOption",
	KindStringLiteral:        "StringLiteral",
	KindNoneLiteral:          "NoneLiteral",
}

// AllNodeKinds returns every node Kind (excluding token kinds and the
// internal sentinels), in declaration order. Used by astview's self-test
// that the kind-to-AST-type registry covers every node kind exactly once.
func AllNodeKinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindDocument; k < kindSentinelEnd; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if k.IsToken() {
		return k.AsTokenKind().String()
	}
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownKind"
}
