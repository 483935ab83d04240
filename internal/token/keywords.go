package token

var keywords = map[string]Kind{
	"version":        KwVersion,
	"import":         KwImport,
	"as":             KwAs,
	"alias":          KwAlias,
	"workflow":       KwWorkflow,
	"task":           KwTask,
	"struct":         KwStruct,
	"enum":           KwEnum,
	"input":          KwInput,
	"output":         KwOutput,
	"command":        KwCommand,
	"runtime":        KwRuntime,
	"requirements":   KwRequirements,
	"hints":          KwHints,
	"meta":           KwMeta,
	"parameter_meta": KwParameterMeta,
	"call":           KwCall,
	"if":             KwIf,
	"then":           KwThen,
	"else":           KwElse,
	"scatter":        KwScatter,
	"in":             KwIn,
	"after":          KwAfter,
	"object":         KwObject,
	"Boolean":        KwBoolean,
	"Int":            KwInt,
	"Float":          KwFloat,
	"String":         KwString,
	"File":           KwFile,
	"Directory":      KwDirectory,
	"Array":          KwArrayType,
	"Map":            KwMapType,
	"Pair":           KwPairType,
	"Object":         KwObjectType,
	"None":           KwNone,
	"true":           BoolLit,
	"false":          BoolLit,
}

// LookupKeyword returns the keyword Kind for ident, if any. Keyword matching
// is case-sensitive: WDL keywords are always written in the case shown here.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
