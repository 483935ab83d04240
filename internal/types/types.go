// Package types implements the WDL value/type model (§4.5): a sum of
// primitive, compound, None, and Union types, interned for cheap equality
// and pairwise coercion/unification.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// TypeID uniquely identifies an interned Type.
type TypeID uint32

// NoType marks the absence of a type (e.g. an unresolved expression).
const NoType TypeID = 0

// Kind enumerates the sum's variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNone
	KindBoolean
	KindInt
	KindFloat
	KindString
	KindFile
	KindDirectory
	KindArray
	KindMap
	KindPair
	KindObject
	KindStruct
	KindEnum
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindNone:
		return "None"
	case KindBoolean:
		return "Boolean"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindFile:
		return "File"
	case KindDirectory:
		return "Directory"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindPair:
		return "Pair"
	case KindObject:
		return "Object"
	case KindStruct:
		return "Struct"
	case KindEnum:
		return "Enum"
	case KindUnion:
		return "Union"
	default:
		return "Unknown"
	}
}

// Type is the structural descriptor for one interned TypeID. Compound kinds
// reference their component types by TypeID; Struct/Enum additionally carry
// a Payload index into the interner's side tables (nominal identity).
type Type struct {
	Kind     Kind
	Optional bool
	NonEmpty bool // Array only: the "+" quantifier
	Elem     TypeID
	Key      TypeID
	Value    TypeID
	Left     TypeID
	Right    TypeID
	Payload  int // index into structs/enums/unions, by Kind
}

// Field is one named member of a Struct or Object type.
type Field struct {
	Name string
	Type TypeID
}

// StructInfo is the nominal identity and field list for a Struct type.
type StructInfo struct {
	Name   string
	Fields []Field
}

// EnumInfo is the nominal identity and variant list for an Enum type.
type EnumInfo struct {
	Name     string
	Variants []string
}

// UnionInfo lists the candidate types a Union (used only during inference)
// may collapse to.
type UnionInfo struct {
	Members []TypeID
}

// Interner assigns stable TypeIDs to structurally (or, for Struct/Enum,
// nominally) identical types, the same dedup-by-fingerprint idea the
// teacher's own type interner uses, generalized to WDL's closed type sum.
type Interner struct {
	types   []Type
	index   map[Type]TypeID
	structs []StructInfo
	enums   []EnumInfo
	unions  []UnionInfo

	// Cached TypeIDs for the primitive/None builtins, populated once.
	boolean, integer, float, str, file, directory, none TypeID
}

// NewInterner returns an Interner seeded with the primitive builtins.
func NewInterner() *Interner {
	in := &Interner{index: make(map[Type]TypeID, 64)}
	in.types = append(in.types, Type{Kind: KindInvalid}) // TypeID 0 == NoType
	in.none = in.intern(Type{Kind: KindNone})
	in.boolean = in.intern(Type{Kind: KindBoolean})
	in.integer = in.intern(Type{Kind: KindInt})
	in.float = in.intern(Type{Kind: KindFloat})
	in.str = in.intern(Type{Kind: KindString})
	in.file = in.intern(Type{Kind: KindFile})
	in.directory = in.intern(Type{Kind: KindDirectory})
	return in
}

func (in *Interner) Boolean() TypeID   { return in.boolean }
func (in *Interner) Int() TypeID       { return in.integer }
func (in *Interner) Float() TypeID     { return in.float }
func (in *Interner) String() TypeID    { return in.str }
func (in *Interner) File() TypeID      { return in.file }
func (in *Interner) Directory() TypeID { return in.directory }
func (in *Interner) None() TypeID      { return in.none }

func (in *Interner) intern(t Type) TypeID {
	if id, ok := in.index[t]; ok {
		return id
	}
	in.types = append(in.types, t)
	id := TypeID(len(in.types) - 1)
	in.index[t] = id
	return id
}

// Type looks up the structural descriptor for an interned TypeID.
func (in *Interner) Type(id TypeID) Type {
	if int(id) >= len(in.types) {
		return Type{Kind: KindInvalid}
	}
	return in.types[id]
}

// Optional returns id's corresponding `T?` TypeID.
func (in *Interner) Optional(id TypeID) TypeID {
	t := in.Type(id)
	if t.Optional {
		return id
	}
	t.Optional = true
	return in.intern(t)
}

// WithoutOptional strips the optional flag, returning the bare `T`.
func (in *Interner) WithoutOptional(id TypeID) TypeID {
	t := in.Type(id)
	if !t.Optional {
		return id
	}
	t.Optional = false
	return in.intern(t)
}

// Array interns `Array[elem]`, optionally non-empty (`Array[elem]+`).
func (in *Interner) Array(elem TypeID, nonEmpty bool) TypeID {
	return in.intern(Type{Kind: KindArray, Elem: elem, NonEmpty: nonEmpty})
}

// Map interns `Map[key, value]`.
func (in *Interner) Map(key, value TypeID) TypeID {
	return in.intern(Type{Kind: KindMap, Key: key, Value: value})
}

// Pair interns `Pair[left, right]`.
func (in *Interner) Pair(left, right TypeID) TypeID {
	return in.intern(Type{Kind: KindPair, Left: left, Right: right})
}

// Object interns the single, fieldless-at-the-type-level `Object` type
// (WDL's `Object` is dynamically typed; field types are not tracked
// structurally the way Struct's are).
func (in *Interner) Object() TypeID {
	return in.intern(Type{Kind: KindObject})
}

// Struct interns a nominal struct type, keyed by name. Calling this twice
// with the same name returns the same TypeID (re-declaration is a
// document-analyzer diagnostic, not an interner concern); the fields
// recorded are those of the first call.
func (in *Interner) Struct(name string, fields []Field) TypeID {
	for i, s := range in.structs {
		if s.Name == name {
			return in.intern(Type{Kind: KindStruct, Payload: i})
		}
	}
	in.structs = append(in.structs, StructInfo{Name: name, Fields: append([]Field(nil), fields...)})
	return in.intern(Type{Kind: KindStruct, Payload: len(in.structs) - 1})
}

// StructInfo returns the field list for a Struct TypeID.
func (in *Interner) StructInfo(id TypeID) (StructInfo, bool) {
	t := in.Type(id)
	if t.Kind != KindStruct || t.Payload >= len(in.structs) {
		return StructInfo{}, false
	}
	return in.structs[t.Payload], true
}

// Enum interns a nominal enum type (WDL 1.2), keyed by name.
func (in *Interner) Enum(name string, variants []string) TypeID {
	for i, e := range in.enums {
		if e.Name == name {
			return in.intern(Type{Kind: KindEnum, Payload: i})
		}
	}
	in.enums = append(in.enums, EnumInfo{Name: name, Variants: append([]string(nil), variants...)})
	return in.intern(Type{Kind: KindEnum, Payload: len(in.enums) - 1})
}

// EnumInfo returns the variant list for an Enum TypeID.
func (in *Interner) EnumInfo(id TypeID) (EnumInfo, bool) {
	t := in.Type(id)
	if t.Kind != KindEnum || t.Payload >= len(in.enums) {
		return EnumInfo{}, false
	}
	return in.enums[t.Payload], true
}

// Union interns a union of candidate types, used only during inference
// (e.g. reconciling an array literal's heterogeneous element types before
// a Unify pass collapses it to a concrete type or reports an error).
func (in *Interner) Union(members []TypeID) TypeID {
	sorted := append([]TypeID(nil), members...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	in.unions = append(in.unions, UnionInfo{Members: sorted})
	return in.intern(Type{Kind: KindUnion, Payload: len(in.unions) - 1})
}

// UnionInfo returns the member list for a Union TypeID.
func (in *Interner) UnionInfo(id TypeID) (UnionInfo, bool) {
	t := in.Type(id)
	if t.Kind != KindUnion || t.Payload >= len(in.unions) {
		return UnionInfo{}, false
	}
	return in.unions[t.Payload], true
}

// Display renders a TypeID the way WDL source would spell it, e.g.
// "Array[Pair[String, Int]]+?".
func (in *Interner) Display(id TypeID) string {
	t := in.Type(id)
	var s string
	switch t.Kind {
	case KindArray:
		s = fmt.Sprintf("Array[%s]", in.Display(t.Elem))
		if t.NonEmpty {
			s += "+"
		}
	case KindMap:
		s = fmt.Sprintf("Map[%s, %s]", in.Display(t.Key), in.Display(t.Value))
	case KindPair:
		s = fmt.Sprintf("Pair[%s, %s]", in.Display(t.Left), in.Display(t.Right))
	case KindStruct:
		info, _ := in.StructInfo(id)
		s = info.Name
	case KindEnum:
		info, _ := in.EnumInfo(id)
		s = info.Name
	case KindUnion:
		info, _ := in.UnionInfo(id)
		parts := make([]string, len(info.Members))
		for i, m := range info.Members {
			parts[i] = in.Display(m)
		}
		s = strings.Join(parts, " | ")
	default:
		s = t.Kind.String()
	}
	if t.Optional && t.Kind != KindNone {
		s += "?"
	}
	return s
}
