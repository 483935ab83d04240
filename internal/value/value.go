// Package value implements the WDL runtime value model (§3, §4.5): the
// sum of None, primitive, and compound values that expression evaluation
// and task I/O staging pass around.
package value

import "wdlc/internal/types"

// Value is a runtime WDL value. Exactly one of the typed fields is
// meaningful, selected by Kind; compound payloads are shared slices/maps,
// mirroring the teacher's "mutation yields a new value" ownership rule
// (§3 Ownership) rather than being copied defensively on every access.
type Value struct {
	Kind types.Kind
	Type types.TypeID

	boolean bool
	integer int64
	float   float64
	str     string // String, and the resolved path for File/Directory

	elements []Value        // Array
	entries  []MapEntry      // Map, insertion order preserved
	pair     *[2]Value       // Pair: [left, right]
	fields   map[string]Value // Object/Struct

	// FileDigest is a lazily computed, cached content digest for File and
	// Directory values (§4.5 "computed lazily and cached"). Populated by
	// the cache/digest layer, not by the value model itself.
	FileDigest string
}

// MapEntry is one key/value pair of a Map value, kept in insertion order
// since WDL maps are ordered (§3).
type MapEntry struct {
	Key   Value
	Value Value
}

// None is the singleton `None` value.
func None() Value { return Value{Kind: types.KindNone} }

func Bool(b bool) Value    { return Value{Kind: types.KindBoolean, boolean: b} }
func Int(i int64) Value    { return Value{Kind: types.KindInt, integer: i} }
func Float(f float64) Value { return Value{Kind: types.KindFloat, float: f} }
func String(s string) Value { return Value{Kind: types.KindString, str: s} }
func File(path string) Value { return Value{Kind: types.KindFile, str: path} }
func Directory(path string) Value { return Value{Kind: types.KindDirectory, str: path} }

func Array(elemType types.TypeID, elems []Value) Value {
	return Value{Kind: types.KindArray, Type: elemType, elements: elems}
}

func Map(entries []MapEntry) Value {
	return Value{Kind: types.KindMap, entries: entries}
}

func Pair(left, right Value) Value {
	return Value{Kind: types.KindPair, pair: &[2]Value{left, right}}
}

func Object(fields map[string]Value) Value {
	return Value{Kind: types.KindObject, fields: fields}
}

func Struct(typeID types.TypeID, fields map[string]Value) Value {
	return Value{Kind: types.KindStruct, Type: typeID, fields: fields}
}

func (v Value) Bool() bool       { return v.boolean }
func (v Value) IsNone() bool     { return v.Kind == types.KindNone }
func (v Value) Int() int64       { return v.integer }
func (v Value) Float() float64   { return v.float }
func (v Value) Str() string      { return v.str }
func (v Value) Path() string     { return v.str }
func (v Value) Elements() []Value { return v.elements }
func (v Value) Entries() []MapEntry { return v.entries }

// PairParts returns the left and right members of a Pair value.
func (v Value) PairParts() (left, right Value) {
	if v.pair == nil {
		return Value{}, Value{}
	}
	return v.pair[0], v.pair[1]
}

// Field looks up a named member of an Object or Struct value.
func (v Value) Field(name string) (Value, bool) {
	fv, ok := v.fields[name]
	return fv, ok
}

// Fields returns the full field map of an Object or Struct value. Callers
// must not mutate the returned map.
func (v Value) Fields() map[string]Value { return v.fields }
