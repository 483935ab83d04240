package value

import "wdlc/internal/types"

// Equal implements WDL's structural value equality, respecting IEEE 754
// NaN semantics: a NaN Float never equals any Float, including itself
// (§4.5, §8 "value equality (structural, respecting floating-point
// NaN != NaN)").
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.KindNone:
		return true
	case types.KindBoolean:
		return a.boolean == b.boolean
	case types.KindInt:
		return a.integer == b.integer
	case types.KindFloat:
		return a.float == b.float // Go's == already yields false for NaN
	case types.KindString, types.KindFile, types.KindDirectory:
		return a.str == b.str
	case types.KindArray:
		if len(a.elements) != len(b.elements) {
			return false
		}
		for i := range a.elements {
			if !Equal(a.elements[i], b.elements[i]) {
				return false
			}
		}
		return true
	case types.KindMap:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if !Equal(a.entries[i].Key, b.entries[i].Key) || !Equal(a.entries[i].Value, b.entries[i].Value) {
				return false
			}
		}
		return true
	case types.KindPair:
		al, ar := a.PairParts()
		bl, br := b.PairParts()
		return Equal(al, bl) && Equal(ar, br)
	case types.KindObject, types.KindStruct:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for k, av := range a.fields {
			bv, ok := b.fields[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
