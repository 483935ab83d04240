package types

// Coercion classifies how (or whether) a value of type `from` can be used
// where `to` is expected (§4.5).
type Coercion uint8

const (
	// CoerceIncompatible means no value of `from` is acceptable as `to`.
	CoerceIncompatible Coercion = iota
	// CoerceIdentity means `from` and `to` are the same type.
	CoerceIdentity
	// CoerceWiden means a numeric widening (Int -> Float).
	CoerceWiden
	// CoerceStringLike means a String-family conversion (String -> File,
	// String -> Directory).
	CoerceStringLike
	// CoerceToOptional means `from` coerces to the non-optional form of
	// `to`, and `to` additionally accepts None.
	CoerceToOptional
	// CoerceNone means `from` is None and `to` is any optional type.
	CoerceNone
	// CoerceNonEmptyToArray means `from` is `Array[T]+` and `to` is
	// `Array[T]`.
	CoerceNonEmptyToArray
	// CoerceStructural means a compound coercion succeeds because every
	// component coerces (Array-to-Array, Map-to-Map, Pair-to-Pair,
	// Object/Struct-to-Struct by matching field names).
	CoerceStructural
)

// Ok reports whether c represents an actually-permitted coercion.
func (c Coercion) Ok() bool { return c != CoerceIncompatible }

// Coerce classifies whether a value of type `from` may be used as `to`,
// per spec §4.5's pairwise coercion table. It does not mutate the
// interner; compound coercions recurse structurally.
func (in *Interner) Coerce(from, to TypeID) Coercion {
	if from == to {
		return CoerceIdentity
	}
	ft, tt := in.Type(from), in.Type(to)

	if ft.Kind == KindNone {
		if tt.Optional {
			return CoerceNone
		}
		return CoerceIncompatible
	}

	// T coerces to T? for any T (optional promotion), checked by comparing
	// the non-optional forms.
	if tt.Optional && !ft.Optional {
		bareTo := in.WithoutOptional(to)
		if c := in.coerceBare(ft, in.Type(bareTo), from, bareTo); c.Ok() {
			if c == CoerceIdentity {
				return CoerceToOptional
			}
			return c
		}
		return CoerceIncompatible
	}
	if ft.Optional && !tt.Optional {
		return CoerceIncompatible
	}

	return in.coerceBare(ft, tt, from, to)
}

func (in *Interner) coerceBare(ft, tt Type, from, to TypeID) Coercion {
	switch {
	case ft.Kind == tt.Kind && ft == tt:
		return CoerceIdentity
	case ft.Kind == KindInt && tt.Kind == KindFloat:
		return CoerceWiden
	case ft.Kind == KindString && (tt.Kind == KindFile || tt.Kind == KindDirectory):
		return CoerceStringLike
	case ft.Kind == KindArray && tt.Kind == KindArray:
		if ft.NonEmpty && !tt.NonEmpty && ft.Elem == tt.Elem {
			return CoerceNonEmptyToArray
		}
		if in.Coerce(ft.Elem, tt.Elem).Ok() && ft.NonEmpty == tt.NonEmpty {
			return CoerceStructural
		}
		if in.Coerce(ft.Elem, tt.Elem).Ok() && ft.NonEmpty && !tt.NonEmpty {
			return CoerceNonEmptyToArray
		}
		return CoerceIncompatible
	case ft.Kind == KindMap && tt.Kind == KindMap:
		if in.Coerce(ft.Key, tt.Key).Ok() && in.Coerce(ft.Value, tt.Value).Ok() {
			return CoerceStructural
		}
		return CoerceIncompatible
	case ft.Kind == KindPair && tt.Kind == KindPair:
		if in.Coerce(ft.Left, tt.Left).Ok() && in.Coerce(ft.Right, tt.Right).Ok() {
			return CoerceStructural
		}
		return CoerceIncompatible
	case (ft.Kind == KindObject || ft.Kind == KindStruct) && tt.Kind == KindStruct:
		return in.coerceToStruct(from, to)
	case ft.Kind == KindStruct && tt.Kind == KindObject:
		return CoerceStructural
	default:
		return CoerceIncompatible
	}
}

// coerceToStruct accepts an Object or Struct literal as a declared Struct
// type when every declared field is present with a coercible type.
func (in *Interner) coerceToStruct(from, to TypeID) Coercion {
	toInfo, ok := in.StructInfo(to)
	if !ok {
		return CoerceIncompatible
	}
	ft := in.Type(from)
	var fromFields []Field
	if ft.Kind == KindStruct {
		fi, _ := in.StructInfo(from)
		fromFields = fi.Fields
	} else {
		return CoerceStructural // Object: field types checked at evaluation time
	}
	byName := make(map[string]TypeID, len(fromFields))
	for _, f := range fromFields {
		byName[f.Name] = f.Type
	}
	for _, want := range toInfo.Fields {
		got, ok := byName[want.Name]
		if !ok || !in.Coerce(got, want.Type).Ok() {
			return CoerceIncompatible
		}
	}
	return CoerceStructural
}

// Unify returns the narrowest common type both a and b coerce to, if one
// exists — used for array-literal element inference and conditional/
// scatter type promotion.
func (in *Interner) Unify(a, b TypeID) (TypeID, bool) {
	if a == b {
		return a, true
	}
	if in.Coerce(a, b).Ok() {
		return b, true
	}
	if in.Coerce(b, a).Ok() {
		return a, true
	}
	return NoType, false
}
