package engine

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"wdlc/internal/types"
	"wdlc/internal/value"
)

// wireValue is value.Value's msgpack-friendly shadow: value.Value's own
// fields are unexported (by design — see internal/value's ownership
// comment), so a cache entry's recorded outputs are converted to this
// plain, fully-exported struct before being handed to internal/cache,
// keeping that package ignorant of the WDL value model entirely.
type wireValue struct {
	Kind     string
	Bool     bool
	Int      int64
	Float    float64
	Str      string
	Elements []wireValue
	Keys     []wireValue
	Values   []wireValue
	Pair     []wireValue
	Fields   map[string]wireValue
}

func toWire(v value.Value) wireValue {
	w := wireValue{Kind: v.Kind.String()}
	switch v.Kind {
	case types.KindBoolean:
		w.Bool = v.Bool()
	case types.KindInt:
		w.Int = v.Int()
	case types.KindFloat:
		w.Float = v.Float()
	case types.KindString:
		w.Str = v.Str()
	case types.KindFile, types.KindDirectory:
		w.Str = v.Path()
	case types.KindArray:
		for _, e := range v.Elements() {
			w.Elements = append(w.Elements, toWire(e))
		}
	case types.KindMap:
		for _, e := range v.Entries() {
			w.Keys = append(w.Keys, toWire(e.Key))
			w.Values = append(w.Values, toWire(e.Value))
		}
	case types.KindPair:
		left, right := v.PairParts()
		w.Pair = []wireValue{toWire(left), toWire(right)}
	case types.KindObject, types.KindStruct:
		w.Fields = make(map[string]wireValue, len(v.Fields()))
		for name, fv := range v.Fields() {
			w.Fields[name] = toWire(fv)
		}
	}
	return w
}

func fromWire(w wireValue) (value.Value, error) {
	switch w.Kind {
	case types.KindNone.String():
		return value.None(), nil
	case types.KindBoolean.String():
		return value.Bool(w.Bool), nil
	case types.KindInt.String():
		return value.Int(w.Int), nil
	case types.KindFloat.String():
		return value.Float(w.Float), nil
	case types.KindString.String():
		return value.String(w.Str), nil
	case types.KindFile.String():
		return value.File(w.Str), nil
	case types.KindDirectory.String():
		return value.Directory(w.Str), nil
	case types.KindArray.String():
		elems := make([]value.Value, len(w.Elements))
		for i, e := range w.Elements {
			v, err := fromWire(e)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.Array(types.NoType, elems), nil
	case types.KindMap.String():
		entries := make([]value.MapEntry, len(w.Keys))
		for i := range w.Keys {
			k, err := fromWire(w.Keys[i])
			if err != nil {
				return value.Value{}, err
			}
			v, err := fromWire(w.Values[i])
			if err != nil {
				return value.Value{}, err
			}
			entries[i] = value.MapEntry{Key: k, Value: v}
		}
		return value.Map(entries), nil
	case types.KindPair.String():
		if len(w.Pair) != 2 {
			return value.Value{}, fmt.Errorf("wire pair value missing a part")
		}
		left, err := fromWire(w.Pair[0])
		if err != nil {
			return value.Value{}, err
		}
		right, err := fromWire(w.Pair[1])
		if err != nil {
			return value.Value{}, err
		}
		return value.Pair(left, right), nil
	case types.KindObject.String(), types.KindStruct.String():
		fields := make(map[string]value.Value, len(w.Fields))
		for name, fv := range w.Fields {
			v, err := fromWire(fv)
			if err != nil {
				return value.Value{}, err
			}
			fields[name] = v
		}
		return value.Object(fields), nil
	default:
		return value.Value{}, fmt.Errorf("unrecognized wire value kind %q", w.Kind)
	}
}

// encodeOutput msgpack-encodes v for storage as a call cache Entry.Outputs
// byte slice.
func encodeOutput(v value.Value) ([]byte, error) {
	return msgpack.Marshal(toWire(v))
}

// decodeOutput reverses encodeOutput.
func decodeOutput(b []byte) (value.Value, error) {
	var w wireValue
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return value.Value{}, err
	}
	return fromWire(w)
}
