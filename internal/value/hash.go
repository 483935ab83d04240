package value

import (
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"wdlc/internal/types"
)

// Hash computes a deterministic, process-stable hash of v (§4.5: "value
// hashing (deterministic across process runs; floats hash by bit pattern,
// strings by UTF-8 bytes, files by canonical path)"). It is used for
// in-memory dedup (map/set keys over Values); the call cache's own content
// digest (internal/cache) is a distinct, on-disk-stable 256-bit hash and
// does not share this implementation.
func Hash(v Value) uint64 {
	d := xxhash.New()
	hashInto(d, v)
	return d.Sum64()
}

func hashInto(d *xxhash.Digest, v Value) {
	_, _ = d.Write([]byte{byte(v.Kind)})
	switch v.Kind {
	case types.KindNone:
		// no payload
	case types.KindBoolean:
		if v.boolean {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	case types.KindInt:
		_, _ = d.Write(beUint64(uint64(v.integer)))
	case types.KindFloat:
		_, _ = d.Write(beUint64(math.Float64bits(v.float)))
	case types.KindString, types.KindFile, types.KindDirectory:
		_, _ = d.WriteString(v.str)
	case types.KindArray:
		for _, e := range v.elements {
			hashInto(d, e)
		}
	case types.KindMap:
		for _, e := range v.entries {
			hashInto(d, e.Key)
			hashInto(d, e.Value)
		}
	case types.KindPair:
		l, r := v.PairParts()
		hashInto(d, l)
		hashInto(d, r)
	case types.KindObject, types.KindStruct:
		names := make([]string, 0, len(v.fields))
		for k := range v.fields {
			names = append(names, k)
		}
		sort.Strings(names) // map iteration order is not stable; field order must not affect the hash
		for _, k := range names {
			_, _ = d.WriteString(k)
			hashInto(d, v.fields[k])
		}
	}
}

func beUint64(u uint64) []byte {
	return []byte{
		byte(u >> 56), byte(u >> 48), byte(u >> 40), byte(u >> 32),
		byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u),
	}
}
