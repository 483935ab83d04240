package value_test

import (
	"math"
	"testing"

	"wdlc/internal/value"
)

func TestEqualNaNNeverEqualsItself(t *testing.T) {
	nan := value.Float(math.NaN())
	if value.Equal(nan, nan) {
		t.Fatal("expected NaN != NaN per IEEE 754 (§8)")
	}
}

func TestEqualStructuralArrayAndMap(t *testing.T) {
	a := value.Array(0, []value.Value{value.Int(1), value.Int(2)})
	b := value.Array(0, []value.Value{value.Int(1), value.Int(2)})
	if !value.Equal(a, b) {
		t.Fatal("expected structurally identical arrays to be equal")
	}
	c := value.Array(0, []value.Value{value.Int(2), value.Int(1)})
	if value.Equal(a, c) {
		t.Fatal("expected arrays with a different element order to differ")
	}
}

func TestHashIsDeterministicAndOrderIndependentForObjectFields(t *testing.T) {
	o1 := value.Object(map[string]value.Value{"a": value.Int(1), "b": value.String("x")})
	o2 := value.Object(map[string]value.Value{"b": value.String("x"), "a": value.Int(1)})
	if value.Hash(o1) != value.Hash(o2) {
		t.Fatal("expected Go's randomized map iteration to not affect the hash")
	}
	if value.Hash(o1) != value.Hash(o1) {
		t.Fatal("expected Hash to be a pure function of its argument")
	}
}

func TestHashDistinguishesIntFromFloat(t *testing.T) {
	if value.Hash(value.Int(1)) == value.Hash(value.Float(1.0)) {
		t.Fatal("expected Int(1) and Float(1.0) to hash differently (distinct Kind tags)")
	}
}
