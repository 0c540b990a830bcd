package limb

import (
	"math/big"
	"testing"
)

func TestOpenCLTypeName(t *testing.T) {
	if Kind32.OpenCLTypeName() != "uint" {
		t.Fatalf("Kind32 type name = %q, want uint", Kind32.OpenCLTypeName())
	}
	if Kind64.OpenCLTypeName() != "ulong" {
		t.Fatalf("Kind64 type name = %q, want ulong", Kind64.OpenCLTypeName())
	}
}

func TestCount(t *testing.T) {
	cases := []struct {
		k    Kind
		bits int
		want int
	}{
		{Kind64, 255, 4},
		{Kind64, 256, 4},
		{Kind64, 257, 5},
		{Kind32, 255, 8},
		{Kind32, 256, 8},
	}
	for _, c := range cases {
		if got := c.k.Count(c.bits); got != c.want {
			t.Errorf("%v.Count(%d) = %d, want %d", c.k, c.bits, got, c.want)
		}
	}
}

func TestLimbsOfRoundTrip(t *testing.T) {
	val, _ := new(big.Int).SetString("123456789abcdef0123456789abcdef", 16)
	for _, k := range []Kind{Kind32, Kind64} {
		limbs := LimbsOf(val, k, 128)
		got := new(big.Int)
		for i := len(limbs) - 1; i >= 0; i-- {
			got.Lsh(got, uint(k.Bits()))
			got.Or(got, new(big.Int).SetUint64(limbs[i]))
		}
		if got.Cmp(val) != 0 {
			t.Errorf("kind %v: round trip mismatch: got %x want %x", k, got, val)
		}
	}
}

func TestLimbsOfOneMatchesMontgomeryOne(t *testing.T) {
	// R mod P for a toy modulus, decomposed with 64-bit limbs, must equal
	// the limb vector a generated FIELD_ONE constant would carry.
	p := big.NewInt(17)
	r := new(big.Int).Lsh(big.NewInt(1), 64) // R = 2^64 for a single 64-bit limb
	one := new(big.Int).Mod(r, p)
	limbs := LimbsOf(one, Kind64, 64)
	if len(limbs) != 1 || limbs[0] != one.Uint64() {
		t.Fatalf("LimbsOf(R mod P) = %v, want [%d]", limbs, one.Uint64())
	}
}
