// Package limb declares the device scalar shape (32-bit or 64-bit limbs)
// used to decompose host big integers into the vectors a generated kernel
// expects for its FIELD_limb type.
package limb

import "math/big"

// Kind selects the device-side scalar width used to hold one limb of a
// field element. The active assemblers always specialize templates with
// Kind64, but Kind32 remains a mandatory, independently testable property
// of the field source generator.
type Kind int

const (
	Kind32 Kind = 32
	Kind64 Kind = 64
)

// Bits returns the limb width in bits (32 or 64).
func (k Kind) Bits() int {
	return int(k)
}

// OpenCLTypeName returns the device scalar type name the generated source
// uses for FIELD_limb.
func (k Kind) OpenCLTypeName() string {
	switch k {
	case Kind32:
		return "uint"
	case Kind64:
		return "ulong"
	default:
		panic("limb: unknown kind")
	}
}

// PTXInfo returns the (type suffix, register constraint) pair used only
// when emitting inline NVIDIA PTX assembly in the field template's
// FIELD_add_/FIELD_sub_ block.
func (k Kind) PTXInfo() (typeSuffix, registerConstraint string) {
	switch k {
	case Kind32:
		return "u32", "r"
	case Kind64:
		return "u64", "l"
	default:
		panic("limb: unknown kind")
	}
}

// Count returns the number of limbs of this kind needed to hold a value of
// the given bit width: ceil(bits / limbBits).
func (k Kind) Count(bits int) int {
	lb := k.Bits()
	return (bits + lb - 1) / lb
}

// Zero returns the all-zero limb vector of the given limb count.
func (k Kind) Zero(count int) []uint64 {
	return make([]uint64, count)
}

// LimbsOf decomposes a non-negative host big integer into a little-endian
// vector of limbs of the given kind, using exactly the limb count implied
// by bitWidth. Montgomery-form values (e.g. FIELD_ONE == R mod P) pass
// through this unchanged -- LimbsOf has no notion of what value it is
// decomposing, only of its magnitude and the limb shape requested.
func LimbsOf(value *big.Int, k Kind, bitWidth int) []uint64 {
	count := k.Count(bitWidth)
	limbs := make([]uint64, count)
	mask := new(big.Int).Lsh(big.NewInt(1), uint(k.Bits()))
	mask.Sub(mask, big.NewInt(1))

	v := new(big.Int).Set(value)
	tmp := new(big.Int)
	for i := 0; i < count; i++ {
		tmp.And(v, mask)
		limbs[i] = tmp.Uint64()
		v.Rsh(v, uint(k.Bits()))
	}
	return limbs
}

// Bits returns the number of limbs worth of bits this kind reserves for a
// value of the given count, i.e. count*k.Bits().
func Bits(k Kind, count int) int {
	return count * k.Bits()
}
