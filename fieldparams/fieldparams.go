// Package fieldparams derives the Montgomery constants a prime-field
// descriptor needs (R^2 mod P, the low-word inverse INV, and the
// canonical ONE = R mod P) from a bare modulus and limb shape.
//
// No library in the retrieval pack exposes these constants publicly --
// gnark-crypto computes them internally but keeps them as unexported
// per-package tables -- so this is the one place in the domain stack that
// falls back to math/big instead of an ecosystem library.
// The formulas mirror what ff-cl-gen/src/lib.rs's params() reads off an
// algebra::PrimeField's associated constants.
package fieldparams

import (
	"math/big"

	"github.com/zkaccel/gpualgebra/limb"
)

// Descriptor is the prime field descriptor consumed (not defined) by the
// kernel source generators: modulus, Montgomery R^2, low-word inverse,
// canonical ONE, and bit width.
type Descriptor struct {
	Name     string
	Modulus  *big.Int
	BitWidth int
	Kind     limb.Kind

	R2  []uint64 // Montgomery R^2 mod P, limb-decomposed
	One []uint64 // Montgomery ONE = R mod P, limb-decomposed
	P   []uint64 // modulus, limb-decomposed
	Inv uint64   // Montgomery low-word inverse: -P^-1 mod 2^limbBits
}

// Derive builds a Descriptor for modulus p, specialized for limb kind k.
// bitWidth should be the field's natural bit width (e.g. 255 for BLS12-381
// Fr); the limb count is ceil(bitWidth/limbBits).
func Derive(name string, p *big.Int, bitWidth int, k limb.Kind) Descriptor {
	limbBits := uint(k.Bits())
	count := k.Count(bitWidth)
	rBits := uint(count) * limbBits

	r := new(big.Int).Lsh(big.NewInt(1), rBits) // R = 2^(limbBits*limbs)
	one := new(big.Int).Mod(r, p)               // ONE = R mod P
	r2 := new(big.Int).Mul(r, r)
	r2.Mod(r2, p) // R^2 mod P

	return Descriptor{
		Name:     name,
		Modulus:  new(big.Int).Set(p),
		BitWidth: bitWidth,
		Kind:     k,
		R2:       limb.LimbsOf(r2, k, int(rBits)),
		One:      limb.LimbsOf(one, k, int(rBits)),
		P:        limb.LimbsOf(p, k, int(rBits)),
		Inv:      montgomeryInv(p, limbBits),
	}
}

// montgomeryInv computes INV = -P^-1 mod 2^limbBits, the low-word inverse
// used by CIOS Montgomery multiplication. It uses the standard
// Newton-iteration trick: if x == P^-1 mod 2^k, then
// x' = x*(2 - P*x) mod 2^(2k) is P^-1 mod 2^(2k); doubling the bit width
// across iterations converges in log2(limbBits) steps.
func montgomeryInv(p *big.Int, limbBits uint) uint64 {
	p0 := new(big.Int).Mod(p, new(big.Int).Lsh(big.NewInt(1), limbBits)).Uint64()

	// x is the inverse of p0 mod 2^1, then refined mod 2^2, 2^4, ... .
	x := uint64(1)
	for bits := uint(1); bits < limbBits; bits <<= 1 {
		x = x * (2 - p0*x)
	}
	// x == p0^-1 mod 2^limbBits; INV = -x mod 2^limbBits.
	if limbBits == 64 {
		return -x
	}
	mask := (uint64(1) << limbBits) - 1
	return (-x) & mask
}
