// Package scalar provides host-side modular arithmetic over math/big,
// used by the fft, msm, and polycommit host engines wherever the spec
// treats "field element" as a consumed, opaque type rather than one it
// defines a representation for. The device-side generators (fieldsrc,
// fp2src) already own the Montgomery device representation; this
// package is the plain-integer host-side counterpart, grounded the same
// way fieldparams is -- no library in the pack exposes a generic
// mod-P ring usable for an arbitrary, possibly unsupported family (see
// curvefamily's bn_382/tweedle placeholders), so this is the second
// deliberate stdlib leaf, alongside fieldparams.
package scalar

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/zkaccel/gpualgebra/limb"
)

// Field is the ring Z/pZ for a fixed modulus p. The zero value is not
// usable; construct with NewField.
type Field struct {
	p *big.Int
}

// NewField returns the field Z/pZ. It panics if p is not positive,
// since every caller derives p from a curvefamily.Group descriptor that
// is already known-valid by construction.
func NewField(p *big.Int) Field {
	if p.Sign() <= 0 {
		panic(fmt.Sprintf("scalar: non-positive modulus %s", p))
	}
	return Field{p: new(big.Int).Set(p)}
}

// Modulus returns a copy of the field's modulus.
func (f Field) Modulus() *big.Int { return new(big.Int).Set(f.p) }

// BitLen is the modulus's bit length, the scalar_bits term in the
// Pippenger window-size formula.
func (f Field) BitLen() int { return f.p.BitLen() }

// Zero returns the additive identity.
func (f Field) Zero() *big.Int { return new(big.Int) }

// One returns the multiplicative identity.
func (f Field) One() *big.Int { return big.NewInt(1) }

// Elem reduces v into the field, v mod p, always returning a
// non-negative representative.
func (f Field) Elem(v *big.Int) *big.Int {
	r := new(big.Int).Mod(v, f.p)
	return r
}

// FromUint64 reduces a small unsigned integer into the field.
func (f Field) FromUint64(v uint64) *big.Int {
	return f.Elem(new(big.Int).SetUint64(v))
}

// Add returns a+b mod p.
func (f Field) Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, f.p)
}

// Sub returns a-b mod p.
func (f Field) Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, f.p)
}

// Neg returns -a mod p.
func (f Field) Neg(a *big.Int) *big.Int {
	return f.Sub(f.Zero(), a)
}

// Double returns 2a mod p.
func (f Field) Double(a *big.Int) *big.Int {
	return f.Add(a, a)
}

// Mul returns a*b mod p.
func (f Field) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, f.p)
}

// Inverse returns a^-1 mod p via Fermat's little theorem (p is prime
// for every family this package is used with). Callers must not pass
// a zero element.
func (f Field) Inverse(a *big.Int) *big.Int {
	exp := new(big.Int).Sub(f.p, big.NewInt(2))
	return new(big.Int).Exp(a, exp, f.p)
}

// Pow returns a^k mod p for a non-negative exponent k.
func (f Field) Pow(a *big.Int, k *big.Int) *big.Int {
	return new(big.Int).Exp(a, k, f.p)
}

// Equal reports whether a and b name the same field element once both
// are reduced mod p.
func (f Field) Equal(a, b *big.Int) bool {
	return f.Elem(a).Cmp(f.Elem(b)) == 0
}

// IsZero reports whether a is the additive identity mod p.
func (f Field) IsZero(a *big.Int) bool {
	return f.Elem(a).Sign() == 0
}

// Random draws a uniform element of the field from r.
func (f Field) Random(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, f.p)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Bit returns bit i (0 = least significant) of a, as big.Int.Bit does.
func Bit(a *big.Int, i int) uint {
	return a.Bit(i)
}

// ToLimbs flattens values into their little-endian device limb
// representation, k.Count(bitWidth) limbs per element back to back --
// the staging format device.Buffer uploads/downloads expect. It is the
// host-side counterpart of limb.LimbsOf applied across a whole vector.
func ToLimbs(values []*big.Int, k limb.Kind, bitWidth int) []uint64 {
	count := k.Count(bitWidth)
	out := make([]uint64, 0, len(values)*count)
	for _, v := range values {
		out = append(out, limb.LimbsOf(v, k, bitWidth)...)
	}
	return out
}

// FromLimbs reconstructs field elements from data laid out the way
// ToLimbs produces it, the inverse operation run after reading a
// device buffer back.
func FromLimbs(data []uint64, k limb.Kind, bitWidth int) []*big.Int {
	count := k.Count(bitWidth)
	n := len(data) / count
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		v := new(big.Int)
		for j := count - 1; j >= 0; j-- {
			v.Lsh(v, uint(k.Bits()))
			v.Or(v, new(big.Int).SetUint64(data[i*count+j]))
		}
		out[i] = v
	}
	return out
}

// WindowAt extracts a windowSize-bit window of a starting at bit
// offset start, the host-side equivalent of the device kernel's
// EXPONENT_get_window (kernelsrc/cl/multiexp.cl). It is the bucket
// index used by the Pippenger accumulation loop.
func WindowAt(a *big.Int, start, windowSize int) uint64 {
	if windowSize <= 0 {
		return 0
	}
	shifted := new(big.Int).Rsh(a, uint(start))
	mask := new(big.Int).Lsh(big.NewInt(1), uint(windowSize))
	mask.Sub(mask, big.NewInt(1))
	shifted.And(shifted, mask)
	return shifted.Uint64()
}
