package curvefamily

import (
	"math/big"

	bls381fp "github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	bls381fr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/fp2src"
	"github.com/zkaccel/gpualgebra/limb"
)

func init() {
	Register("bls12_381", bls12381Family{})
}

// bls12381Family carries the "blstrs" feature as an instance field rather
// than a second registered family, since it only changes a single marker
// substitution (__BLSTRS__ -> #define BLSTRS) and not the recipe itself.
type bls12381Family struct {
	blstrs bool
}

func (bls12381Family) Name() string { return "bls12_381" }

func (bls12381Family) ScalarField() fieldparams.Descriptor {
	p := bls381fr.Modulus()
	return fieldparams.Derive("Fr", p, p.BitLen(), limb.Kind64)
}

func (bls12381Family) Groups() []Group {
	fr := bls12381Family{}.ScalarField()
	fqModulus := bls381fp.Modulus()
	fq := fieldparams.Derive("Fq", fqModulus, fqModulus.BitLen(), limb.Kind64)

	return []Group{
		{PointName: "G1", Base: fq, Scalar: fr},
		{PointName: "G2", Base: fq, Scalar: fr},
	}
}

func (bls12381Family) HasFp2() bool { return true }

func (bls12381Family) Fp2() Fp2Spec {
	// BLS12-381's Fp2 tower is Fp[u]/(u^2+1): non-residue -1.
	fqModulus := bls381fp.Modulus()
	nonResidue := new(big.Int).Sub(fqModulus, big.NewInt(1))
	limbs := limb.LimbsOf(nonResidue, limb.Kind64, fqModulus.BitLen())

	return Fp2Spec{
		BaseName:      "Fq",
		ExtensionName: "Fq2",
		NonResidue:    fp2src.NonResidue{Limbs: limbs},
	}
}

func (f bls12381Family) BLSTRS() bool { return f.blstrs }

// WithBLSTRS returns a copy of the bls12_381 family with the blstrs
// representation marker enabled, for callers that need the alternate
// BLS12-381 representation (SUPPLEMENTED FEATURES in SPEC_FULL.md).
func WithBLSTRS(f Family) Family {
	if b, ok := f.(bls12381Family); ok {
		b.blstrs = true
		return b
	}
	return f
}
