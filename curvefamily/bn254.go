package curvefamily

import (
	"math/big"

	bn254fp "github.com/consensys/gnark-crypto/ecc/bn254/fp"
	bn254fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/fp2src"
	"github.com/zkaccel/gpualgebra/limb"
)

func init() {
	Register("bn254", bn254Family{})
}

type bn254Family struct{}

func (bn254Family) Name() string { return "bn254" }

func (bn254Family) ScalarField() fieldparams.Descriptor {
	p := bn254fr.Modulus()
	return fieldparams.Derive("Fr", p, p.BitLen(), limb.Kind64)
}

func (bn254Family) Groups() []Group {
	fr := bn254Family{}.ScalarField()
	fqModulus := bn254fp.Modulus()
	fq := fieldparams.Derive("Fq", fqModulus, fqModulus.BitLen(), limb.Kind64)

	return []Group{
		{PointName: "G1", Base: fq, Scalar: fr},
		{PointName: "G2", Base: fq, Scalar: fr},
	}
}

func (bn254Family) HasFp2() bool { return true }

func (bn254Family) Fp2() Fp2Spec {
	// bn254's Fp2 tower is Fp[u]/(u^2+1): non-residue -1.
	fqModulus := bn254fp.Modulus()
	nonResidue := new(big.Int).Sub(fqModulus, big.NewInt(1))
	limbs := limb.LimbsOf(nonResidue, limb.Kind64, fqModulus.BitLen())

	return Fp2Spec{
		BaseName:      "Fq",
		ExtensionName: "Fq2",
		NonResidue:    fp2src.NonResidue{Limbs: limbs},
	}
}

func (bn254Family) BLSTRS() bool { return false }
