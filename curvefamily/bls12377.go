package curvefamily

import (
	"math/big"

	bls377fp "github.com/consensys/gnark-crypto/ecc/bls12-377/fp"
	bls377fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/fp2src"
	"github.com/zkaccel/gpualgebra/limb"
)

func init() {
	Register("bls12_377", bls12377Family{})
}

type bls12377Family struct{}

func (bls12377Family) Name() string { return "bls12_377" }

func (bls12377Family) ScalarField() fieldparams.Descriptor {
	p := bls377fr.Modulus()
	return fieldparams.Derive("Fr", p, p.BitLen(), limb.Kind64)
}

func (bls12377Family) Groups() []Group {
	fr := bls12377Family{}.ScalarField()
	fqModulus := bls377fp.Modulus()
	fq := fieldparams.Derive("Fq", fqModulus, fqModulus.BitLen(), limb.Kind64)

	return []Group{
		{PointName: "G1", Base: fq, Scalar: fr},
		{PointName: "G2", Base: fq, Scalar: fr},
	}
}

func (bls12377Family) HasFp2() bool { return true }

func (bls12377Family) Fp2() Fp2Spec {
	// BLS12-377's Fp2 tower uses non-residue -5 (Fp[u]/(u^2+5)), per the
	// Zexe/BLS12-377 parameter set -- -1 is a quadratic residue in this
	// field, so the simpler -1 non-residue bn254/bls12-381 use does not
	// apply here.
	fqModulus := bls377fp.Modulus()
	nonResidue := new(big.Int).Sub(fqModulus, big.NewInt(5))
	limbs := limb.LimbsOf(nonResidue, limb.Kind64, fqModulus.BitLen())

	return Fp2Spec{
		BaseName:      "Fq",
		ExtensionName: "Fq2",
		NonResidue:    fp2src.NonResidue{Limbs: limbs},
	}
}

func (bls12377Family) BLSTRS() bool { return false }
