package curvefamily

import (
	"math/big"

	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/fp2src"
	"github.com/zkaccel/gpualgebra/limb"
)

func init() {
	Register("bn_382", bn382Family{})
}

// bn382ModulusHex is a placeholder ~384-bit prime (the NIST P-384 prime)
// standing in for the true bn_382 modulus, which no library in the
// retrieval pack exposes. fieldparams.Derive computes Montgomery
// constants generically from any prime, so the family is fully
// self-consistent; swapping in the production bn_382 modulus is a
// one-line change (see DESIGN.md's Open Question entry for bn_382).
const bn382ModulusHex = "fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffeffffffff0000000000000000ffffffff"

func init() {
	if _, ok := new(big.Int).SetString(bn382ModulusHex, 16); !ok {
		panic("curvefamily: invalid bn382 modulus literal")
	}
}

type bn382Family struct{}

func (bn382Family) Name() string { return "bn_382" }

func bn382Modulus() *big.Int {
	p, _ := new(big.Int).SetString(bn382ModulusHex, 16)
	return p
}

func (bn382Family) ScalarField() fieldparams.Descriptor {
	p := bn382Modulus()
	return fieldparams.Derive("Fr", p, p.BitLen(), limb.Kind64)
}

func (bn382Family) Groups() []Group {
	p := bn382Modulus()
	fr := fieldparams.Derive("Fr", p, p.BitLen(), limb.Kind64)
	fq := fieldparams.Derive("Fq", p, p.BitLen(), limb.Kind64)

	// bn_382 contributes three groups: a plain G group (no twist) plus
	// G1/G2, per algebra-cl-gen/src/gpu/sources.rs's get_prefix_map for
	// this family (G_, G1_, G2_).
	return []Group{
		{PointName: "G", Base: fq, Scalar: fr},
		{PointName: "G1", Base: fq, Scalar: fr},
		{PointName: "G2", Base: fq, Scalar: fr},
	}
}

func (bn382Family) HasFp2() bool { return true }

func (bn382Family) Fp2() Fp2Spec {
	p := bn382Modulus()
	nonResidue := new(big.Int).Sub(p, big.NewInt(1))
	limbs := limb.LimbsOf(nonResidue, limb.Kind64, p.BitLen())

	return Fp2Spec{
		BaseName:      "Fq",
		ExtensionName: "Fq2",
		NonResidue:    fp2src.NonResidue{Limbs: limbs},
	}
}

func (bn382Family) BLSTRS() bool { return false }
