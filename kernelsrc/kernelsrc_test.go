package kernelsrc_test

import (
	"strings"
	"testing"

	"github.com/zkaccel/gpualgebra/curvefamily"
	"github.com/zkaccel/gpualgebra/kernelsrc"
)

func TestMultiexpSpecializationBLS12381(t *testing.T) {
	f, ok := curvefamily.Get("bls12_381")
	if !ok {
		t.Fatal("bls12_381 not registered")
	}
	src := kernelsrc.KernelMultiexp(f, true)

	for _, want := range []string{"G1_bellman_multiexp", "G2_bellman_multiexp"} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q in generated source", want)
		}
	}
	if strings.Contains(src, "G_bellman_multiexp") {
		t.Error("unexpected G_bellman_multiexp (bls12_381 has no bare G group)")
	}
	for _, placeholder := range []string{"FIELD", "POINT", "EXPONENT", "__BLSTRS__"} {
		if strings.Contains(src, placeholder) {
			t.Errorf("unsubstituted placeholder %q survived: ...", placeholder)
		}
	}
}

func TestMultiexpSourceDeterministic(t *testing.T) {
	f, _ := curvefamily.Get("bls12_381")
	a := kernelsrc.KernelMultiexp(f, true)
	b := kernelsrc.KernelMultiexp(f, true)
	if a != b {
		t.Fatal("KernelMultiexp(limb64=true) is not byte-identical across calls")
	}
}

func TestPolycommitUsesRoundReduceNotMultiexp(t *testing.T) {
	f, _ := curvefamily.Get("bn254")
	src := kernelsrc.KernelPolycommit(f, true)
	if !strings.Contains(src, "G1_polycommit_round_reduce") {
		t.Error("missing G1_polycommit_round_reduce")
	}
	if strings.Contains(src, "bellman_multiexp") {
		t.Error("polycommit source must not contain a multiexp kernel")
	}
}

func TestFFTContainsOnlyFieldRecipe(t *testing.T) {
	f, _ := curvefamily.Get("bn254")
	src := kernelsrc.KernelFFT(f, true)
	if !strings.Contains(src, "radix_fft") {
		t.Error("missing radix_fft kernel")
	}
	if strings.Contains(src, "bellman_multiexp") || strings.Contains(src, "polycommit_round_reduce") {
		t.Error("FFT source must not contain MSM/polycommit kernels")
	}
}

func TestTweedleOmitsFp2Prelude(t *testing.T) {
	f, _ := curvefamily.Get("tweedle")
	src := kernelsrc.KernelMultiexp(f, true)
	if strings.Contains(src, "NONRESIDUE") {
		t.Error("tweedle must not emit an Fp2 NONRESIDUE constant")
	}
	for _, want := range []string{"Dee_bellman_multiexp", "Dum_bellman_multiexp"} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestPrefixMapDistinctPerGroup(t *testing.T) {
	f, _ := curvefamily.Get("bn_382")
	pm := kernelsrc.PrefixMap(f)
	if len(pm) != 3 {
		t.Fatalf("bn_382 prefix map has %d entries, want 3", len(pm))
	}
	if pm["G"] != "G_" || pm["G1"] != "G1_" || pm["G2"] != "G2_" {
		t.Errorf("unexpected prefix map: %+v", pm)
	}
}

func TestBLSTRSMarkerSubstitution(t *testing.T) {
	f, _ := curvefamily.Get("bls12_381")
	plain := kernelsrc.KernelMultiexp(f, true)
	if strings.Contains(plain, "#define BLSTRS") {
		t.Error("default family must not emit #define BLSTRS")
	}

	withBLSTRS := curvefamily.WithBLSTRS(f)
	marked := kernelsrc.KernelMultiexp(withBLSTRS, true)
	if !strings.Contains(marked, "#define BLSTRS") {
		t.Error("blstrs-enabled family must emit #define BLSTRS")
	}
}
