package fieldsrc

import (
	"math/big"
	"strings"
	"testing"

	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/limb"
)

func TestGenerateSelfContainedAndSpecialized(t *testing.T) {
	p := big.NewInt(1000003)
	d := fieldparams.Derive("Fr", p, 64, limb.Kind64)

	src := Generate(d, "Fr")

	if strings.Contains(src, "FIELD") {
		t.Errorf("generated source still contains a bare FIELD placeholder: %s", src)
	}
	for _, want := range []string{"Fr_mul", "Fr_sqr", "Fr_pow", "Fr_mont", "Fr_unmont", "Fr_get_window", "#define Fr_LIMBS"} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q", want)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := big.NewInt(1000003)
	d := fieldparams.Derive("Fq", p, 64, limb.Kind64)

	a := Generate(d, "Fq")
	b := Generate(d, "Fq")
	if a != b {
		t.Fatalf("Generate is not deterministic across calls")
	}
}

func TestGenerateIncludesPTXForKind32(t *testing.T) {
	// Both kinds define PTX info in this module (32 and 64 bit), so the
	// NVIDIA block is always included; this test pins that expectation
	// rather than an omission, since limb.Kind has no "no PTX" variant.
	p := big.NewInt(97)
	d32 := fieldparams.Derive("Fr", p, 32, limb.Kind32)
	src := Generate(d32, "Fr")
	if !strings.Contains(src, "Fr_add_nvidia") {
		t.Errorf("expected nvidia block for Kind32, got: %s", src)
	}
}
