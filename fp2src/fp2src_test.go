package fp2src

import (
	"strings"
	"testing"
)

func TestGenerateSubstitutesBothPlaceholders(t *testing.T) {
	src := Generate("Fq", "Fq2", NonResidue{Limbs: []uint64{1, 0, 0, 0}})

	if strings.Contains(src, "FIELD2") || strings.Contains(src, "FIELD") {
		t.Fatalf("placeholders survived substitution: %s", src)
	}
	for _, want := range []string{"Fq2_add", "Fq2_mul", "Fq_NONRESIDUE", "Fq c0"} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q in: %s", want, src)
		}
	}
}

func TestGenerateNonResidueEmittedBeforeArithmetic(t *testing.T) {
	src := Generate("Fp", "Fp2", NonResidue{Limbs: []uint64{5}})
	defIdx := strings.Index(src, "#define Fp_NONRESIDUE")
	arithIdx := strings.Index(src, "Fp2_add")
	if defIdx < 0 || arithIdx < 0 || defIdx > arithIdx {
		t.Fatalf("NONRESIDUE define must precede arithmetic: defIdx=%d arithIdx=%d", defIdx, arithIdx)
	}
}
