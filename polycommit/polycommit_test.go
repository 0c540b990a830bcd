package polycommit

import (
	"math/big"
	"testing"

	"github.com/zkaccel/gpualgebra/scalar"
)

func toyEngine() Engine {
	return Engine{
		base: scalar.NewField(big.NewInt(101)),
		scal: scalar.NewField(big.NewInt(97)),
	}
}

func TestFoldRoundSingleElement(t *testing.T) {
	// §8's single-element polycommit scenario: a length-1 round reduces
	// to a plain linear combination, checkable by hand.
	e := toyEngine()
	u := big.NewInt(3)
	uInv := big.NewInt(65) // 3*65 = 195 = 2*97+1 ≡ 1 mod 97

	if !e.scal.Equal(e.scal.Mul(u, uInv), big.NewInt(1)) {
		t.Fatal("test fixture error: uInv is not the inverse of u mod 97")
	}

	cL := []*big.Int{big.NewInt(10)}
	cR := []*big.Int{big.NewInt(4)}
	zL := []*big.Int{big.NewInt(20)}
	zR := []*big.Int{big.NewInt(6)}
	kL := []*big.Int{big.NewInt(50)}
	kR := []*big.Int{big.NewInt(9)}

	if err := e.FoldRound(u, uInv, cL, cR, zL, zR, kL, kR); err != nil {
		t.Fatalf("FoldRound: %v", err)
	}

	wantC := e.scal.Add(big.NewInt(10), e.scal.Mul(u, big.NewInt(4)))
	wantZ := e.scal.Add(big.NewInt(20), e.scal.Mul(uInv, big.NewInt(6)))
	wantK := e.base.Add(big.NewInt(50), e.base.Mul(uInv, big.NewInt(9)))

	if !e.scal.Equal(cL[0], wantC) {
		t.Fatalf("cL[0] = %s, want %s", cL[0], wantC)
	}
	if !e.scal.Equal(zL[0], wantZ) {
		t.Fatalf("zL[0] = %s, want %s", zL[0], wantZ)
	}
	if !e.base.Equal(kL[0], wantK) {
		t.Fatalf("kL[0] = %s, want %s", kL[0], wantK)
	}
}

func TestFoldRoundKeepsLeftVectorLength(t *testing.T) {
	// FoldRound writes the folded values into cL in place and leaves its
	// length unchanged; dropping the R half before the next round is the
	// caller's job.
	e := toyEngine()
	u := big.NewInt(5)
	uInv := big.NewInt(1) // not a real inverse, fine for this shape-only check

	cL := []*big.Int{big.NewInt(1), big.NewInt(2)}
	cR := []*big.Int{big.NewInt(3), big.NewInt(4)}
	zL := []*big.Int{big.NewInt(1), big.NewInt(2)}
	zR := []*big.Int{big.NewInt(3), big.NewInt(4)}

	if err := e.FoldRound(u, uInv, cL, cR, zL, zR, nil, nil); err != nil {
		t.Fatalf("FoldRound: %v", err)
	}
	if len(cL) != 2 {
		t.Fatalf("cL length changed to %d, want unchanged at 2 (caller truncates for the next round)", len(cL))
	}
}

func TestFoldRoundRejectsMismatchedLengths(t *testing.T) {
	e := toyEngine()
	err := e.FoldRound(big.NewInt(1), big.NewInt(1),
		[]*big.Int{big.NewInt(1)}, []*big.Int{big.NewInt(1), big.NewInt(2)},
		nil, nil, nil, nil)
	if err == nil {
		t.Fatal("expected an error for mismatched cL/cR lengths")
	}
}

func TestGlobalWorkSizeIsTheLongestVector(t *testing.T) {
	if got := GlobalWorkSize(3, 7, 2); got != 7 {
		t.Fatalf("GlobalWorkSize = %d, want 7", got)
	}
}

func TestGPUMinLengthFallsBackOnMalformed(t *testing.T) {
	t.Setenv(MinLengthEnv, "not-a-number")
	var logged bool
	n := GPUMinLength(func(string, ...any) { logged = true })
	if n != DefaultGPUMinLength || !logged {
		t.Fatalf("n=%d logged=%v, want %d and a logged fallback", n, logged, DefaultGPUMinLength)
	}
}
