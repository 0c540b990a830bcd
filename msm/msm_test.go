package msm

import (
	"math/big"
	"testing"

	"github.com/zkaccel/gpualgebra/scalar"
)

// toy group: base field mod 101 (a prime comfortably larger than any
// test scalar), scalar field mod 97, both small enough to hand-verify.
func toyEngine() Engine {
	return Engine{
		base: scalar.NewField(big.NewInt(101)),
		scal: scalar.NewField(big.NewInt(97)),
	}
}

// naiveScalarMul computes k*p in the additive group Z/mZ via
// double-and-add, the reference this package's bucket method must
// agree with bit-for-bit.
func naiveScalarMul(f scalar.Field, p *big.Int, k *big.Int) *big.Int {
	result := f.Zero()
	addend := new(big.Int).Set(p)
	kk := new(big.Int).Set(k)
	zero := big.NewInt(0)
	for kk.Cmp(zero) > 0 {
		if kk.Bit(0) == 1 {
			result = f.Add(result, addend)
		}
		addend = f.Double(addend)
		kk.Rsh(kk, 1)
	}
	return result
}

func naiveMSM(f scalar.Field, points, scalars []*big.Int) *big.Int {
	acc := f.Zero()
	for i := range points {
		acc = f.Add(acc, naiveScalarMul(f, points[i], scalars[i]))
	}
	return acc
}

func TestMultiScalarMulMatchesNaiveSum(t *testing.T) {
	e := toyEngine()
	points := []*big.Int{big.NewInt(3), big.NewInt(17), big.NewInt(50), big.NewInt(99)}
	scalars := []*big.Int{big.NewInt(5), big.NewInt(12), big.NewInt(40), big.NewInt(3)}

	windowSize := WindowSize(e.scal.BitLen(), len(points), 1)
	got := e.runHost(points, scalars, windowSize)
	want := naiveMSM(e.base, points, scalars)

	if !e.base.Equal(got, want) {
		t.Fatalf("runHost = %s, want %s", got, want)
	}
}

func TestMultiScalarMulWindowInvariance(t *testing.T) {
	e := toyEngine()
	points := []*big.Int{big.NewInt(7), big.NewInt(23), big.NewInt(61)}
	scalars := []*big.Int{big.NewInt(9), big.NewInt(31), big.NewInt(5)}

	var results []*big.Int
	for w := 2; w <= 5; w++ {
		results = append(results, e.runHost(points, scalars, w))
	}
	for i := 1; i < len(results); i++ {
		if !e.base.Equal(results[i], results[0]) {
			t.Fatalf("window size %d gave %s, window size 2 gave %s", i+2, results[i], results[0])
		}
	}
}

func TestOnePointMultiExp(t *testing.T) {
	e := toyEngine()
	points := []*big.Int{big.NewInt(13)}
	scalars := []*big.Int{big.NewInt(6)}

	got, err := e.MultiScalarMul(points, scalars)
	if err != nil {
		t.Fatalf("MultiScalarMul: %v", err)
	}
	want := e.base.Mul(points[0], scalars[0]) // 13*6=78 < 101, no reduction needed
	if !e.base.Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestTwoPointMultiExp(t *testing.T) {
	e := toyEngine()
	points := []*big.Int{big.NewInt(2), big.NewInt(5)}
	scalars := []*big.Int{big.NewInt(3), big.NewInt(4)}

	got, err := e.MultiScalarMul(points, scalars)
	if err != nil {
		t.Fatalf("MultiScalarMul: %v", err)
	}
	want := naiveMSM(e.base, points, scalars) // 2*3 + 5*4 = 26
	if !e.base.Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestMultiScalarMulLengthMismatch(t *testing.T) {
	e := toyEngine()
	_, err := e.MultiScalarMul([]*big.Int{big.NewInt(1)}, nil)
	if err == nil {
		t.Fatal("expected an error for mismatched lengths")
	}
}

func TestWindowSizeGrowsWithWorkload(t *testing.T) {
	small := WindowSize(254, 8, 4)
	large := WindowSize(254, 1<<20, 4)
	if large < small {
		t.Fatalf("window size for a larger n (%d) should not be smaller than for a small n (%d)", large, small)
	}
}

func TestLoadConfigFallsBackOnMalformedEnv(t *testing.T) {
	t.Setenv("MSM_CPU_UTILIZATION", "not-a-float")
	t.Setenv("MSM_GPU_MIN_LENGTH", "-5")

	var logged []string
	cfg := LoadConfig(func(format string, args ...any) {
		logged = append(logged, format)
	})

	def := DefaultConfig()
	if cfg != def {
		t.Fatalf("cfg = %+v, want default %+v", cfg, def)
	}
	if len(logged) != 2 {
		t.Fatalf("expected 2 fallback log lines, got %d", len(logged))
	}
}

func TestLoadConfigHonorsWellFormedEnv(t *testing.T) {
	t.Setenv("MSM_CPU_UTILIZATION", "0.25")
	t.Setenv("MSM_GPU_MIN_LENGTH", "64")

	cfg := LoadConfig(nil)
	if cfg.CPUUtilization != 0.25 || cfg.GPUMinLength != 64 {
		t.Fatalf("cfg = %+v, want {0.25 64}", cfg)
	}
}
