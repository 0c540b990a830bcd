// gpuverify self-checks the host fallback path in fft and msm (an fft
// round trip and msm window-size invariance), and reports which curve
// families and devices are available. It replaces the teacher's
// original gpuverify, which compared one hardcoded GPU vanity-address
// kernel against its CPU twin; the underlying intent -- "does the
// device path agree with a computation we trust" -- carries over, but
// there is no OpenCL toolchain requirement here, since the comparison
// this tool runs is host-against-host (the device path itself is only
// reachable on an opencl build, see device.All).
package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/zkaccel/gpualgebra/curvefamily"
	"github.com/zkaccel/gpualgebra/device"
	"github.com/zkaccel/gpualgebra/fft"
	"github.com/zkaccel/gpualgebra/msm"
)

func main() {
	fmt.Println("registered curve families:")
	for _, f := range curvefamily.All() {
		fmt.Printf("  %-12s groups=%v fp2=%v blstrs=%v\n", f.Name(), groupNames(f), f.HasFp2(), f.BLSTRS())
	}

	devices := device.All()
	fmt.Printf("\nenumerated devices: %d\n", len(devices))
	for _, d := range devices {
		fmt.Printf("  %s (%d cores, %d MB)\n", d.Name(), d.CoreCount(), d.Memory()/(1<<20))
	}

	fmt.Println("\nself-checks:")
	ok := true
	ok = check("fft round-trip", verifyFFTRoundTrip) && ok
	ok = check("msm window invariance", verifyMSMWindowInvariance) && ok

	if !ok {
		os.Exit(1)
	}
	fmt.Println("\nall self-checks passed.")
}

func groupNames(f curvefamily.Family) []string {
	var names []string
	for _, g := range f.Groups() {
		names = append(names, g.PointName)
	}
	return names
}

func check(name string, fn func() error) bool {
	if err := fn(); err != nil {
		fmt.Printf("  FAIL  %s: %v\n", name, err)
		return false
	}
	fmt.Printf("  ok    %s\n", name)
	return true
}

// verifyFFTRoundTrip exercises fft's host path over the real BLS12-381
// scalar field using the one primitive root of unity that needs no
// per-family table: -1 mod p is always a primitive 2nd root of unity
// in any prime field with p != 2.
func verifyFFTRoundTrip() error {
	e := fft.New(mustFamily("bls12_381"))
	field := e.Field()
	omega := field.Neg(field.One())

	coeffs := []*big.Int{big.NewInt(41), big.NewInt(59)}
	orig := []*big.Int{new(big.Int).Set(coeffs[0]), new(big.Int).Set(coeffs[1])}

	if err := e.CoeffsToEvals(coeffs, omega); err != nil {
		return err
	}
	if err := e.EvalsToCoeffs(coeffs, omega); err != nil {
		return err
	}
	for i := range coeffs {
		if !field.Equal(coeffs[i], orig[i]) {
			return fmt.Errorf("coeff[%d] = %s after round trip, want %s", i, coeffs[i], orig[i])
		}
	}
	return nil
}

func verifyMSMWindowInvariance() error {
	e := msm.New(mustFamily("bls12_381"), "G1")
	points := []*big.Int{big.NewInt(3), big.NewInt(11), big.NewInt(29)}
	scalars := []*big.Int{big.NewInt(5), big.NewInt(7), big.NewInt(13)}

	base := e.MultiScalarMulWindow(points, scalars, 3)
	for w := 4; w <= 6; w++ {
		got := e.MultiScalarMulWindow(points, scalars, w)
		if !e.BaseField().Equal(got, base) {
			return fmt.Errorf("window size %d disagrees with window size 3", w)
		}
	}
	return nil
}

func mustFamily(name string) curvefamily.Family {
	f, ok := curvefamily.Get(name)
	if !ok {
		panic("gpuverify: family " + name + " not registered")
	}
	return f
}
