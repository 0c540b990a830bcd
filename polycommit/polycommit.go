// Package polycommit is the polycommit reducer (C8): one round of an
// inner-product argument fold, shrinking the c/z/k vectors by half
// under a verifier challenge (u, u^-1). Unlike msm, a round's global
// work size is simply the longest of the three vectors, and there is
// no bucket method -- this is a single elementwise pass.
package polycommit

import (
	"log"
	"os"
	"strconv"

	"github.com/zkaccel/gpualgebra/cache"
	"github.com/zkaccel/gpualgebra/curvefamily"
	"github.com/zkaccel/gpualgebra/device"
	"github.com/zkaccel/gpualgebra/devicesel"
	"github.com/zkaccel/gpualgebra/gpuerr"
	"github.com/zkaccel/gpualgebra/kernelsrc"
	"github.com/zkaccel/gpualgebra/limb"
	"github.com/zkaccel/gpualgebra/scalar"

	"math/big"
)

// Engine folds c/z (scalar-field vectors) and k (base-field/point
// vector) for one group within a curve family.
type Engine struct {
	family curvefamily.Family
	group  curvefamily.Group
	base   scalar.Field
	scal   scalar.Field
}

// New constructs an Engine for the named group within family f.
func New(f curvefamily.Family, pointName string) Engine {
	for _, g := range f.Groups() {
		if g.PointName == pointName {
			return Engine{
				family: f,
				group:  g,
				base:   scalar.NewField(g.Base.Modulus),
				scal:   scalar.NewField(g.Scalar.Modulus),
			}
		}
	}
	panic("polycommit: family " + f.Name() + " has no group " + pointName)
}

func (e Engine) BaseField() scalar.Field   { return e.base }
func (e Engine) ScalarField() scalar.Field { return e.scal }

// GlobalWorkSize returns max(len(cL), len(zL), len(kL)), the work size
// a real device dispatch would launch the round_reduce kernel over.
func GlobalWorkSize(cLen, zLen, kLen int) int {
	n := cLen
	if zLen > n {
		n = zLen
	}
	if kLen > n {
		n = kLen
	}
	return n
}

// MinLengthEnv is the environment variable name below which GPU
// dispatch is skipped in favor of running the fold on the host
// directly (§6/§9's POLYCOMMIT_GPU_MIN_LENGTH knob).
const MinLengthEnv = "POLYCOMMIT_GPU_MIN_LENGTH"

// DefaultGPUMinLength is the minimum length used when MinLengthEnv is
// unset or malformed: below it, dispatch setup cost dominates the fold
// itself.
const DefaultGPUMinLength = 1 << 10

// GPUMinLength reads MinLengthEnv from the environment, falling back
// to DefaultGPUMinLength on a missing or malformed value. logf
// receives a line describing any fallback taken (nil discards it).
func GPUMinLength(logf func(format string, args ...any)) int {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	v, ok := os.LookupEnv(MinLengthEnv)
	if !ok {
		return DefaultGPUMinLength
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logf("polycommit: ignoring malformed %s=%q, using default %d", MinLengthEnv, v, DefaultGPUMinLength)
		return DefaultGPUMinLength
	}
	return n
}

// FoldRound runs one inner-product-argument round in place: cL[i] +=
// u*cR[i], zL[i] += uInv*zR[i], kL[i] += uInv*kR[i] — the same
// u/u-inverse-scaled fold on all three vectors. Each vector's own
// length bounds its own loop, exactly like the kernel's three
// independent gid-bounds checks; the three vectors need not be the
// same length. A round whose GlobalWorkSize is below GPUMinLength runs
// on the host without attempting GPU dispatch.
func (e Engine) FoldRound(u, uInv *big.Int, cL, cR, zL, zR []*big.Int, kL, kR []*big.Int) error {
	if len(cL) != len(cR) || len(zL) != len(zR) || len(kL) != len(kR) {
		return gpuerr.Simple("polycommit: L/R vector length mismatch within a round")
	}

	if GlobalWorkSize(len(cL), len(zL), len(kL)) >= GPUMinLength(log.Printf) {
		if err := dispatchGPU(e, u, uInv, cL, cR, zL, zR, kL, kR); err == nil {
			return nil
		}
	}
	runHost(e, u, uInv, cL, cR, zL, zR, kL, kR)
	return nil
}

// dispatchGPU compiles group.Prefix()+"polycommit_round_reduce" through
// the shared program cache, stages the challenge pair and all six
// vectors into device buffers shaped to match the kernel's EXPONENT/
// POINT arguments, runs one fold, and copies the three left vectors
// back in place. On a non-opencl build device.CreateBuffer always
// fails, so this reliably falls through to runHost.
func dispatchGPU(e Engine, u, uInv *big.Int, cL, cR, zL, zR, kL, kR []*big.Int) error {
	devices := devicesel.ForPolycommit()
	if len(devices) == 0 {
		return gpuerr.NoWorkingGPUs()
	}

	scalBitWidth := e.scal.BitLen()
	baseBitWidth := e.base.BitLen()
	limbScal := limb.Kind64.Count(scalBitWidth)
	limbBase := limb.Kind64.Count(baseBitWidth)

	global := GlobalWorkSize(len(cL), len(zL), len(kL))

	key := cache.TypeKey{Family: e.family.Name(), Kind: "polycommit", Limb64: true}
	generate := func() (string, error) { return kernelsrc.KernelPolycommit(e.family, true), nil }
	kernels, err := devicesel.CreateKernels(cache.Default, devices, key, generate, e.group.Prefix()+"polycommit_round_reduce", global, 0, nil)
	if err != nil {
		return err
	}
	prog := kernels[0].Program
	k := kernels[0].Kernel

	challengeBuf, err := device.CreateBuffer[uint64](prog, 2*limbScal)
	if err != nil {
		return gpuerr.DeviceDriver(err)
	}
	if err := challengeBuf.WriteFrom(0, scalar.ToLimbs([]*big.Int{u, uInv}, limb.Kind64, scalBitWidth)); err != nil {
		return err
	}

	cLBuf, err := stageScal(prog, cL, limbScal, scalBitWidth)
	if err != nil {
		return err
	}
	cRBuf, err := stageScal(prog, cR, limbScal, scalBitWidth)
	if err != nil {
		return err
	}
	zLBuf, err := stageScal(prog, zL, limbScal, scalBitWidth)
	if err != nil {
		return err
	}
	zRBuf, err := stageScal(prog, zR, limbScal, scalBitWidth)
	if err != nil {
		return err
	}

	kLBuf, err := device.CreateBuffer[uint64](prog, len(kL)*3*limbBase)
	if err != nil {
		return gpuerr.DeviceDriver(err)
	}
	if len(kL) > 0 {
		if err := kLBuf.WriteFrom(0, interleaveProjective(kL, limbBase, baseBitWidth)); err != nil {
			return err
		}
	}
	kRBuf, err := device.CreateBuffer[uint64](prog, len(kR)*2*limbBase)
	if err != nil {
		return gpuerr.DeviceDriver(err)
	}
	if len(kR) > 0 {
		if err := kRBuf.WriteFrom(0, interleaveAffine(kR, limbBase, baseBitWidth)); err != nil {
			return err
		}
	}

	// Kernel args match round_reduce.cl's (challenge, challenge_repr,
	// c_len, c_l, c_r, z_len, z_l, z_r, k_len, k_l, k_r); the kernel
	// only ever reads challenge, so challenge_repr reuses the same
	// buffer rather than staging a redundant second copy.
	if err := k.Call(challengeBuf, challengeBuf, uint32(len(cL)), cLBuf, cRBuf, uint32(len(zL)), zLBuf, zRBuf, uint32(len(kL)), kLBuf, kRBuf); err != nil {
		return err
	}

	if len(cL) > 0 {
		out := make([]uint64, len(cL)*limbScal)
		if err := cLBuf.ReadInto(0, out); err != nil {
			return err
		}
		copy(cL, scalar.FromLimbs(out, limb.Kind64, scalBitWidth))
	}
	if len(zL) > 0 {
		out := make([]uint64, len(zL)*limbScal)
		if err := zLBuf.ReadInto(0, out); err != nil {
			return err
		}
		copy(zL, scalar.FromLimbs(out, limb.Kind64, scalBitWidth))
	}
	if len(kL) > 0 {
		out := make([]uint64, len(kL)*3*limbBase)
		if err := kLBuf.ReadInto(0, out); err != nil {
			return err
		}
		for i := range kL {
			idx := i * 3 * limbBase
			kL[i] = scalar.FromLimbs(out[idx:idx+limbBase], limb.Kind64, baseBitWidth)[0]
		}
	}
	return nil
}

// stageScal allocates a device buffer sized for values and uploads
// them, tolerating a zero-length vector (one of the three independently
// lengthed c/z/k vectors this kernel folds).
func stageScal(prog *device.Program, values []*big.Int, limbCount, bitWidth int) (*device.Buffer[uint64], error) {
	buf, err := device.CreateBuffer[uint64](prog, len(values)*limbCount)
	if err != nil {
		return nil, gpuerr.DeviceDriver(err)
	}
	if len(values) == 0 {
		return buf, nil
	}
	if err := buf.WriteFrom(0, scalar.ToLimbs(values, limb.Kind64, bitWidth)); err != nil {
		return nil, err
	}
	return buf, nil
}

// interleaveAffine flattens points into POINT_affine-shaped limb pairs
// (x, y) with y fixed at zero: this Engine models a "point" as a
// single base-field element (see DESIGN.md) and has no second
// coordinate to contribute.
func interleaveAffine(points []*big.Int, limbCount, bitWidth int) []uint64 {
	out := make([]uint64, 0, len(points)*2*limbCount)
	for _, p := range points {
		out = append(out, limb.LimbsOf(p, limb.Kind64, bitWidth)...)
		out = append(out, make([]uint64, limbCount)...)
	}
	return out
}

// interleaveProjective flattens points into POINT_projective-shaped
// limb triples (x, y, z) with y zero and z one, lifting the same
// additive-group stand-in affine convention to projective coordinates.
func interleaveProjective(points []*big.Int, limbCount, bitWidth int) []uint64 {
	out := make([]uint64, 0, len(points)*3*limbCount)
	one := limb.LimbsOf(big.NewInt(1), limb.Kind64, bitWidth)
	for _, p := range points {
		out = append(out, limb.LimbsOf(p, limb.Kind64, bitWidth)...)
		out = append(out, make([]uint64, limbCount)...)
		out = append(out, one...)
	}
	return out
}

func runHost(e Engine, u, uInv *big.Int, cL, cR, zL, zR, kL, kR []*big.Int) {
	for i := range cL {
		cL[i] = e.scal.Add(cL[i], e.scal.Mul(u, cR[i]))
	}
	for i := range zL {
		zL[i] = e.scal.Add(zL[i], e.scal.Mul(uInv, zR[i]))
	}
	for i := range kL {
		kL[i] = e.base.Add(kL[i], e.base.Mul(uInv, kR[i]))
	}
}
