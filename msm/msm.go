// Package msm is the MSM host engine (C7): Pippenger's bucket method
// over a curve family's chosen group, dispatched to the GPU when
// available and falling back to an equivalent host computation
// otherwise. Unlike fft and polycommit (which truncate to one device),
// MSM selects every enumerated device (devicesel.ForMSM), but
// dispatchGPU runs the whole GPU share of the input on the first device
// that compiles the kernel; chunkSizes computes a per-device split that
// no dispatch path uses.
package msm

import (
	"log"
	"math"
	"math/big"
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
)

// Engine computes multi-scalar multiplications over one group and its
// associated scalar field. A "point" is an element of the group's base
// field under addition, standing in for a curve point (see DESIGN.md's
// scalar entry).
type Engine struct {
	family curvefamily.Family
	group  curvefamily.Group
	base   scalar.Field
	scal   scalar.Field
}

// New constructs an Engine for the named group within family f. It
// panics if the family has no group with that point name, since that
// is a caller-side configuration error, not a runtime condition.
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
	panic("msm: family " + f.Name() + " has no group " + pointName)
}

// BaseField and ScalarField expose the two fields an Engine computes
// over, for callers and tests building inputs.
func (e Engine) BaseField() scalar.Field   { return e.base }
func (e Engine) ScalarField() scalar.Field { return e.scal }

// WindowSize returns the Pippenger window size for n scalars of
// scalarBits each, spread across coreCount parallel workers: the
// smallest w with w + ln(w) > ln(scalarBits*n / (2*coreCount)), per
// §4.7's formula, floored at 2 and capped at maxWindowSize (or at
// scalarBits, if that is smaller).
func WindowSize(scalarBits, n, coreCount int) int {
	if n <= 0 || coreCount <= 0 {
		return 2
	}
	target := math.Log(float64(scalarBits) * float64(n) / (2 * float64(coreCount)))
	if target <= 0 {
		return 2
	}
	limit := maxWindowSize
	if scalarBits < limit {
		limit = scalarBits
	}
	w := 2
	for float64(w)+math.Log(float64(w)) <= target {
		w++
		if w >= limit {
			return limit
		}
	}
	return w
}

// maxWindowSize is the largest window size WindowSize returns.
const maxWindowSize = 10

// NumWindows returns how many windowSize-bit windows are needed to
// cover a scalarBits-bit scalar.
func NumWindows(scalarBits, windowSize int) int {
	if windowSize <= 0 {
		return 0
	}
	return (scalarBits + windowSize - 1) / windowSize
}

// BucketLen returns 1<<windowSize, the per-window bucket array length.
func BucketLen(windowSize int) int {
	return 1 << uint(windowSize)
}

// Config holds the environment-tunable knobs §6/§9 specify:
// MSM_CPU_UTILIZATION (fraction of n handled by the CPU instead of the
// GPU, in [0,1]) and MSM_GPU_MIN_LENGTH (below this length the GPU path
// is skipped entirely). An MSM_CPU_UTILIZATION outside [0,1] is clamped
// into that range. Malformed values fall back to the documented
// default and are logged, never treated as fatal -- matching the
// original's env-parsing convention reused throughout this module.
type Config struct {
	CPUUtilization float64
	GPUMinLength   int
}

// DefaultConfig holds the documented defaults: 0% forced CPU share (let
// the GPU take everything it can) and a minimum length of 0, so GPU
// dispatch is attempted for every input length.
func DefaultConfig() Config {
	return Config{CPUUtilization: 0, GPUMinLength: 0}
}

// LoadConfig reads Config from the environment, falling back to
// DefaultConfig field-by-field on missing or malformed values. logf
// receives a human-readable line for every fallback taken (pass nil to
// discard); callers normally pass log.Printf.
func LoadConfig(logf func(format string, args ...any)) Config {
	cfg := DefaultConfig()
	if logf == nil {
		logf = func(string, ...any) {}
	}

	if v, ok := os.LookupEnv("MSM_CPU_UTILIZATION"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) {
			logf("msm: ignoring malformed MSM_CPU_UTILIZATION=%q, using default %v", v, cfg.CPUUtilization)
		} else {
			cfg.CPUUtilization = math.Min(math.Max(f, 0), 1)
		}
	}
	if v, ok := os.LookupEnv("MSM_GPU_MIN_LENGTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logf("msm: ignoring malformed MSM_GPU_MIN_LENGTH=%q, using default %v", v, cfg.GPUMinLength)
		} else {
			cfg.GPUMinLength = n
		}
	}
	return cfg
}

// chunkSizes splits n items into per-device chunks proportional to
// each device's CoreCount, the Go counterpart of the original's
// "densities" split across get_kernels()'s returned device list.
// len(devices) == 0 yields a single chunk of all of n (the CPU-only
// path).
func chunkSizes(n int, devices []*device.Device) []int {
	if len(devices) == 0 {
		return []int{n}
	}
	totalCores := 0
	for _, d := range devices {
		c := d.CoreCount()
		if c <= 0 {
			c = 1
		}
		totalCores += c
	}
	sizes := make([]int, len(devices))
	assigned := 0
	for i, d := range devices {
		c := d.CoreCount()
		if c <= 0 {
			c = 1
		}
		sizes[i] = n * c / totalCores
		assigned += sizes[i]
	}
	sizes[len(sizes)-1] += n - assigned // remainder goes to the last device
	return sizes
}

// MultiScalarMul computes Σ scalars[i]*points[i] using the windowed
// bucket method (property #4). It reads Config from the environment on
// each call. When n is at least GPUMinLength, the first
// n*CPUUtilization pairs run on the host, the rest go to dispatchGPU,
// and the two partial sums are added. If n is below GPUMinLength or
// dispatchGPU fails (on a non-opencl build it always reports
// gpuerr.NoWorkingGPUs), the whole input runs on the host.
func (e Engine) MultiScalarMul(points []*big.Int, scalars []*big.Int) (*big.Int, error) {
	if len(points) != len(scalars) {
		return nil, gpuerr.Simple("msm: points and scalars length mismatch")
	}
	n := len(points)
	if n == 0 {
		return e.base.Zero(), nil
	}

	cfg := LoadConfig(log.Printf)
	cpuN := int(float64(n) * cfg.CPUUtilization)
	if n >= cfg.GPUMinLength && cpuN < n {
		if result, err := dispatchGPU(e, points[cpuN:], scalars[cpuN:]); err == nil {
			if cpuN > 0 {
				host := e.runHost(points[:cpuN], scalars[:cpuN], WindowSize(e.scal.BitLen(), cpuN, 1))
				result = e.base.Add(result, host)
			}
			return result, nil
		}
	}
	return e.runHost(points, scalars, WindowSize(e.scal.BitLen(), n, 1)), nil
}

// MultiScalarMulWindow is MultiScalarMul with an explicit window size,
// used by window-invariance tests (property #5): the result must not
// depend on which valid window size is chosen.
func (e Engine) MultiScalarMulWindow(points []*big.Int, scalars []*big.Int, windowSize int) *big.Int {
	return e.runHost(points, scalars, windowSize)
}

// dispatchGPU compiles group.Prefix()+"bellman_multiexp" through the
// shared program cache, stages points/scalars into device buffers
// shaped to match the kernel's POINT_affine/EXPONENT arguments, runs
// one bucket-accumulation pass, and telescopes the per-(group,window)
// partial results exactly like runHost's own window-combination loop.
// On a non-opencl build device.CreateBuffer always fails, so this
// reliably falls through to runHost.
//
// CreateKernels compiles the program on every device ForMSM returns,
// but only the first resulting kernel runs: the whole input goes to
// that one device, and the other devices get no work.
func dispatchGPU(e Engine, points, scalars []*big.Int) (*big.Int, error) {
	devices := devicesel.ForMSM()
	if len(devices) == 0 {
		return nil, gpuerr.NoWorkingGPUs()
	}

	n := len(points)
	baseBitWidth := e.base.BitLen()
	scalBitWidth := e.scal.BitLen()
	limbBase := limb.Kind64.Count(baseBitWidth)
	limbScal := limb.Kind64.Count(scalBitWidth)

	coreCount := devices[0].CoreCount()
	if coreCount <= 0 {
		coreCount = 1
	}
	windowSize := WindowSize(scalBitWidth, n, coreCount)
	numWindows := NumWindows(scalBitWidth, windowSize)
	numGroups := 2 * coreCount / numWindows
	if numGroups <= 0 {
		numGroups = 1
	}
	bucketLen := BucketLen(windowSize)
	global := numGroups * numWindows
	// The launch size is global rounded up to a multiple of 256 work
	// items; the kernel returns early for gid >= numGroups*numWindows.
	launch := (global + 255) / 256 * 256

	key := cache.TypeKey{Family: e.family.Name(), Kind: "multiexp", Limb64: true}
	generate := func() (string, error) { return kernelsrc.KernelMultiexp(e.family, true), nil }
	kernels, err := devicesel.CreateKernels(cache.Default, devices, key, generate, e.group.Prefix()+"bellman_multiexp", launch, 0, nil)
	if err != nil {
		return nil, err
	}
	prog := kernels[0].Program
	k := kernels[0].Kernel

	basesBuf, err := device.CreateBuffer[uint64](prog, n*2*limbBase)
	if err != nil {
		return nil, gpuerr.DeviceDriver(err)
	}
	if err := basesBuf.WriteFrom(0, interleaveAffine(points, limbBase, baseBitWidth)); err != nil {
		return nil, err
	}

	bucketsBuf, err := device.CreateBuffer[uint64](prog, global*bucketLen*3*limbBase)
	if err != nil {
		return nil, gpuerr.DeviceDriver(err)
	}
	resultsBuf, err := device.CreateBuffer[uint64](prog, global*3*limbBase)
	if err != nil {
		return nil, gpuerr.DeviceDriver(err)
	}

	scalarsBuf, err := device.CreateBuffer[uint64](prog, n*limbScal)
	if err != nil {
		return nil, gpuerr.DeviceDriver(err)
	}
	if err := scalarsBuf.WriteFrom(0, scalar.ToLimbs(scalars, limb.Kind64, scalBitWidth)); err != nil {
		return nil, err
	}

	if err := k.Call(basesBuf, bucketsBuf, resultsBuf, scalarsBuf, uint32(n), uint32(numGroups), uint32(numWindows), uint32(windowSize)); err != nil {
		return nil, err
	}

	out := make([]uint64, global*3*limbBase)
	if err := resultsBuf.ReadInto(0, out); err != nil {
		return nil, err
	}

	// Each result slot holds a POINT_projective triple; only its x lane
	// carries this Engine's additive-group-as-point-group value (see
	// DESIGN.md), so only the x lane is extracted before combining.
	windowResults := make([]*big.Int, numWindows)
	for w := 0; w < numWindows; w++ {
		acc := e.base.Zero()
		for g := 0; g < numGroups; g++ {
			idx := (g*numWindows + w) * 3 * limbBase
			x := scalar.FromLimbs(out[idx:idx+limbBase], limb.Kind64, baseBitWidth)[0]
			acc = e.base.Add(acc, x)
		}
		windowResults[w] = acc
	}

	total := e.base.Zero()
	for w := numWindows - 1; w >= 0; w-- {
		for i := 0; i < windowSize; i++ {
			total = e.base.Double(total)
		}
		total = e.base.Add(total, windowResults[w])
	}
	return total, nil
}

// interleaveAffine flattens points into POINT_affine-shaped limb pairs
// (x, y) with y fixed at zero: this Engine models a "point" as a
// single base-field element (see DESIGN.md) and has no second
// coordinate to contribute, so y is padded rather than fabricated.
func interleaveAffine(points []*big.Int, limbCount, bitWidth int) []uint64 {
	out := make([]uint64, 0, len(points)*2*limbCount)
	for _, p := range points {
		out = append(out, limb.LimbsOf(p, limb.Kind64, bitWidth)...)
		out = append(out, make([]uint64, limbCount)...)
	}
	return out
}

// runHost is the pure-host Pippenger pass: bucket-accumulate each
// window across the whole input, telescope bucket sums into one
// per-window result, then telescope the windows themselves by
// windowSize-bit shifts (double-and-add on the window boundary).
func (e Engine) runHost(points, scalars []*big.Int, windowSize int) *big.Int {
	n := len(points)
	scalarBits := e.scal.BitLen()
	numWindows := NumWindows(scalarBits, windowSize)
	bucketLen := BucketLen(windowSize)

	windowResults := make([]*big.Int, numWindows)
	for w := 0; w < numWindows; w++ {
		buckets := make([]*big.Int, bucketLen)
		for i := range buckets {
			buckets[i] = e.base.Zero()
		}
		for i := 0; i < n; i++ {
			idx := scalar.WindowAt(scalars[i], w*windowSize, windowSize)
			if idx != 0 {
				buckets[idx] = e.base.Add(buckets[idx], points[i])
			}
		}
		running := e.base.Zero()
		acc := e.base.Zero()
		for b := bucketLen - 1; b >= 1; b-- {
			running = e.base.Add(running, buckets[b])
			acc = e.base.Add(acc, running)
		}
		windowResults[w] = acc
	}

	total := e.base.Zero()
	for w := numWindows - 1; w >= 0; w-- {
		for i := 0; i < windowSize; i++ {
			total = e.base.Double(total)
		}
		total = e.base.Add(total, windowResults[w])
	}
	return total
}
