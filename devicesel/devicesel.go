// Package devicesel is device selection & env (C9): it enumerates
// devices, applies each workload's truncation policy (FFT and
// polycommit use only the first device; MSM selects all of them), and
// turns a list of devices into a list of *working* compiled
// kernels by attempting compilation on each and filtering failures --
// failing the whole workload only when every device failed.
package devicesel

import (
	"github.com/zkaccel/gpualgebra/cache"
	"github.com/zkaccel/gpualgebra/device"
	"github.com/zkaccel/gpualgebra/gpuerr"
)

// Logf is the shape of the logging hook CreateKernels accepts; pass nil
// to discard. Matches log.Printf's signature so callers can
// pass that directly.
type Logf func(format string, args ...any)

func nopLogf(string, ...any) {}

// ForFFT and ForPolycommit truncate device.All() to at most its first
// entry -- §4.9's "optionally truncate to the first device" policy for
// the two single-device workloads.
func ForFFT() []*device.Device        { return truncateToFirst(device.All()) }
func ForPolycommit() []*device.Device { return truncateToFirst(device.All()) }

// ForMSM returns every enumerated device, with no truncation. The msm
// engine compiles its program on all of them but runs its kernel on the
// first device that succeeds only.
func ForMSM() []*device.Device { return device.All() }

func truncateToFirst(devices []*device.Device) []*device.Device {
	if len(devices) == 0 {
		return nil
	}
	return devices[:1]
}

// Kernel pairs a compiled kernel with the device it was created for --
// callers need both to route buffer I/O to the right device's program.
type Kernel struct {
	Device  *device.Device
	Program *device.Program
	Kernel  *device.Kernel
}

// CreateKernels compiles generate() once per (device, key) via c
// (reusing a cached program across calls) and creates the named kernel
// on each of devices, with the given work sizes. A device that fails
// compilation or kernel creation is logged via logf and dropped, not
// fatal; the call only fails if every device failed, returning
// gpuerr.NoWorkingGPUs().
func CreateKernels(c *cache.Cache, devices []*device.Device, key cache.TypeKey, generate func() (string, error), kernelName string, global, local int, logf Logf) ([]Kernel, error) {
	if logf == nil {
		logf = nopLogf
	}
	if len(devices) == 0 {
		return nil, gpuerr.NoWorkingGPUs()
	}

	var out []Kernel
	for _, d := range devices {
		program, err := c.GetProgram(d, key, generate)
		if err != nil {
			logf("devicesel: skipping device %s: program compile failed: %v", d.Name(), err)
			continue
		}
		k, err := program.CreateKernel(kernelName, global, local)
		if err != nil {
			logf("devicesel: skipping device %s: kernel %s creation failed: %v", d.Name(), kernelName, err)
			continue
		}
		out = append(out, Kernel{Device: d, Program: program, Kernel: k})
	}

	if len(out) == 0 {
		return nil, gpuerr.NoWorkingGPUs()
	}
	return out, nil
}
