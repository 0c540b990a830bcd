// Package device is the Device API consumed (not specified) by the
// kernel-dispatch layer: device enumeration, program compilation from
// source, kernel invocation, and buffer I/O. It is split the same way
// the teacher splits its OpenCL generators -- a real cgo-backed
// implementation behind the "opencl" build tag, and a stub that reports
// no devices otherwise -- so this module builds and is testable without
// an OpenCL toolchain present, and opts into real GPU dispatch only when
// explicitly built with -tags opencl.
package device

import "github.com/zkaccel/gpualgebra/gpuerr"

// Info describes one enumerated device, independent of build tag.
type Info struct {
	Name      string
	Vendor    string
	MemoryB   uint64
	CoreCount int
}

// disabledEnv is the name of the environment variable CheckDisabled
// reads (SPEC_FULL.md's supplemented GPU_DISABLED knob).
const disabledEnv = "GPU_DISABLED"

// CheckDisabled returns gpuerr.GPUDisabled() if GPU_DISABLED is set to a
// truthy value, else nil. No package in this module calls it: All and
// the workload engines do not consult GPU_DISABLED.
func CheckDisabled() error {
	if isDisabled() {
		return gpuerr.GPUDisabled()
	}
	return nil
}
