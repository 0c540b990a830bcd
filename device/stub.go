//go:build !opencl

package device

import "github.com/zkaccel/gpualgebra/gpuerr"

// Device is a stub handle for non-OpenCL builds. Build with -tags opencl
// to get the real cgo-backed implementation.
type Device struct {
	info Info
}

// All reports zero devices on a non-OpenCL build, matching the teacher's
// gpu_stub.go convention (GetGPUInfo/IsGPUAvailable returning empty/false
// rather than an error -- enumeration itself never fails, only kernel
// creation downstream of it does).
func All() []*Device { return nil }

func (d *Device) Name() string        { return d.info.Name }
func (d *Device) Memory() uint64      { return d.info.MemoryB }
func (d *Device) CoreCount() int      { return d.info.CoreCount }
func (d *Device) MemoryBytes() uint64 { return d.info.MemoryB }

// Program is a stub compiled-program handle.
type Program struct {
	dev *Device
	src string
}

// ProgramFromSource always fails on a non-OpenCL build.
func ProgramFromSource(d *Device, source string) (*Program, error) {
	return nil, gpuerr.DeviceDriver(errNotCompiled)
}

func (p *Program) Device() *Device { return p.dev }

// Buffer is a stub device buffer of element type T. Go does not allow
// generic methods, so buffer construction is a free function generic
// over T rather than a generic method on Program (mirroring the
// Program::create_buffer<T> associated function from the Device API).
type Buffer[T any] struct{}

func CreateBuffer[T any](p *Program, length int) (*Buffer[T], error) {
	return nil, gpuerr.DeviceDriver(errNotCompiled)
}

func (b *Buffer[T]) WriteFrom(offset int, values []T) error {
	return gpuerr.DeviceDriver(errNotCompiled)
}

func (b *Buffer[T]) ReadInto(offset int, values []T) error {
	return gpuerr.DeviceDriver(errNotCompiled)
}

// Kernel is a stub kernel handle.
type Kernel struct{}

func (p *Program) CreateKernel(name string, global, local int) (*Kernel, error) {
	return nil, gpuerr.DeviceDriver(errNotCompiled)
}

func (k *Kernel) Call(args ...any) error {
	return gpuerr.DeviceDriver(errNotCompiled)
}

var errNotCompiled = stubError("GPU support not compiled. Build with: go build -tags opencl")

type stubError string

func (e stubError) Error() string { return string(e) }
