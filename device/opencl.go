//go:build opencl

package device

/*
#cgo linux LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL
#cgo windows LDFLAGS: -lOpenCL
#include <stdlib.h>
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/zkaccel/gpualgebra/gpuerr"
)

// Device wraps a real OpenCL device id plus the context/queue pair
// created for it at enumeration time, mirroring the teacher's original
// OpenCL init sequence: platform -> device -> context -> command queue.
type Device struct {
	id      C.cl_device_id
	ctx     C.cl_context
	queue   C.cl_command_queue
	info    Info
}

// All enumerates every GPU device on every platform, creating a context
// and command queue for each -- the real counterpart of the stub's empty
// slice. Devices that fail to yield a context are skipped; enumeration
// itself never returns an error, matching §4.9: per-device failures are
// filtered, not fatal.
func All() []*Device {
	var numPlatforms C.cl_uint
	if C.clGetPlatformIDs(0, nil, &numPlatforms) != C.CL_SUCCESS || numPlatforms == 0 {
		return nil
	}
	platforms := make([]C.cl_platform_id, numPlatforms)
	C.clGetPlatformIDs(numPlatforms, &platforms[0], nil)

	var devices []*Device
	for _, platform := range platforms {
		var numDevices C.cl_uint
		if C.clGetDeviceIDs(platform, C.CL_DEVICE_TYPE_GPU, 0, nil, &numDevices) != C.CL_SUCCESS || numDevices == 0 {
			continue
		}
		ids := make([]C.cl_device_id, numDevices)
		C.clGetDeviceIDs(platform, C.CL_DEVICE_TYPE_GPU, numDevices, &ids[0], nil)

		for _, id := range ids {
			d, err := newDevice(id)
			if err != nil {
				continue
			}
			devices = append(devices, d)
		}
	}
	return devices
}

func newDevice(id C.cl_device_id) (*Device, error) {
	var ret C.cl_int
	ctx := C.clCreateContext(nil, 1, &id, nil, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateContext failed: %d", ret)
	}
	queue := C.clCreateCommandQueue(ctx, id, 0, &ret)
	if ret != C.CL_SUCCESS {
		C.clReleaseContext(ctx)
		return nil, fmt.Errorf("clCreateCommandQueue failed: %d", ret)
	}

	var nameBuf [256]C.char
	C.clGetDeviceInfo(id, C.CL_DEVICE_NAME, 256, unsafe.Pointer(&nameBuf[0]), nil)

	var computeUnits C.cl_uint
	C.clGetDeviceInfo(id, C.CL_DEVICE_MAX_COMPUTE_UNITS, C.size_t(unsafe.Sizeof(computeUnits)), unsafe.Pointer(&computeUnits), nil)

	var memSize C.cl_ulong
	C.clGetDeviceInfo(id, C.CL_DEVICE_GLOBAL_MEM_SIZE, C.size_t(unsafe.Sizeof(memSize)), unsafe.Pointer(&memSize), nil)

	return &Device{
		id:    id,
		ctx:   ctx,
		queue: queue,
		info: Info{
			Name:      C.GoString(&nameBuf[0]),
			MemoryB:   uint64(memSize),
			CoreCount: int(computeUnits),
		},
	}, nil
}

func (d *Device) Name() string        { return d.info.Name }
func (d *Device) Memory() uint64      { return d.info.MemoryB }
func (d *Device) CoreCount() int      { return d.info.CoreCount }
func (d *Device) MemoryBytes() uint64 { return d.info.MemoryB }

// Program wraps a built cl_program plus the queue it was built for.
type Program struct {
	dev     *Device
	program C.cl_program
}

// ProgramFromSource compiles source on d, returning a gpuerr.DeviceDriver
// error (including the build log, when available) on failure.
func ProgramFromSource(d *Device, source string) (*Program, error) {
	csrc := C.CString(source)
	defer C.free(unsafe.Pointer(csrc))

	var ret C.cl_int
	length := C.size_t(len(source))
	program := C.clCreateProgramWithSource(d.ctx, 1, &csrc, &length, &ret)
	if ret != C.CL_SUCCESS {
		return nil, gpuerr.DeviceDriver(fmt.Errorf("clCreateProgramWithSource failed: %d", ret))
	}

	buildRet := C.clBuildProgram(program, 1, &d.id, nil, nil, nil)
	if buildRet != C.CL_SUCCESS {
		var logSize C.size_t
		C.clGetProgramBuildInfo(program, d.id, C.CL_PROGRAM_BUILD_LOG, 0, nil, &logSize)
		logBuf := make([]C.char, logSize)
		if logSize > 0 {
			C.clGetProgramBuildInfo(program, d.id, C.CL_PROGRAM_BUILD_LOG, logSize, unsafe.Pointer(&logBuf[0]), nil)
		}
		return nil, gpuerr.DeviceDriver(fmt.Errorf("clBuildProgram failed: %d: %s", buildRet, C.GoString(&logBuf[0])))
	}

	return &Program{dev: d, program: program}, nil
}

func (p *Program) Device() *Device { return p.dev }

// Buffer wraps a cl_mem handle along with the element count it was sized
// for. T is tracked only at the Go level -- the underlying buffer is an
// untyped byte range, consistent with how the teacher's gpu.go allocates
// fixed-size cl_mem buffers per role (bufBasePoint, bufTable, ...).
type Buffer[T any] struct {
	prog *Program
	mem  C.cl_mem
	n    int
}

func CreateBuffer[T any](p *Program, length int) (*Buffer[T], error) {
	var zero T
	elemSize := C.size_t(unsafe.Sizeof(zero))
	var ret C.cl_int
	mem := C.clCreateBuffer(p.dev.ctx, C.CL_MEM_READ_WRITE, elemSize*C.size_t(length), nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, gpuerr.DeviceDriver(fmt.Errorf("clCreateBuffer failed: %d", ret))
	}
	return &Buffer[T]{prog: p, mem: mem, n: length}, nil
}

// clArg returns the (size, pointer) clSetKernelArg needs to bind this
// buffer's cl_mem handle, satisfying the clArg interface argSizeAndPtr
// checks before falling back to scalar argument kinds.
func (b *Buffer[T]) clArg() (C.size_t, unsafe.Pointer) {
	return C.size_t(unsafe.Sizeof(b.mem)), unsafe.Pointer(&b.mem)
}

func (b *Buffer[T]) WriteFrom(offset int, values []T) error {
	if len(values) == 0 {
		return nil
	}
	var zero T
	elemSize := C.size_t(unsafe.Sizeof(zero))
	ret := C.clEnqueueWriteBuffer(b.prog.dev.queue, b.mem, C.CL_TRUE,
		elemSize*C.size_t(offset), elemSize*C.size_t(len(values)),
		unsafe.Pointer(&values[0]), 0, nil, nil)
	if ret != C.CL_SUCCESS {
		return gpuerr.DeviceDriver(fmt.Errorf("clEnqueueWriteBuffer failed: %d", ret))
	}
	return nil
}

func (b *Buffer[T]) ReadInto(offset int, values []T) error {
	if len(values) == 0 {
		return nil
	}
	var zero T
	elemSize := C.size_t(unsafe.Sizeof(zero))
	ret := C.clEnqueueReadBuffer(b.prog.dev.queue, b.mem, C.CL_TRUE,
		elemSize*C.size_t(offset), elemSize*C.size_t(len(values)),
		unsafe.Pointer(&values[0]), 0, nil, nil)
	if ret != C.CL_SUCCESS {
		return gpuerr.DeviceDriver(fmt.Errorf("clEnqueueReadBuffer failed: %d", ret))
	}
	return nil
}

// Kernel wraps a cl_kernel plus the global/local work sizes it was
// created with.
type Kernel struct {
	prog   *Program
	kernel C.cl_kernel
	global int
	local  int
}

func (p *Program) CreateKernel(name string, global, local int) (*Kernel, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var ret C.cl_int
	kernel := C.clCreateKernel(p.program, cname, &ret)
	if ret != C.CL_SUCCESS {
		return nil, gpuerr.DeviceDriver(fmt.Errorf("clCreateKernel(%s) failed: %d", name, ret))
	}
	return &Kernel{prog: p, kernel: kernel, global: global, local: local}, nil
}

// Call sets each argument in order and enqueues the kernel, blocking
// until it completes -- the Go analogue of call_kernel!, which the
// original always waits on synchronously (§5: host side is sequential
// per call).
func (k *Kernel) Call(args ...any) error {
	for i, a := range args {
		size, ptr := argSizeAndPtr(a)
		ret := C.clSetKernelArg(k.kernel, C.cl_uint(i), size, ptr)
		if ret != C.CL_SUCCESS {
			return gpuerr.DeviceDriver(fmt.Errorf("clSetKernelArg(%d) failed: %d", i, ret))
		}
	}

	global := C.size_t(k.global)
	var localPtr *C.size_t
	if k.local > 0 {
		local := C.size_t(k.local)
		localPtr = &local
	}
	ret := C.clEnqueueNDRangeKernel(k.prog.dev.queue, k.kernel, 1, nil, &global, localPtr, 0, nil, nil)
	if ret != C.CL_SUCCESS {
		return gpuerr.DeviceDriver(fmt.Errorf("clEnqueueNDRangeKernel failed: %d", ret))
	}
	if finishRet := C.clFinish(k.prog.dev.queue); finishRet != C.CL_SUCCESS {
		return gpuerr.DeviceDriver(fmt.Errorf("clFinish failed: %d", finishRet))
	}
	return nil
}

// clArgSetter is implemented by every Buffer[T] instantiation (Go does
// not allow a generic method to satisfy a plain interface directly, so
// this is the non-generic seam argSizeAndPtr type-switches on).
type clArgSetter interface {
	clArg() (C.size_t, unsafe.Pointer)
}

// argSizeAndPtr resolves a kernel argument to the (size, pointer) pair
// clSetKernelArg expects. Buffers pass their cl_mem handle by reference;
// plain scalars pass their own address.
func argSizeAndPtr(a any) (C.size_t, unsafe.Pointer) {
	switch v := a.(type) {
	case clArgSetter:
		return v.clArg()
	case uint32:
		return C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v)
	case int32:
		return C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v)
	default:
		return 0, nil
	}
}
