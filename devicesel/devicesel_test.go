package devicesel

import (
	"errors"
	"testing"

	"github.com/zkaccel/gpualgebra/cache"
)

func TestCreateKernelsFailsClosedWithNoDevices(t *testing.T) {
	c := cache.New()
	_, err := CreateKernels(c, nil, cache.TypeKey{Family: "bn254", Kind: "fft"},
		func() (string, error) { return "kernel void noop(){}", nil }, "noop", 1, 0, nil)
	if err == nil {
		t.Fatal("expected gpuerr.NoWorkingGPUs for an empty device list")
	}
}

func TestCreateKernelsFailsWithFailingGenerateAndNoDevices(t *testing.T) {
	// On a non-opencl build device.All() is always empty, so the
	// "device fails, try the next" branch can't be exercised directly
	// here; this pins the simpler but load-bearing half of the same
	// contract -- zero devices in means NoWorkingGPUs out, regardless
	// of why generate would have failed downstream.
	c := cache.New()
	boom := errors.New("boom")
	_, err := CreateKernels(c, nil, cache.TypeKey{Family: "x", Kind: "fft"},
		func() (string, error) { return "", boom }, "noop", 1, 0, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestForFFTTruncatesToAtMostOneDevice(t *testing.T) {
	if got := len(ForFFT()); got > 1 {
		t.Fatalf("ForFFT returned %d devices, want at most 1", got)
	}
}

func TestForMSMDoesNotTruncate(t *testing.T) {
	// On a non-opencl test build both are empty; this only pins that
	// ForMSM applies no truncation logic of its own (it is device.All
	// verbatim), unlike ForFFT/ForPolycommit.
	if got := len(ForMSM()); got != 0 {
		t.Fatalf("ForMSM returned %d devices on a non-opencl build, want 0", got)
	}
}
