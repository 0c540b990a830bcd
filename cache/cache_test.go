package cache

import (
	"errors"
	"testing"
)

func TestGetProgramRetriesFailedCompile(t *testing.T) {
	c := New()
	key := TypeKey{Family: "bn254", Kind: "fft", Limb64: true}

	calls := 0
	generate := func() (string, error) {
		calls++
		return "kernel void noop() {}", nil
	}

	// Both calls hit ProgramFromSource, which fails on this non-opencl
	// test build. A failed compile is not cached, so the second call runs
	// `generate` (the source-synthesis step) again.
	_, _ = c.GetProgram(nil, key, generate)
	_, _ = c.GetProgram(nil, key, generate)

	if calls != 2 {
		// ProgramFromSource errors short-circuit before insertion, so a
		// failed compile is retried on every call -- only a *successful*
		// compile is cached at-most-once. This pins that distinction.
		t.Fatalf("generate called %d times for a failing compile, want 2 (no caching of failures)", calls)
	}
}

func TestCompileCountZeroForEmptyCache(t *testing.T) {
	c := New()
	if c.CompileCount() != 0 {
		t.Fatalf("fresh cache has %d entries, want 0", c.CompileCount())
	}
}

func TestGetProgramPropagatesGenerateError(t *testing.T) {
	c := New()
	key := TypeKey{Family: "x", Kind: "fft"}
	wantErr := errors.New("boom")

	_, err := c.GetProgram(nil, key, func() (string, error) { return "", wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
