// Package cache is the process-wide program cache (C5): (device,
// type-key) -> compiled device program, guaranteeing at most one
// successful compile per key. It is the Go translation of algebra-kernels/src/lib.rs's
// lazy_mut! CACHED_PROGRAMS nested HashMap, using a sync.RWMutex instead
// of the original's unsafe lazy-static mutable global -- per §5 and §9,
// reads of existing entries are lock-free-safe relative to each other,
// and only the insert path needs exclusion.
package cache

import (
	"sync"

	"github.com/zkaccel/gpualgebra/device"
)

// TypeKey identifies one parametric workload: a curve family name crossed
// with a workload kind ("fft", "multiexp", "polycommit") and limb
// selection, standing in for the original's TypeId::of::<SomeKernel<G>>().
type TypeKey struct {
	Family  string
	Kind    string
	Limb64  bool
}

type entry struct {
	program *device.Program
}

// Cache is one process-wide program cache. The zero value is usable.
type Cache struct {
	mu      sync.RWMutex
	entries map[*device.Device]map[TypeKey]*entry
}

// New constructs an empty cache. Most callers should share one Cache
// instance process-wide (see the package-level Default below); New
// exists for tests that want isolation.
func New() *Cache {
	return &Cache{entries: map[*device.Device]map[TypeKey]*entry{}}
}

// Default is the process-wide cache instance the fft/msm/polycommit
// engines use unless a caller constructs its own via New, mirroring the
// original's single global CACHED_PROGRAMS.
var Default = New()

// GetProgram returns the compiled program for (dev, key), compiling and
// inserting it via generate if no compiled program exists for that key
// yet. Once a compile has succeeded, generate is not called again for
// that key; a generate or compile error is returned without being
// cached, so the next call for the same key tries again.
func (c *Cache) GetProgram(dev *device.Device, key TypeKey, generate func() (string, error)) (*device.Program, error) {
	c.mu.RLock()
	if byType, ok := c.entries[dev]; ok {
		if e, ok := byType[key]; ok {
			c.mu.RUnlock()
			return e.program, nil
		}
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check after acquiring the write lock: another goroutine may have
	// inserted this key while we were waiting.
	byType, ok := c.entries[dev]
	if !ok {
		byType = map[TypeKey]*entry{}
		c.entries[dev] = byType
	}
	if e, ok := byType[key]; ok {
		return e.program, nil
	}

	src, err := generate()
	if err != nil {
		return nil, err
	}
	program, err := device.ProgramFromSource(dev, src)
	if err != nil {
		return nil, err
	}

	byType[key] = &entry{program: program}
	return program, nil
}

// CompileCount returns how many distinct (device, key) entries currently
// exist, for cache-idempotence tests.
func (c *Cache) CompileCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, byType := range c.entries {
		n += len(byType)
	}
	return n
}
