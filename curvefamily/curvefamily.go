// Package curvefamily is the runtime registry of supported curve
// families. The original implementation selects a family at compile time
// via Rust type identity and Cargo feature flags; Go has neither
// mechanism, so each family registers itself from an init() func and
// callers select one by name at runtime (see REDESIGN FLAGS in
// SPEC_FULL.md). All families are always linked in -- "at least one
// feature enabled" becomes "the registry is non-empty," which holds
// because every family registers itself from init(); All() does not
// check it.
package curvefamily

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/fp2src"
)

// Group is one logical curve group within a family: a base field, a
// scalar field, and the point-name prefix used to namespace generated
// device symbols (e.g. "G1", "G2", "Dee").
type Group struct {
	PointName string
	Base      fieldparams.Descriptor
	Scalar    fieldparams.Descriptor
}

// Prefix is the symbol-mangling prefix this group contributes, e.g. "G1_".
func (g Group) Prefix() string {
	return g.PointName + "_"
}

// Fp2Spec describes the quadratic extension prelude a family's groups
// share, when HasFp2 is true.
type Fp2Spec struct {
	BaseName      string
	ExtensionName string
	NonResidue    fp2src.NonResidue
}

// Family is one curve family's recipe: its scalar field, the groups it
// contributes, and whether it needs an Fp2 prelude.
type Family interface {
	Name() string
	ScalarField() fieldparams.Descriptor
	Groups() []Group
	HasFp2() bool
	Fp2() Fp2Spec // only valid when HasFp2() is true
	// BLSTRS reports whether the "blstrs" feature's alternate BLS12-381
	// representation marker should be emitted for this family. Only
	// bls12_381 ever returns true.
	BLSTRS() bool
}

var (
	mu       sync.RWMutex
	registry = map[string]Family{}
)

// Register adds a family under name. Called once per family from its
// package init(). Panics on duplicate registration, since that would
// mean two families are fighting over the same runtime selector -- a
// build-time programming error, not a runtime condition to recover from.
func Register(name string, f Family) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("curvefamily: %q already registered", name))
	}
	registry[name] = f
}

// Get looks up a family by name.
func Get(name string) (Family, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// All returns every registered family, sorted by name for deterministic
// iteration (source-determinism tests rely on stable ordering).
func All() []Family {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Family, len(names))
	for i, n := range names {
		out[i] = registry[n]
	}
	return out
}
