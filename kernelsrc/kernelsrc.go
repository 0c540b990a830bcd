// Package kernelsrc is the curve & workload assembler (C4). Given a
// registered curve family, it composes field + Fp2 + EC + workload
// (FFT/MSM/polycommit) source into one device program, mangling names
// per curve group via the FIELD -> POINT -> EXPONENT -> __BLSTRS__
// substitution order.
package kernelsrc

import (
	_ "embed"
	"strings"

	"github.com/zkaccel/gpualgebra/curvefamily"
	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/fieldsrc"
	"github.com/zkaccel/gpualgebra/fp2src"
	"github.com/zkaccel/gpualgebra/limb"
)

//go:embed cl/ec.cl
var ecTemplate string

//go:embed cl/fft.cl
var fftTemplate string

//go:embed cl/multiexp.cl
var multiexpTemplate string

//go:embed cl/round_reduce.cl
var roundReduceTemplate string

// PrefixMap returns, for each group in the family, the symbol-mangling
// prefix the host uses to select the right kernel name at dispatch time
// -- the Go stand-in for the original's TypeId-keyed HashMap, keyed here
// by the group's own point name since Go curve families are a runtime
// registry rather than a set of distinct host types.
func PrefixMap(f curvefamily.Family) map[string]string {
	m := map[string]string{}
	for _, g := range f.Groups() {
		m[g.PointName] = g.Prefix()
	}
	return m
}

// withKind re-derives a field descriptor for a different limb kind,
// keeping the same modulus and name -- used to exercise the mandatory
// but never-dispatched 32-bit limb path (Open Question in SPEC_FULL.md).
func withKind(d fieldparams.Descriptor, k limb.Kind) fieldparams.Descriptor {
	return fieldparams.Derive(d.Name, d.Modulus, d.BitWidth, k)
}

// KernelFFT assembles field(Fr) ⧺ fft(Fr) for the family's scalar field.
func KernelFFT(f curvefamily.Family, limb64 bool) string {
	k := kindOf(limb64)
	fr := withKind(f.ScalarField(), k)

	fieldPart := fieldsrc.Generate(fr, "Fr")
	fftPart := strings.ReplaceAll(fftTemplate, "FIELD", "Fr")

	return strings.Join([]string{fieldPart, fftPart}, "\n\n")
}

// KernelMultiexp assembles the MSM program source for family f:
// field(Fr) ⧺ field(Fq) [⧺ fp2] ⧺ Σgroup(ec(group) ⧺ multiexp(group)).
func KernelMultiexp(f curvefamily.Family, limb64 bool) string {
	return assembleWorkload(f, limb64, multiexpTemplate)
}

// KernelPolycommit assembles the polycommit program source for family f:
// identical prelude to KernelMultiexp, with polycommit_round_reduce in
// place of multiexp.
func KernelPolycommit(f curvefamily.Family, limb64 bool) string {
	return assembleWorkload(f, limb64, roundReduceTemplate)
}

func assembleWorkload(f curvefamily.Family, limb64 bool, workloadTemplate string) string {
	k := kindOf(limb64)

	// Emit the family's own scalar field under its real descriptor name
	// (usually "Fr", but "Fp" for Tweedle, whose groups pair Fp/Fq
	// directly rather than through a distinct Fr) -- forcing "Fr"
	// regardless of that name would, for Tweedle, emit a second,
	// unreferenced field block alongside the Fp block its groups below
	// already emit under the correct name.
	scalarField := withKind(f.ScalarField(), k)
	sections := []string{fieldsrc.Generate(scalarField, scalarField.Name)}

	emitted := map[string]bool{scalarField.Name: true}
	groups := f.Groups()
	for _, g := range groups {
		base := withKind(g.Base, k)
		if !emitted[base.Name] {
			sections = append(sections, fieldsrc.Generate(base, base.Name))
			emitted[base.Name] = true
		}
		scalar := withKind(g.Scalar, k)
		if !emitted[scalar.Name] {
			sections = append(sections, fieldsrc.Generate(scalar, scalar.Name))
			emitted[scalar.Name] = true
		}
	}

	if f.HasFp2() {
		fp2 := f.Fp2()
		sections = append(sections, fp2src.Generate(fp2.BaseName, fp2.ExtensionName, fp2.NonResidue))
	}

	for _, g := range groups {
		sections = append(sections, specializeGroup(ecTemplate, g))
		sections = append(sections, specializeGroup(workloadTemplate, g))
	}

	joined := strings.Join(sections, "\n\n")
	return applyBLSTRS(joined, f.BLSTRS())
}

// specializeGroup substitutes FIELD -> POINT -> EXPONENT, in that order,
// so that a longer replacement name is never itself shadowed by an
// earlier, shorter substitution.
func specializeGroup(template string, g curvefamily.Group) string {
	out := strings.ReplaceAll(template, "FIELD", g.Base.Name)
	out = strings.ReplaceAll(out, "POINT", g.PointName)
	out = strings.ReplaceAll(out, "EXPONENT", g.Scalar.Name)
	return out
}

func applyBLSTRS(src string, enabled bool) string {
	if enabled {
		return strings.ReplaceAll(src, "__BLSTRS__", "#define BLSTRS")
	}
	src = strings.ReplaceAll(src, "__BLSTRS__\n", "")
	return strings.ReplaceAll(src, "__BLSTRS__", "")
}

func kindOf(limb64 bool) limb.Kind {
	if limb64 {
		return limb.Kind64
	}
	return limb.Kind32
}
