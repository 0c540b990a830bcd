// Package fp2src generates device source for a quadratic extension field:
// the NONRESIDUE constant plus the static Fp2 arithmetic template
// specialized over a named base field. This is C3.
package fp2src

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed cl/fp2.cl
var fp2Template string

// NonResidue is the base-field element used as the quadratic extension's
// non-residue, expressed as its own limb vector (already in the base
// field's Montgomery form -- callers derive it the same way they derive
// any other base-field constant).
type NonResidue struct {
	Limbs []uint64
}

// Generate emits the NONRESIDUE define followed by the Fp2 arithmetic
// template, with FIELD2 substituted for the extension name and FIELD for
// the base field name -- in that order, since base-field names never
// contain the extension's own name as a substring in this module's
// families, but the reverse is not guaranteed.
func Generate(base, extension string, nr NonResidue) string {
	def := fmt.Sprintf("#define FIELD_NONRESIDUE ((FIELD){ { %s } })\n", joinLimbs(nr.Limbs))
	joined := def + "\n" + fp2Template

	joined = strings.ReplaceAll(joined, "FIELD2", extension)
	joined = strings.ReplaceAll(joined, "FIELD", base)
	return joined
}

func joinLimbs(limbs []uint64) string {
	parts := make([]string, len(limbs))
	for i, l := range limbs {
		parts[i] = fmt.Sprintf("%dUL", l)
	}
	return strings.Join(parts, ", ")
}
