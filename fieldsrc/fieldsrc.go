// Package fieldsrc generates device source for one specialized prime
// field: constants, type definition, and add/sub/mul/sqr/pow/double/mont/
// unmont. It is the C2 component -- composing (1) a shared common header,
// (2) a per-field parameter block, (3) an optional NVIDIA PTX block, and
// (4) a generic field template -- then replacing the bare-word
// placeholder FIELD with the concrete field name.
package fieldsrc

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/zkaccel/gpualgebra/fieldparams"
	"github.com/zkaccel/gpualgebra/limb"
)

//go:embed cl/common.cl
var commonSrc string

//go:embed cl/nvidia.cl
var nvidiaSrc string

//go:embed cl/field.cl
var fieldTemplate string

// Generate emits the self-contained source for one specialized field:
// recompiling the returned string alone produces every operation for that
// field. name is substituted for every bare occurrence of the literal
// placeholder FIELD.
func Generate(d fieldparams.Descriptor, name string) string {
	sections := []string{
		commonSrc,
		paramsBlock(d),
	}

	if ts, reg, ok := ptxAvailable(d.Kind); ok {
		block := strings.ReplaceAll(nvidiaSrc, "PTXTYPE", ts)
		block = strings.ReplaceAll(block, "PTXREG", reg)
		sections = append(sections, block)
	}

	sections = append(sections, fieldTemplate)

	joined := strings.Join(sections, "\n\n")
	return strings.ReplaceAll(joined, "FIELD", name)
}

func ptxAvailable(k limb.Kind) (typeSuffix, reg string, ok bool) {
	ts, rc := k.PTXInfo()
	return ts, rc, ts != ""
}

// paramsBlock emits FIELD_limb, FIELD_LIMBS, FIELD_LIMB_BITS, FIELD_P,
// FIELD_R2, FIELD_ONE, FIELD_ZERO and FIELD_INV as #defines consumed by
// cl/field.cl, which holds the struct typedef itself.
func paramsBlock(d fieldparams.Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#define FIELD_limb %s\n", d.Kind.OpenCLTypeName())
	fmt.Fprintf(&b, "#define FIELD_LIMBS %d\n", len(d.P))
	fmt.Fprintf(&b, "#define FIELD_LIMB_BITS %d\n", d.Kind.Bits())
	fmt.Fprintf(&b, "#define FIELD_P ((FIELD){ { %s } })\n", joinLimbs(d.P))
	fmt.Fprintf(&b, "#define FIELD_R2 ((FIELD){ { %s } })\n", joinLimbs(d.R2))
	fmt.Fprintf(&b, "#define FIELD_ONE ((FIELD){ { %s } })\n", joinLimbs(d.One))
	fmt.Fprintf(&b, "#define FIELD_ZERO ((FIELD){ { %s } })\n", joinLimbs(make([]uint64, len(d.P))))
	fmt.Fprintf(&b, "#define FIELD_INV %dUL\n", d.Inv)
	return b.String()
}

func joinLimbs(limbs []uint64) string {
	parts := make([]string, len(limbs))
	for i, l := range limbs {
		parts[i] = fmt.Sprintf("%dUL", l)
	}
	return strings.Join(parts, ", ")
}
