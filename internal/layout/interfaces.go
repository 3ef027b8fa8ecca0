package layout

import (
	"math/rand"
)

// assignInterfaceKeys gives every interface class a random 48-bit id
// shifted into the high bits, leaving the low 16 bits free to hold a
// method ordinal when an interface+method pair is used as a single
// dispatch-table key. Collisions are vanishingly unlikely at 48 bits but
// are checked and resampled exactly like the compiler this is grounded
// on does, rather than trusting the birthday bound.
func (p *Planner) assignInterfaceKeys() {
	seen := map[uint64]bool{}
	for _, c := range p.prog.ClassOrder {
		if !c.IsInterface {
			continue
		}
		for {
			id := (rand.Uint64() & 0xFFFFFFFFFFFF) << 16
			if !seen[id] {
				seen[id] = true
				c.InterfaceKey = id
				break
			}
		}
	}
}
