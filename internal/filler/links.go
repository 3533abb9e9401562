package filler

import (
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
)

// resolveLinks sets ref(rec) for every local link (rec -> src) whose source
// the target filler published. Links to sources the target did not publish
// stay unset. Returns the number of resolved links.
func resolveLinks[S comparable, D, T any](
	local *objmap.ObjectMap[S, D],
	target *objmap.ObjectMap[S, T],
	coll *panda.Collection[T],
	ref func(*D) *panda.Ref[T],
) int {
	resolved := 0
	for rec, src := range local.BwdLinks() {
		dst, ok := target.Forward(src)
		if !ok {
			continue
		}
		ref(rec).SetRef(coll, dst)
		resolved++
	}
	return resolved
}
