package filler

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
	"github.com/roach88/pandafill/internal/physics"
)

// TriggerMatchDR is the angular distance within which a trigger object
// matches a muon.
const TriggerMatchDR = 0.3

// TriggerMatcher stamps per-category trigger match flags on muons.
//
// A trigger object is a member of a category when any of its filters is one
// of the category's qualifying names. A muon matches a category when a
// member lies within TriggerMatchDR. Members are tried in the encounter order
// of the filter association and the first one in range wins; the search does
// not look for the nearest member.
type TriggerMatcher struct {
	names [panda.NTriggerObjects][]string
}

// NewTriggerMatcher builds the qualifying name sets from configuration.
// Unknown category keys are an error; categories without names never match.
func NewTriggerMatcher(categories map[string][]string) (*TriggerMatcher, error) {
	tm := &TriggerMatcher{}
	var unknown []string
	for key, names := range categories {
		i, ok := panda.TriggerCategoryIndex(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		tm.names[i] = dedupe(names)
	}
	if len(unknown) > 0 {
		sort.Sort(natural.StringSlice(unknown))
		return nil, fmt.Errorf("unknown muon trigger categories %v", unknown)
	}
	return tm, nil
}

// Names returns the qualifying filter names of category i.
func (tm *TriggerMatcher) Names(i int) []string {
	return tm.names[i]
}

// Members collects, per category, the trigger objects that qualify. Objects
// are visited in the link order of filters; an object may join several
// categories.
func (tm *TriggerMatcher) Members(
	filters *objmap.ObjectMap[ir.Ptr[ir.TriggerObject], panda.FilterList],
	resolve func(ir.Ptr[ir.TriggerObject]) (*ir.TriggerObject, bool),
) [panda.NTriggerObjects][]*ir.TriggerObject {
	var members [panda.NTriggerObjects][]*ir.TriggerObject
	for ptr, list := range filters.FwdLinks() {
		obj, ok := resolve(ptr)
		if !ok {
			continue
		}
		for iT := range panda.NTriggerObjects {
			for _, name := range tm.names[iT] {
				if list.Contains(name) {
					members[iT] = append(members[iT], obj)
					break
				}
			}
		}
	}
	return members
}

// Match returns the per-category flags of a muon at (eta, phi).
func (tm *TriggerMatcher) Match(eta, phi float64, members *[panda.NTriggerObjects][]*ir.TriggerObject) [panda.NTriggerObjects]bool {
	var flags [panda.NTriggerObjects]bool
	for iT := range panda.NTriggerObjects {
		flags[iT] = FirstMatch(eta, phi, members[iT]) >= 0
	}
	return flags
}

// FirstMatch returns the position of the first object within TriggerMatchDR
// of (eta, phi), or -1.
func FirstMatch(eta, phi float64, objects []*ir.TriggerObject) int {
	for i, obj := range objects {
		if physics.DeltaR(obj.Eta, obj.Phi, eta, phi) < TriggerMatchDR {
			return i
		}
	}
	return -1
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
