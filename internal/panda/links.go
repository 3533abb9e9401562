package panda

// Link is one set reference of an output event, flattened for storage and
// inspection.
type Link struct {
	Collection  string
	Index       int
	Field       string
	Target      string
	TargetIndex int
}

// Links lists every set reference the branch list writes, collection by
// collection in record order. Unset references are not links.
func (e *Event) Links(branches BranchList) []Link {
	var links []Link
	add := func(coll string, i int, field, target string, idx int) {
		if idx < 0 || !branches.Includes(coll) || !branches.Includes(coll+"."+field) || !branches.Includes(target) {
			return
		}
		links = append(links, Link{Collection: coll, Index: i, Field: field, Target: target, TargetIndex: idx})
	}

	for i, mu := range e.Muons.All() {
		add("muons", i, "matchedPF_", "pfCandidates", mu.MatchedPF.Index())
		add("muons", i, "vertex_", "vertices", mu.Vertex.Index())
		add("muons", i, "matchedGen_", "genParticles", mu.MatchedGen.Index())
	}
	for i, pf := range e.PFCandidates.All() {
		add("pfCandidates", i, "vertex_", "vertices", pf.Vertex.Index())
	}
	return links
}
