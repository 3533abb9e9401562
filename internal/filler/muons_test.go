package filler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
)

const isoMu24Filter = "hltL3crIsoL1sMu22L1f0L2f10QL3f24QL3trkIsoFiltered0p09"

func TestMuonsFillDerivedFields(t *testing.T) {
	ev := baseEvent(recoMuon(30, 0.5, 1.0, 0))
	ev.Muons[0].PFIsoR04 = ir.PFIsolation{SumChargedHadronPt: 2, SumNeutralHadronEt: 3, SumPhotonEt: 1, SumPUPt: 2}
	ev.Muons[0].TrackIsoR03 = 6

	ec := mustProcess(t, setupFillers(t, simOptions(t)), ev)

	require.Equal(t, 1, ec.Output.Muons.Len())
	mu := ec.Output.Muons.At(0)
	assert.Equal(t, 30.0, mu.Pt)
	assert.Equal(t, -1, mu.Charge)
	assert.True(t, mu.Global)
	assert.True(t, mu.Loose)
	assert.True(t, mu.Medium)
	assert.True(t, mu.Tight)
	assert.True(t, mu.Soft)
	assert.False(t, mu.MediumBtoF, "only pat muons carry the B-F medium flag")
	assert.Equal(t, 10, mu.TrkLayersWithMmt)
	assert.Equal(t, 10, mu.NValidMuon)
	assert.InDelta(t, 1.1, mu.NormChi2, 1e-12)
	assert.InDelta(t, 5.0, mu.CombIso(), 1e-12)

	// combIso/pt = 5/30 passes, r03Iso/pt = 6/30 passes
	assert.True(t, mu.Hltsafe)

	ev.Muons[0].TrackIsoR03 = 13
	ec = mustProcess(t, setupFillers(t, simOptions(t)), ev)
	assert.False(t, ec.Output.Muons.At(0).Hltsafe, "r03Iso/pt above 0.4")
}

func TestMuonsReorderPreservesLinks(t *testing.T) {
	ev := baseEvent(
		recoMuon(10, 0.1, 0.1, 0),
		recoMuon(30, 0.2, 0.2, 1),
		recoMuon(20, 0.3, 0.3, 2),
	)

	ec := mustProcess(t, setupFillers(t, simOptions(t)), ev)

	muons := ec.Output.Muons
	require.Equal(t, 3, muons.Len())
	assert.Equal(t, []float64{30, 20, 10}, []float64{muons.At(0).Pt, muons.At(1).Pt, muons.At(2).Pt})

	// Every muon resolves to the PF candidate it was built from, whatever
	// position the candidate sorting put it at.
	for _, mu := range muons.All() {
		pf, ok := mu.MatchedPF.Get(ec.Output.PFCandidates)
		require.True(t, ok)
		assert.Equal(t, mu.Pt, pf.Pt)

		vtx, ok := mu.Vertex.Get(ec.Output.Vertices)
		require.True(t, ok)
		assert.Equal(t, 40, vtx.NTracks)
	}

	// The identity map is expressed in final positions.
	muMap, ok := objmap.Lookup[ir.Ptr[ir.Muon], panda.Muon](ec.Registry.Store(NameMuons), "")
	require.True(t, ok)
	for i := range ev.Muons {
		rec, ok := muMap.Forward(ev.MuonPtr(i))
		require.True(t, ok)
		assert.Equal(t, ev.Muons[i].Pt, rec.Pt)
	}
}

func TestMuonsUnresolvedLinksStayUnset(t *testing.T) {
	ev := baseEvent(recoMuon(30, 0, 0, 0), recoMuon(20, 1, 1, 1))
	// Source outside the packed collection: no pf match, no vertex link.
	ev.Muons[1].Source = ir.NewPtr[ir.Candidate]("particleFlow", 7)

	ec := mustProcess(t, setupFillers(t, simOptions(t)), ev)

	resolved := ec.Output.Muons.At(0)
	unresolved := ec.Output.Muons.At(1)
	assert.True(t, resolved.MatchedPF.IsValid())
	assert.False(t, unresolved.MatchedPF.IsValid())
	assert.False(t, unresolved.Vertex.IsValid())
	assert.Equal(t, -1, unresolved.MatchedPF.Index())
}

func TestMuonsVertexLinkToAbsentVertexStaysUnset(t *testing.T) {
	ev := baseEvent(recoMuon(30, 0, 0, 0))
	ev.PFCandidates[0].Vertex = ir.NewPtr[ir.Vertex](ir.ProductVertices, 4)

	ec := mustProcess(t, setupFillers(t, simOptions(t)), ev)

	mu := ec.Output.Muons.At(0)
	assert.True(t, mu.MatchedPF.IsValid())
	assert.False(t, mu.Vertex.IsValid())
}

func TestMuonsTriggerMatchScenario(t *testing.T) {
	a := recoMuon(40, 0.5, 1.0, 0)
	b := recoMuon(35, -1.5, -2.0, 1)
	ev := baseEvent(a, b)
	ev.TriggerObjects = []ir.TriggerObject{
		{P4: ir.P4{Pt: 39, Eta: 0.6, Phi: 1.1}, FilterLabels: []string{"hltL1sMu22", isoMu24Filter}},
		{P4: ir.P4{Pt: 30, Eta: -1.5, Phi: -2.0}, FilterLabels: []string{"hltUnrelated"}},
	}

	ec := mustProcess(t, setupFillers(t, simOptions(t)), ev)

	muA := ec.Output.Muons.At(0)
	muB := ec.Output.Muons.At(1)
	require.Equal(t, 40.0, muA.Pt)
	assert.True(t, muA.TriggerMatch[panda.MuonTrigIsoMu24])
	assert.False(t, muB.TriggerMatch[panda.MuonTrigIsoMu24], "only a non-qualifying object is in range")
	for iT := range panda.NTriggerObjects {
		if iT != panda.MuonTrigIsoMu24 {
			assert.False(t, muA.TriggerMatch[iT], "category %d has no names", iT)
		}
	}

	// All other flags are independent of trigger configuration.
	opts := simOptions(t)
	opts.UseTrigger = false
	noTrig := mustProcess(t, setupFillers(t, opts), ev)
	for i := range 2 {
		withTrig := *ec.Output.Muons.At(i)
		without := *noTrig.Output.Muons.At(i)
		withTrig.TriggerMatch = [panda.NTriggerObjects]bool{}
		assert.Equal(t, without, withTrig)
	}
}

func TestMuonsTriggerDisabled(t *testing.T) {
	ev := baseEvent(recoMuon(40, 0.5, 1.0, 0))
	ev.TriggerObjects = []ir.TriggerObject{{P4: ir.P4{Eta: 0.5, Phi: 1.0}, FilterLabels: []string{isoMu24Filter}}}

	opts := simOptions(t)
	opts.UseTrigger = false
	fillers := setupFillers(t, opts, NameVertices, NamePFCandidates, NameGenParticles, NameMuons)

	ec := mustProcess(t, fillers, ev)
	assert.False(t, ec.Output.Muons.At(0).TriggerMatch[panda.MuonTrigIsoMu24])

	var branches panda.BranchList
	fillers[3].BranchNames(&branches, &panda.BranchList{})
	assert.False(t, branches.Includes("muons.triggerMatch"))
	assert.True(t, branches.Includes("muons.matchedGen_"))
}

func TestMuonsGeneratorMatchScenario(t *testing.T) {
	a := patMuon(40, 0.5, 1.0, 0, 1)
	b := patMuon(30, -0.5, 2.0, 1, -1)
	ev := baseEvent(a, b)
	ev.GenParticles = []ir.Candidate{
		{P4: ir.P4{Pt: 80}, PdgID: 23, Status: 62},
		{P4: ir.P4{Pt: 41, Eta: 0.5, Phi: 1.0}, PdgID: 13, Status: 1},
	}

	ec := mustProcess(t, setupFillers(t, simOptions(t)), ev)

	muA := ec.Output.Muons.At(0)
	muB := ec.Output.Muons.At(1)

	gen, ok := muA.MatchedGen.Get(ec.Output.GenParticles)
	require.True(t, ok)
	assert.Equal(t, 13, gen.PdgID)
	assert.Equal(t, 1, muA.MatchedGen.Index())
	assert.False(t, muB.MatchedGen.IsValid())
}

func TestMuonsRealDataSkipsGenerator(t *testing.T) {
	ev := baseEvent(patMuon(40, 0.5, 1.0, 0, 0))
	ev.GenParticles = []ir.Candidate{{P4: ir.P4{Pt: 41}, PdgID: 13}}

	opts := simOptions(t)
	opts.IsRealData = true
	// No genParticles filler at all: real data must not need its maps.
	fillers := setupFillers(t, opts, NameVertices, NamePFCandidates, NameHLT, NameMuons)

	ec := mustProcess(t, fillers, ev)
	assert.False(t, ec.Output.Muons.At(0).MatchedGen.IsValid())

	muons := fillers[3].(*Muons)
	var branches panda.BranchList
	muons.BranchNames(&branches, &panda.BranchList{})
	assert.False(t, branches.Includes("muons.matchedGen_"), "declared absent rather than present-but-empty")

	doc, err := ec.Output.Document(branches)
	require.NoError(t, err)
	rec := doc["muons"].([]any)[0].(map[string]any)
	assert.NotContains(t, rec, "matchedGen_")
}

func TestGenParticlesRealData(t *testing.T) {
	opts := simOptions(t)
	opts.IsRealData = true
	f := NewGenParticles(opts)

	ev := &ir.Event{GenParticles: []ir.Candidate{{PdgID: 13}}}
	ec := NewEventContext(ev)
	require.NoError(t, f.Fill(ec))
	assert.Equal(t, 0, ec.Output.GenParticles.Len())
	assert.Empty(t, ec.Registry.Names(), "nothing published")

	var branches panda.BranchList
	f.BranchNames(&branches, &panda.BranchList{})
	assert.False(t, branches.Includes("genParticles"))
}

func TestMuonsNoVerticesFallback(t *testing.T) {
	m := recoMuon(30, 0, 0, 0)
	m.BestTrack = &ir.Track{
		Reference: ir.Point{X: 0.01, Y: 0, Z: 0.5},
		Momentum:  ir.Vector{X: 0, Y: 30, Z: 0},
	}
	pat := patMuon(20, 1, 1, 1, -1)
	ev := baseEvent(m, pat)
	ev.Vertices = nil

	ec := mustProcess(t, setupFillers(t, simOptions(t)), ev)

	for _, mu := range ec.Output.Muons.All() {
		assert.False(t, mu.Tight)
		assert.False(t, mu.Soft)
		assert.False(t, mu.Vertex.IsValid())
	}
	reco := ec.Output.Muons.At(0)
	assert.True(t, reco.Loose, "vertex independent flags are still computed")
	assert.InDelta(t, 0.01, reco.Dxy, 1e-12, "computed against the origin")
	assert.InDelta(t, 0.5, reco.Dz, 1e-12)

	assert.InDelta(t, 0.002, ec.Output.Muons.At(1).Dxy, 1e-12, "pat muons use the stored impact parameter")
}

func TestMuonsMissingBestTrackIsTypeMismatch(t *testing.T) {
	ev := baseEvent(recoMuon(30, 0, 0, 0))
	ev.Muons[0].BestTrack = nil

	_, err := process(setupFillers(t, simOptions(t)), ev)
	require.Error(t, err)
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "best track", tm.Capability)
	assert.Equal(t, "slimmedMuons:0", tm.Object)
}

func TestMuonsPatWithoutPayloadIsTypeMismatch(t *testing.T) {
	ev := baseEvent(recoMuon(30, 0, 0, 0))
	ev.Muons[0].Variant = ir.MuonVariantPat

	_, err := process(setupFillers(t, simOptions(t)), ev)
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
}

func TestMuonsMissingHLTMapIsMissingMapKey(t *testing.T) {
	fillers := setupFillers(t, simOptions(t), NameVertices, NamePFCandidates, NameGenParticles, NameMuons)

	_, err := process(fillers, baseEvent(recoMuon(30, 0, 0, 0)))
	require.Error(t, err)
	var missing *objmap.MissingMapKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, NameHLT, missing.Name)
	assert.Contains(t, missing.Available, NameVertices)
}

func TestMuonsIdempotent(t *testing.T) {
	ev := baseEvent(recoMuon(10, 0.1, 0.1, 0), recoMuon(30, 0.2, 0.2, 1))
	ev.TriggerObjects = []ir.TriggerObject{{P4: ir.P4{Eta: 0.2, Phi: 0.25}, FilterLabels: []string{isoMu24Filter}}}
	fillers := setupFillers(t, simOptions(t))

	first, err := json.Marshal(mustProcess(t, fillers, ev).Output)
	require.NoError(t, err)
	second, err := json.Marshal(mustProcess(t, fillers, ev).Output)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFillOrderIndependence(t *testing.T) {
	ev := baseEvent(patMuon(10, 0.1, 0.1, 0, 0), patMuon(30, 0.2, 0.2, 1, -1))
	ev.GenParticles = []ir.Candidate{{P4: ir.P4{Pt: 10}, PdgID: 13}}

	forward := mustProcess(t, setupFillers(t, simOptions(t)), ev)
	reversed := mustProcess(t, setupFillers(t, simOptions(t),
		NameMuons, NameHLT, NameGenParticles, NamePFCandidates, NameVertices), ev)

	a, err := json.Marshal(forward.Output)
	require.NoError(t, err)
	b, err := json.Marshal(reversed.Output)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestPublishedRejectedDuringPassOne(t *testing.T) {
	ec := NewEventContext(&ir.Event{})
	ec.Maps(NameVertices)

	_, err := Published[ir.Ptr[ir.Vertex], panda.RecoVertex](ec, NameVertices, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before pass 1 completed")
}
