package filler

import (
	"math"

	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
	"github.com/roach88/pandafill/internal/physics"
)

// Map tags of the muon filler's link maps.
const (
	TagPF  = "pf"
	TagGen = "gen"
)

// Muons fills the muon collection.
//
// Pass 1 derives every muon field and links each muon to its source PF
// candidate, that candidate's vertex and, for simulation, its generator
// particle. Pass 2 turns those links into references and, when enabled,
// stamps trigger match flags.
type Muons struct {
	isRealData bool
	useTrigger bool
	selectors  physics.Selectors
	trigger    *TriggerMatcher
	logger     *zap.Logger
}

// NewMuons creates the muon filler.
func NewMuons(opts Options) (*Muons, error) {
	f := &Muons{
		isRealData: opts.IsRealData,
		useTrigger: opts.UseTrigger,
		selectors:  opts.selectors(),
		logger:     opts.logger().Named(NameMuons),
	}
	if f.useTrigger {
		tm, err := NewTriggerMatcher(opts.TriggerObjects)
		if err != nil {
			return nil, err
		}
		f.trigger = tm
	}
	return f, nil
}

func (f *Muons) Name() string { return NameMuons }

func (f *Muons) BranchNames(events, _ *panda.BranchList) {
	events.Append("muons")
	if f.isRealData {
		events.Absent("muons.matchedGen_")
	}
	if !f.useTrigger {
		events.Absent("muons.triggerMatch")
	}
}

func (f *Muons) DocTrees() []panda.DocTree {
	return []panda.DocTree{panda.MakeDocTree("MuonTriggerObject", panda.TriggerObjectName[:])}
}

// TriggerMatcher returns the configured matcher, nil when matching is off.
func (f *Muons) TriggerMatcher() *TriggerMatcher {
	return f.trigger
}

func (f *Muons) Fill(ec *EventContext) error {
	in := ec.Input
	out := ec.Output.Muons

	var pv *ir.Vertex
	ref := physics.Origin
	if len(in.Vertices) != 0 {
		pv = &in.Vertices[0]
		ref = pv.Position
	}

	ptrs := make([]ir.Ptr[ir.Muon], 0, len(in.Muons))
	for i := range in.Muons {
		inMuon := &in.Muons[i]
		ptr := in.MuonPtr(i)

		id, ok := identificationFor(inMuon, f.selectors)
		if !ok {
			return &TypeMismatchError{Filler: f.Name(), Object: ptr.String(), Capability: "identification variant " + string(inMuon.Variant)}
		}
		if inMuon.BestTrack == nil {
			return &TypeMismatchError{Filler: f.Name(), Object: ptr.String(), Capability: "best track"}
		}

		outMuon := out.CreateBack()
		fillMuon(outMuon, inMuon)
		id.Identify(outMuon, inMuon, pv)

		outMuon.Hltsafe = outMuon.CombIso()/outMuon.Pt < 0.4 && outMuon.R03Iso/outMuon.Pt < 0.4
		outMuon.Dxy = id.DXY(inMuon, ref)
		outMuon.Dz = math.Abs(physics.DZ(inMuon.BestTrack, ref))

		ptrs = append(ptrs, ptr)
	}

	originalIndices := out.Sort(panda.PtGreater[*panda.Muon])

	store := ec.Maps(f.Name())
	muMuMap := objmap.Get[ir.Ptr[ir.Muon], panda.Muon](store, "")
	pfMuMap := objmap.Get[ir.Ptr[ir.Candidate], panda.Muon](store, TagPF)
	vtxMuMap := objmap.Get[ir.Ptr[ir.Vertex], panda.Muon](store, "")
	genMuMap := objmap.Get[ir.Ptr[ir.Candidate], panda.Muon](store, TagGen)

	for pos, idx := range originalIndices {
		outMuon := out.At(pos)
		inMuon := &in.Muons[idx]
		muMuMap.Add(ptrs[idx], outMuon)

		if src := inMuon.Source; src.IsNonnull() {
			pfMuMap.Add(src, outMuon)
			if ir.IsPackedCandidate(src) {
				if cand, ok := in.CandidateAt(src); ok && cand.Vertex.IsNonnull() {
					vtxMuMap.Add(cand.Vertex, outMuon)
				}
			}
		}

		if !f.isRealData && inMuon.Variant == ir.MuonVariantPat && inMuon.Pat.GenParticle.IsNonnull() {
			genMuMap.Add(inMuon.Pat.GenParticle, outMuon)
		}
	}
	return nil
}

func fillMuon(out *panda.Muon, in *ir.Muon) {
	out.Particle = particle(in.P4)
	out.Charge = in.Charge

	out.Global = in.Global
	out.Tracker = in.Tracker
	out.PF = in.PF

	if trk := in.InnerTrack; trk != nil {
		out.ValidFraction = trk.ValidFraction
		out.TrkLayersWithMmt = trk.Hits.TrackerLayersWithMeasurement
		out.PixLayersWithMmt = trk.Hits.PixelLayersWithMeasurement
		out.NValidPixel = trk.Hits.ValidPixelHits
	}
	if trk := in.GlobalTrack; trk != nil {
		out.NormChi2 = trk.NormalizedChi2
		out.NValidMuon = trk.Hits.ValidMuonHits
	}

	out.NMatched = in.MatchedStations
	out.Chi2LocalPosition = in.Quality.Chi2LocalPosition
	out.TrkKink = in.Quality.TrkKink
	out.SegmentCompatibility = in.SegmentCompatibility

	out.ChIso = in.PFIsoR04.SumChargedHadronPt
	out.NhIso = in.PFIsoR04.SumNeutralHadronEt
	out.PhIso = in.PFIsoR04.SumPhotonEt
	out.PuIso = in.PFIsoR04.SumPUPt
	out.R03Iso = in.TrackIsoR03

	out.PFPt = in.PFPt
}

func (f *Muons) SetRefs(ec *EventContext) error {
	store := ec.Maps(f.Name())
	muons := ec.Output.Muons

	pfMap, err := Published[ir.Ptr[ir.Candidate], panda.PFCand](ec, NamePFCandidates, "")
	if err != nil {
		return err
	}
	vtxMap, err := Published[ir.Ptr[ir.Vertex], panda.RecoVertex](ec, NameVertices, "")
	if err != nil {
		return err
	}

	// The source candidate can point outside the packed collection; such
	// links stay unresolved.
	pfMuMap := objmap.Get[ir.Ptr[ir.Candidate], panda.Muon](store, TagPF)
	nPF := resolveLinks(pfMuMap, pfMap, ec.Output.PFCandidates, func(m *panda.Muon) *panda.Ref[panda.PFCand] {
		return &m.MatchedPF
	})

	vtxMuMap := objmap.Get[ir.Ptr[ir.Vertex], panda.Muon](store, "")
	nVtx := resolveLinks(vtxMuMap, vtxMap, ec.Output.Vertices, func(m *panda.Muon) *panda.Ref[panda.RecoVertex] {
		return &m.Vertex
	})

	nGen := 0
	if !f.isRealData {
		genMap, err := Published[ir.Ptr[ir.Candidate], panda.GenParticle](ec, NameGenParticles, "")
		if err != nil {
			return err
		}
		genMuMap := objmap.Get[ir.Ptr[ir.Candidate], panda.Muon](store, TagGen)
		nGen = resolveLinks(genMuMap, genMap, ec.Output.GenParticles, func(m *panda.Muon) *panda.Ref[panda.GenParticle] {
			return &m.MatchedGen
		})
	}

	if f.useTrigger {
		if err := f.matchTrigger(ec); err != nil {
			return err
		}
	}

	f.logger.Debug("resolved muon references",
		zap.Int("muons", muons.Len()),
		zap.Int("pf", nPF),
		zap.Int("vertex", nVtx),
		zap.Int("gen", nGen))
	return nil
}

func (f *Muons) matchTrigger(ec *EventContext) error {
	nameMap, err := Published[ir.Ptr[ir.TriggerObject], panda.FilterList](ec, NameHLT, "")
	if err != nil {
		return err
	}

	members := f.trigger.Members(nameMap, ec.Input.TriggerObjectAt)

	muMuMap := objmap.Get[ir.Ptr[ir.Muon], panda.Muon](ec.Maps(f.Name()), "")
	for ptr, outMuon := range muMuMap.FwdLinks() {
		inMuon, ok := ec.Input.MuonAt(ptr)
		if !ok {
			continue
		}
		outMuon.TriggerMatch = f.trigger.Match(inMuon.Eta, inMuon.Phi, &members)
	}
	return nil
}
