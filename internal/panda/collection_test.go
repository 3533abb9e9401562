package panda

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillMuons(pts ...float64) (*Collection[Muon], []*Muon) {
	c := NewCollection[Muon]()
	handles := make([]*Muon, len(pts))
	for i, pt := range pts {
		handles[i] = c.CreateBack()
		handles[i].Pt = pt
	}
	return c, handles
}

func TestCollectionCreateBack(t *testing.T) {
	c, handles := fillMuons(10, 20)

	assert.Equal(t, 2, c.Len())
	assert.Same(t, handles[0], c.At(0))
	assert.Equal(t, 1, c.IndexOf(handles[1]))
	assert.Equal(t, -1, c.IndexOf(&Muon{}), "foreign handle")
}

func TestCollectionSortReturnsPermutation(t *testing.T) {
	c, handles := fillMuons(10, 30, 20)

	originalIndices := c.Sort(PtGreater[*Muon])

	assert.Equal(t, []int{1, 2, 0}, originalIndices)
	assert.Equal(t, []float64{30, 20, 10}, []float64{c.At(0).Pt, c.At(1).Pt, c.At(2).Pt})

	// Handles survive the reorder and report their new positions.
	for old, h := range handles {
		newPos := c.IndexOf(h)
		assert.Same(t, h, c.At(newPos))
		assert.Equal(t, old, originalIndices[newPos])
	}
}

func TestCollectionSortIsStable(t *testing.T) {
	c, handles := fillMuons(5, 7, 5, 7)
	handles[0].Charge = 1
	handles[2].Charge = 2
	handles[1].Charge = 3
	handles[3].Charge = 4

	originalIndices := c.Sort(PtGreater[*Muon])

	assert.Equal(t, []int{1, 3, 0, 2}, originalIndices, "ties keep input order")
	assert.Equal(t, 3, c.At(0).Charge)
	assert.Equal(t, 4, c.At(1).Charge)
}

func TestCollectionAllAndRecords(t *testing.T) {
	c, _ := fillMuons(1, 2)

	var seen []float64
	for i, rec := range c.All() {
		assert.Same(t, c.At(i), rec)
		seen = append(seen, rec.Pt)
	}
	assert.Equal(t, []float64{1, 2}, seen)

	records := c.Records()
	records[0].Pt = 99
	assert.Equal(t, 1.0, c.At(0).Pt, "Records returns copies")
}

func TestCollectionJSONRoundTrip(t *testing.T) {
	c := NewCollection[RecoVertex]()
	c.CreateBack().NTracks = 3

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":0,"y":0,"z":0,"ndof":0,"chi2":0,"ntrk":3}]`, string(data))

	back := NewCollection[RecoVertex]()
	require.NoError(t, json.Unmarshal(data, back))
	require.Equal(t, 1, back.Len())
	assert.Equal(t, 0, back.IndexOf(back.At(0)))
}

func TestRef(t *testing.T) {
	vertices := NewCollection[RecoVertex]()
	vertices.CreateBack()
	second := vertices.CreateBack()

	var r Ref[RecoVertex]
	assert.False(t, r.IsValid())
	assert.Equal(t, -1, r.Index())

	r.SetRef(vertices, second)
	assert.True(t, r.IsValid())
	assert.Equal(t, 1, r.Index())
	got, ok := r.Get(vertices)
	require.True(t, ok)
	assert.Same(t, second, got)

	r.SetRef(vertices, &RecoVertex{})
	assert.False(t, r.IsValid(), "record outside the collection leaves the ref unset")

	data, err := json.Marshal(struct {
		V Ref[RecoVertex] `json:"vertex_"`
	}{})
	require.NoError(t, err)
	assert.Equal(t, `{"vertex_":-1}`, string(data))

	var back Ref[RecoVertex]
	require.NoError(t, json.Unmarshal([]byte("4"), &back))
	assert.Equal(t, 4, back.Index())
}

func TestMuonCombIso(t *testing.T) {
	m := &Muon{ChIso: 1, NhIso: 2, PhIso: 3, PuIso: 4}
	assert.InDelta(t, 4.0, m.CombIso(), 1e-12)

	m.PuIso = 20
	assert.InDelta(t, 1.0, m.CombIso(), 1e-12, "neutral part is clamped at zero")
}
