package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", -100, "-100"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"max uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"bool", true, "true"},
		{"null", nil, "null"},
		{"float", 1.5, "1.5"},
		{"integral float", 3.0, "3"},
		{"small float", 0.0001, "0.0001"},
		{"large float", 1e21, "1e+21"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"b": 1, "a": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"a":2,"b":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000: UTF-16 order differs from UTF-8
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)

	// UTF-16: 0xD800 < 0xE000, so U+10000 comes first
	expected := `{"` + "\U00010000" + `":2,"` + "\uE000" + `":1}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalStructTags(t *testing.T) {
	ev := Event{
		EventID: EventID{Run: 1, Lumi: 2, Number: 3},
		Vertices: []Vertex{
			{Position: Point{X: 0.1, Y: 0.2, Z: -1.25}, Ndof: 10, NTracks: 4},
		},
	}

	result, err := MarshalCanonical(ev)
	require.NoError(t, err)
	assert.Equal(t,
		`{"event":3,"lumi":2,"run":1,"vertices":[{"chi2":0,"ndof":10,"ntracks":4,"position":{"x":0.1,"y":0.2,"z":-1.25}}]}`,
		string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(map[string]any{"filter": "hlt<Mu>&Iso"})
	require.NoError(t, err)
	assert.Equal(t, `{"filter":"hlt<Mu>&Iso"}`, string(result))
	assert.NotContains(t, string(result), "\\u003c")
	assert.NotContains(t, string(result), "\\u0026")
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := MarshalCanonical(map[string]any{"pt": f})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported value")
	}
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	composed := "caf\u00E9"
	decomposed := "cafe\u0301"

	r1, err := MarshalCanonical(map[string]any{composed: composed})
	require.NoError(t, err)
	r2, err := MarshalCanonical(map[string]any{decomposed: decomposed})
	require.NoError(t, err)

	assert.Equal(t, r1, r2, "NFC normalization should make keys and values equal")
}

func TestMarshalCanonicalStringEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", "a\nb", `"a\nb"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"line separator", "a\u2028b", "\"a\u2028b\""},
		{"paragraph separator", "a\u2029b", "\"a\u2029b\""},
		{"literal escape text", `seq \u2028`, `"seq \\u2028"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalIdempotent(t *testing.T) {
	ev := Event{
		EventID: EventID{Run: 7},
		Muons: []Muon{{
			P4:      P4{Pt: 31.25, Eta: -0.5, Phi: 2.75, Mass: 0.1057},
			Charge:  -1,
			Source:  NewPtr[Candidate](ProductPFCandidates, 3),
			Variant: MuonVariantReco,
		}},
	}

	r1, err := MarshalCanonical(ev)
	require.NoError(t, err)
	r2, err := MarshalCanonical(ev)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
	assert.NotContains(t, string(r1), " ")
}
