package harness

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/panda"
)

// dumper renders failure context deterministically.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Event    int    // Position of the event in the scenario
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Context  string // Dump of the value the assertion looked at
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (event %d)\n", e.Type, e.Event)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Context != "" {
		fmt.Fprintf(&buf, "\nContext:\n%s", e.Context)
	}
	return buf.String()
}

// evaluate checks one assertion against the stored record of its event and
// the record's output document.
func evaluate(a Assertion, rec ir.EventRecord, doc map[string]any) error {
	if a.Type == AssertStatus {
		return assertStatus(a, rec)
	}
	if doc == nil {
		return &AssertionError{
			Type:     a.Type,
			Event:    a.Event,
			Expected: "an output document",
			Actual:   fmt.Sprintf("event %s has status %s (%s)", rec.ID, rec.Status, rec.ErrorCode),
			Context:  rec.Error,
		}
	}

	switch a.Type {
	case AssertCount:
		return assertCount(a, doc)
	case AssertField:
		return assertField(a, doc)
	case AssertAbsent:
		return assertAbsent(a, doc)
	case AssertRef:
		return assertRef(a, rec, doc)
	case AssertTrigger:
		return assertTrigger(a, doc)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertStatus(a Assertion, rec ir.EventRecord) error {
	if string(rec.Status) == a.Status && (a.Code == "" || rec.ErrorCode == a.Code) {
		return nil
	}
	want := a.Status
	if a.Code != "" {
		want += " " + a.Code
	}
	got := string(rec.Status)
	if rec.ErrorCode != "" {
		got += " " + rec.ErrorCode
	}
	return &AssertionError{
		Type:     AssertStatus,
		Event:    a.Event,
		Expected: want,
		Actual:   got,
		Context:  rec.Error,
	}
}

func assertCount(a Assertion, doc map[string]any) error {
	val, ok := doc[a.Collection]
	if !ok {
		return &AssertionError{
			Type:     AssertCount,
			Event:    a.Event,
			Expected: fmt.Sprintf("%d records in %s", *a.Count, a.Collection),
			Actual:   "collection is not written",
		}
	}
	records, _ := val.([]any)
	if len(records) != *a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Event:    a.Event,
			Expected: fmt.Sprintf("%d records in %s", *a.Count, a.Collection),
			Actual:   fmt.Sprintf("%d records", len(records)),
		}
	}
	return nil
}

func assertField(a Assertion, doc map[string]any) error {
	got, ok := lookup(doc, a.Path)
	if !ok {
		return &AssertionError{
			Type:     AssertField,
			Event:    a.Event,
			Expected: fmt.Sprintf("%s = %v", a.Path, a.Equals),
			Actual:   "path does not exist",
		}
	}
	equal, err := equalValues(got, a.Equals, a.Within)
	if err != nil {
		return fmt.Errorf("assertion field %s: %w", a.Path, err)
	}
	if !equal {
		want := fmt.Sprintf("%s = %v", a.Path, a.Equals)
		if a.Within > 0 {
			want += fmt.Sprintf(" within %g", a.Within)
		}
		return &AssertionError{
			Type:     AssertField,
			Event:    a.Event,
			Expected: want,
			Actual:   fmt.Sprintf("%v", got),
			Context:  dumper.Sdump(got),
		}
	}
	return nil
}

func assertAbsent(a Assertion, doc map[string]any) error {
	got, ok := lookup(doc, a.Path)
	if ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Event:    a.Event,
			Expected: fmt.Sprintf("%s absent", a.Path),
			Actual:   fmt.Sprintf("%v", got),
			Context:  dumper.Sdump(got),
		}
	}
	return nil
}

func assertRef(a Assertion, rec ir.EventRecord, doc map[string]any) error {
	if _, ok := lookup(doc, fmt.Sprintf("%s.%d", a.Collection, a.Index)); !ok {
		return &AssertionError{
			Type:     AssertRef,
			Event:    a.Event,
			Expected: fmt.Sprintf("record %s[%d]", a.Collection, a.Index),
			Actual:   "record does not exist",
		}
	}

	got := -1
	for _, ref := range rec.Refs {
		if ref.Collection == a.Collection && ref.Index == a.Index && ref.Field == a.Field {
			got = ref.TargetIndex
			break
		}
	}
	if got != *a.TargetIndex {
		return &AssertionError{
			Type:     AssertRef,
			Event:    a.Event,
			Expected: fmt.Sprintf("%s[%d].%s -> %s", a.Collection, a.Index, a.Field, refTarget(*a.TargetIndex)),
			Actual:   refTarget(got),
			Context:  dumper.Sdump(rec.Refs),
		}
	}
	return nil
}

func refTarget(i int) string {
	if i < 0 {
		return "unset"
	}
	return strconv.Itoa(i)
}

func assertTrigger(a Assertion, doc map[string]any) error {
	cat, ok := panda.TriggerCategoryIndex(a.Category)
	if !ok {
		return fmt.Errorf("assertion trigger: unknown category %q", a.Category)
	}
	path := fmt.Sprintf("muons.%d.triggerMatch.%d", a.Index, cat)
	val, ok := lookup(doc, path)
	if !ok {
		return &AssertionError{
			Type:     AssertTrigger,
			Event:    a.Event,
			Expected: fmt.Sprintf("muon %d %s match = %t", a.Index, a.Category, *a.Match),
			Actual:   fmt.Sprintf("%s does not exist", path),
		}
	}
	got, ok := val.(bool)
	if !ok || got != *a.Match {
		return &AssertionError{
			Type:     AssertTrigger,
			Event:    a.Event,
			Expected: fmt.Sprintf("muon %d %s match = %t", a.Index, a.Category, *a.Match),
			Actual:   fmt.Sprintf("%v", val),
		}
	}
	return nil
}

// lookup resolves a dotted path in a decoded document. Numeric segments
// index arrays.
func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// equalValues compares a document value with an expected value. With a
// positive tolerance both must be numbers; otherwise their canonical JSON
// must be identical.
func equalValues(got, want any, within float64) (bool, error) {
	if within > 0 {
		g, ok := toFloat(got)
		if !ok {
			return false, nil
		}
		w, ok := toFloat(want)
		if !ok {
			return false, fmt.Errorf("equals %v is not a number", want)
		}
		return math.Abs(g-w) <= within, nil
	}

	g, err := ir.MarshalCanonical(got)
	if err != nil {
		return false, err
	}
	w, err := ir.MarshalCanonical(want)
	if err != nil {
		return false, err
	}
	return string(g) == string(w), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
