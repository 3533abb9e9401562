package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/pandafill/internal/ir"
)

// marshalStrings converts a string list to JSON TEXT for storage.
// Uses json.Encoder with HTML escaping disabled so branch names such as
// "!muons.matchedGen_" are stored verbatim.
func marshalStrings(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalStrings parses JSON TEXT written by marshalStrings.
func unmarshalStrings(data string) ([]string, error) {
	list := []string{}
	if data == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("unmarshal string list: %w", err)
	}
	return list, nil
}

// DecodeInput parses the stored canonical input of an event back into the
// event model. Replays feed the result through the fillers again.
func DecodeInput(rec ir.EventRecord) (*ir.Event, error) {
	var ev ir.Event
	dec := json.NewDecoder(strings.NewReader(rec.Input))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode input of event %s (seq %d): %w", rec.ID, rec.Seq, err)
	}
	return &ev, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
