package ir

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Decoder reads events from a YAML stream, one document per event.
type Decoder struct {
	dec *yaml.Decoder
	n   int
}

// NewDecoder creates a Decoder that rejects unknown fields (typos in event
// files surface as errors rather than silently empty collections).
func NewDecoder(r io.Reader) *Decoder {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	return &Decoder{dec: dec}
}

// Next decodes the next event. Returns io.EOF when the stream is exhausted.
func (d *Decoder) Next() (*Event, error) {
	var ev Event
	if err := d.dec.Decode(&ev); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decode event document %d: %w", d.n, err)
	}
	d.n++
	return &ev, nil
}

// DecodeEvents reads every event from r.
func DecodeEvents(r io.Reader) ([]Event, error) {
	d := NewDecoder(r)
	var events []Event
	for {
		ev, err := d.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
}

// LoadEvents reads every event from the YAML file at path.
func LoadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()
	return DecodeEvents(f)
}
