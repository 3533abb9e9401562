package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/config"
	"github.com/roach88/pandafill/internal/engine"
	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/store"
	"github.com/roach88/pandafill/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Parse the scenario config and build its fillers
//  2. Process every event through the engine into the store
//  3. Read the stored run back and decode the output documents
//  4. Evaluate assertions
//
// A returned error means the scenario could not be run at all. Assertion
// failures are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("scenario", scenario.Name))

	cfg, err := config.Parse(scenario.Name+".cue", []byte(scenario.Config))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: config: %w", scenario.Name, err)
	}
	fillers, err := cfg.NewFillers(logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	canonical, hash, err := cfg.Canonical()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	proc := engine.NewProcessor(fillers, logger)
	eng := engine.New(proc, st, testutil.NewFixedRunToken(scenario.RunToken), engine.WithLogger(logger))

	if _, err := eng.Begin(ctx, engine.RunInfo{
		Config:     string(canonical),
		ConfigHash: hash,
		IsRealData: cfg.IsRealData,
		UseTrigger: cfg.UseTrigger,
	}); err != nil {
		return nil, err
	}

	events := make([]*ir.Event, len(scenario.Events))
	for i := range scenario.Events {
		events[i] = &scenario.Events[i]
	}
	if err := eng.ProcessAll(ctx, events); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	records, err := st.ReadEvents(ctx, eng.RunToken())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if len(records) != len(events) {
		return nil, fmt.Errorf("scenario %s: stored %d of %d events", scenario.Name, len(records), len(events))
	}

	result := NewResult()
	result.Records = records
	result.Documents = make([]map[string]any, len(records))
	for i, rec := range records {
		if rec.Status != ir.StatusOK {
			continue
		}
		doc, err := decodeDocument(rec.Output)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: seq %d: %w", scenario.Name, rec.Seq, err)
		}
		result.Documents[i] = doc
	}

	for i, a := range scenario.Assertions {
		if err := evaluate(a, records[a.Event], result.Documents[a.Event]); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	logger.Debug("scenario finished",
		zap.Bool("pass", result.Pass),
		zap.Int("events", len(records)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func decodeDocument(output string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(output)))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode output document: %w", err)
	}
	return doc, nil
}
