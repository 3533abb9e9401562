// Package harness runs scenario tests against the full fill pipeline.
//
// A scenario names a configuration, a list of input events and assertions
// over what the run stored. The harness builds the configured fillers,
// processes every event through the engine into a fresh in-memory store and
// evaluates the assertions against the stored records and their output
// documents.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: single_muon
//	description: "One reco muon is linked to its PF candidate and vertex"
//	run_token: scenario-single-muon
//	config: |
//	  fillers: ["vertices", "pfCandidates", "muons"]
//	  isRealData: true
//	  useTrigger: false
//	events:
//	  - run: 1
//	    lumi: 1
//	    event: 1
//	    vertices: [...]
//	    pf_candidates: [...]
//	    muons: [...]
//	assertions:
//	  - type: status
//	    event: 0
//	    status: ok
//	  - type: ref
//	    event: 0
//	    collection: muons
//	    index: 0
//	    field: matchedPF_
//	    target_index: 0
//
// The config is CUE source unified with the configuration schema; an empty
// config selects the defaults. Events use the same layout as event files.
//
// # Assertion Types
//
//   - status: the event was stored with the given status and, optionally,
//     error code
//   - count: an output collection has exactly count records
//   - field: the value at a dotted document path equals a value, optionally
//     within a numeric tolerance
//   - absent: a dotted document path does not exist
//   - ref: a stored reference points at target_index (-1 for unset)
//   - trigger: a muon's trigger match flag for a category
//
// # Deterministic Runs
//
// Every scenario runs with a fixed run token and a clock starting at zero,
// so two runs of the same scenario store byte-identical records. The golden
// snapshot of a run is the canonical JSON of its stored events.
package harness
