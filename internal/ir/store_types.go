package ir

// NOTE: These are store-layer records, not part of the event model.
// Input and output payloads are carried as canonical JSON text so that a
// stored row hashes to exactly what was hashed at processing time.

// EventStatus is the outcome of processing one event.
type EventStatus string

const (
	StatusOK     EventStatus = "ok"
	StatusFailed EventStatus = "failed"
)

// RunRecord describes one processing run.
type RunRecord struct {
	Token         string   `json:"token"`
	Config        string   `json:"config"` // Canonical JSON
	ConfigHash    string   `json:"config_hash"`
	Fillers       []string `json:"fillers"`
	Branches      []string `json:"branches"`
	IsRealData    bool     `json:"is_real_data"`
	UseTrigger    bool     `json:"use_trigger"`
	SchemaVersion string   `json:"schema_version"`
	EngineVersion string   `json:"engine_version"`
	FirstSeq      int64    `json:"first_seq"` // Clock value before the first event
}

// EventRecord is one processed event as written to the store.
type EventRecord struct {
	RunToken   string      `json:"run_token"`
	Seq        int64       `json:"seq"` // Logical clock
	ID         EventID     `json:"id"`
	Input      string      `json:"input"` // Canonical JSON
	InputHash  string      `json:"input_hash"`
	Output     string      `json:"output,omitempty"` // Canonical JSON, empty when failed
	OutputHash string      `json:"output_hash,omitempty"`
	Status     EventStatus `json:"status"`
	ErrorCode  string      `json:"error_code,omitempty"`
	Error      string      `json:"error,omitempty"`
	Refs       []RefRecord `json:"refs,omitempty"`
}

// RefRecord is one resolved cross-collection reference of an output event.
type RefRecord struct {
	Collection  string `json:"collection"`
	Index       int    `json:"idx"`
	Field       string `json:"field"`
	Target      string `json:"target"`
	TargetIndex int    `json:"target_idx"`
}
