package ir

// Version constants for the stored schema and engine.
const (
	// SchemaVersion is the output schema version recorded with every run.
	SchemaVersion = "1"

	// EngineVersion is the pandafill engine version.
	EngineVersion = "0.1.0"
)
