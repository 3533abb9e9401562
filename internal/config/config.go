package config

import (
	_ "embed"

	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/filler"
	"github.com/roach88/pandafill/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded run configuration. Field names follow the CUE
// schema so a Config marshals back to a document the schema accepts.
type Config struct {
	Fillers    []string `json:"fillers"`
	IsRealData bool     `json:"isRealData"`
	UseTrigger bool     `json:"useTrigger"`
	Muons      Muons    `json:"muons"`
	Output     Output   `json:"output"`
	Logging    Logging  `json:"logging"`
}

// Muons configures the muon filler.
type Muons struct {
	TriggerObjects map[string][]string `json:"triggerObjects"`
}

// Output configures where results go.
type Output struct {
	DB string `json:"db"`
}

// Options converts the configuration to filler options.
func (c *Config) Options(logger *zap.Logger) filler.Options {
	return filler.Options{
		IsRealData:     c.IsRealData,
		UseTrigger:     c.UseTrigger,
		TriggerObjects: c.Muons.TriggerObjects,
		Logger:         logger,
	}
}

// NewFillers creates the configured fillers in configured order.
func (c *Config) NewFillers(logger *zap.Logger) ([]filler.Filler, error) {
	return filler.NewAll(c.Fillers, c.Options(logger))
}

// Canonical returns the canonical JSON of the configuration and its hash.
func (c *Config) Canonical() ([]byte, string, error) {
	return ir.HashCanonical(ir.DomainConfig, c)
}
