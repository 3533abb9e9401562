package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/maruel/natural"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pandafill/internal/ir"
)

// Scenario defines a scenario test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is CUE source for the run configuration. Empty selects the
	// defaults.
	Config string `yaml:"config,omitempty"`

	// Events are processed in order; assertions address them by position.
	Events []ir.Event `yaml:"events"`

	// Assertions validate the stored run.
	Assertions []Assertion `yaml:"assertions"`

	// RunToken is an optional fixed run token.
	// If empty, defaults to "test-run-default".
	RunToken string `yaml:"run_token,omitempty"`
}

// Assertion validates one aspect of one processed event.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Event is the position of the event in Scenario.Events.
	Event int `yaml:"event"`

	// Status and Code are used by status.
	Status string `yaml:"status,omitempty"`
	Code   string `yaml:"code,omitempty"`

	// Collection is used by count and ref.
	Collection string `yaml:"collection,omitempty"`

	// Count is used by count.
	Count *int `yaml:"count,omitempty"`

	// Path is a dotted document path ("muons.0.pt"), used by field and absent.
	Path string `yaml:"path,omitempty"`

	// Equals and Within are used by field. A zero Within compares exactly.
	Equals any     `yaml:"equals,omitempty"`
	Within float64 `yaml:"within,omitempty"`

	// Index is the record position, used by ref and trigger.
	Index int `yaml:"index,omitempty"`

	// Field and TargetIndex are used by ref. A TargetIndex of -1 asserts the
	// reference is unset.
	Field       string `yaml:"field,omitempty"`
	TargetIndex *int   `yaml:"target_index,omitempty"`

	// Category and Match are used by trigger. Category is a configuration
	// key such as "IsoMu24".
	Category string `yaml:"category,omitempty"`
	Match    *bool  `yaml:"match,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus  = "status"
	AssertCount   = "count"
	AssertField   = "field"
	AssertAbsent  = "absent"
	AssertRef     = "ref"
	AssertTrigger = "trigger"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarioFiles returns the scenario files of dir in natural order, so
// "case2.yaml" sorts before "case10.yaml".
func FindScenarioFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Sort(natural.StringSlice(files))
	return files, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], len(s.Events)); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, nEvents int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Event < 0 || a.Event >= nEvents {
		return fmt.Errorf("assertions[%d]: event %d out of range (scenario has %d events)", index, a.Event, nEvents)
	}

	switch a.Type {
	case AssertStatus:
		if a.Status != string(ir.StatusOK) && a.Status != string(ir.StatusFailed) {
			return fmt.Errorf("assertions[%d]: status must be %q or %q", index, ir.StatusOK, ir.StatusFailed)
		}
	case AssertCount:
		if a.Collection == "" {
			return fmt.Errorf("assertions[%d]: collection is required for count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for count", index)
		}
	case AssertField:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for field", index)
		}
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals is required for field", index)
		}
		if a.Within < 0 {
			return fmt.Errorf("assertions[%d]: within must be non-negative", index)
		}
	case AssertAbsent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for absent", index)
		}
	case AssertRef:
		if a.Collection == "" || a.Field == "" {
			return fmt.Errorf("assertions[%d]: collection and field are required for ref", index)
		}
		if a.TargetIndex == nil || *a.TargetIndex < -1 {
			return fmt.Errorf("assertions[%d]: target_index is required for ref (-1 for unset)", index)
		}
	case AssertTrigger:
		if a.Category == "" {
			return fmt.Errorf("assertions[%d]: category is required for trigger", index)
		}
		if a.Match == nil {
			return fmt.Errorf("assertions[%d]: match is required for trigger", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
