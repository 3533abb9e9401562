package config

import (
	"fmt"
	"slices"
	"sort"

	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"github.com/roach88/pandafill/internal/filler"
	"github.com/roach88/pandafill/internal/panda"
)

// Validate checks the configuration against the known fillers and trigger
// categories. Every problem is reported; the result combines them with
// multierr.
func (c *Config) Validate() error {
	var err error

	if len(c.Fillers) == 0 {
		err = multierr.Append(err, &LoadError{Code: ErrCodeNoFillers, Message: "no fillers configured"})
	}

	known := filler.Known()
	seen := make(map[string]bool, len(c.Fillers))
	var unique []string
	for _, name := range c.Fillers {
		if seen[name] {
			err = multierr.Append(err, &LoadError{
				Code:    ErrCodeDuplicateFiller,
				Message: fmt.Sprintf("filler %q configured more than once", name),
			})
			continue
		}
		seen[name] = true
		unique = append(unique, name)
		if !slices.Contains(known, name) {
			err = multierr.Append(err, &LoadError{
				Code:    ErrCodeUnknownFiller,
				Message: fmt.Sprintf("unknown filler %q (known: %v)", name, known),
			})
		}
	}

	opts := c.Options(nil)
	for _, name := range unique {
		for _, dep := range filler.Dependencies(name, opts) {
			if !seen[dep] {
				err = multierr.Append(err, &LoadError{
					Code:    ErrCodeMissingDependency,
					Message: fmt.Sprintf("filler %q reads maps of %q, which is not configured", name, dep),
				})
			}
		}
	}

	if c.UseTrigger {
		categories := make([]string, 0, len(c.Muons.TriggerObjects))
		for key := range c.Muons.TriggerObjects {
			categories = append(categories, key)
		}
		sort.Sort(natural.StringSlice(categories))
		for _, key := range categories {
			if _, ok := panda.TriggerCategoryIndex(key); !ok {
				err = multierr.Append(err, &LoadError{
					Code:    ErrCodeUnknownCategory,
					Message: fmt.Sprintf("unknown muon trigger category %q", key),
				})
			}
		}
	}

	return err
}
