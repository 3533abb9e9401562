package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool          `json:"valid"`
	Fillers []string      `json:"fillers,omitempty"`
	Errors  []ConfigIssue `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("Configuration valid: fillers %s", strings.Join(r.Fillers, ", "))
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Configuration invalid (%d errors):", len(r.Errors))
	for _, issue := range r.Errors {
		fmt.Fprintf(&buf, "\n  %s", issue)
	}
	return buf.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-dir]",
		Short: "Validate a configuration",
		Long: `Load a configuration directory, unify it with the configuration schema
and check it against the known fillers and trigger categories.

Every problem is reported, not just the first.

Exit codes:
  0 - Configuration valid
  1 - Configuration invalid
  2 - Command error

Examples:
  pandafill validate ./conf
  pandafill validate --config ./conf --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := *rootOpts
			if len(args) == 1 {
				opts.ConfigDir = args[0]
			}
			return runValidate(&opts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
	if opts.ConfigDir == "" {
		return NewExitError(ExitCommandError, "no configuration directory given (argument or --config)")
	}

	formatter.VerboseLog("Validating %s", opts.ConfigDir)
	cfg, err := loadConfig(opts)
	if err != nil {
		result := ValidationResult{Errors: configIssues(err)}
		if outErr := formatter.Success(result); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, fmt.Sprintf("configuration invalid: %d errors", len(result.Errors)))
	}

	return formatter.Success(ValidationResult{Valid: true, Fillers: cfg.Fillers})
}
