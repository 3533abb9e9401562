package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/config"
	"github.com/roach88/pandafill/internal/engine"
	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/store"
)

// loadConfig loads the --config directory, or the defaults when none is
// given.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigDir == "" {
		return config.Default(), nil
	}
	return config.Load(opts.ConfigDir)
}

// newLogger builds the command logger. Logs always go to stderr so JSON
// output on stdout stays parseable.
func newLogger(opts *RootOptions, cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	return cfg.Logging.Prepare(w, opts.Verbose)
}

// newProcessor builds the configured fillers and a processor over them.
func newProcessor(cfg *config.Config, logger *zap.Logger) (*engine.Processor, error) {
	fillers, err := cfg.NewFillers(logger)
	if err != nil {
		return nil, err
	}
	return engine.NewProcessor(fillers, logger), nil
}

// resolveRun reads the run named token, or the latest run when token is
// empty.
func resolveRun(ctx context.Context, st *store.Store, token string) (ir.RunRecord, error) {
	if token == "" {
		return st.LatestRun(ctx)
	}
	return st.ReadRun(ctx, token)
}

// commandContext returns the command's context, or a background context
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// ConfigIssue is one configuration problem in command output.
type ConfigIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

func (i ConfigIssue) String() string {
	if i.File != "" {
		return fmt.Sprintf("%s:%d: %s: %s", i.File, i.Line, i.Code, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// configIssues flattens a configuration error into issues, one per
// combined error.
func configIssues(err error) []ConfigIssue {
	var issues []ConfigIssue
	for _, e := range multierr.Errors(err) {
		var le *config.LoadError
		if !errors.As(e, &le) {
			issues = append(issues, ConfigIssue{Code: config.ErrCodeGeneric, Message: e.Error()})
			continue
		}
		issue := ConfigIssue{Code: le.Code, Message: le.Message}
		if le.Pos.IsValid() {
			issue.File = le.Pos.Filename()
			issue.Line = le.Pos.Line()
		}
		issues = append(issues, issue)
	}
	return issues
}
