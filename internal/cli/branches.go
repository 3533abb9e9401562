package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/panda"
)

// BranchesResult is the output of the branches command.
type BranchesResult struct {
	Fillers     []string         `json:"fillers"`
	Branches    panda.BranchList `json:"branches"`
	RunBranches panda.BranchList `json:"run_branches"`
	DocTrees    []panda.DocTree  `json:"doc_trees"`
}

func (r BranchesResult) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Fillers: %s\n", strings.Join(r.Fillers, ", "))
	fmt.Fprintln(&buf, "Event branches:")
	for _, b := range r.Branches {
		fmt.Fprintf(&buf, "  %s\n", b)
	}
	if len(r.RunBranches) > 0 {
		fmt.Fprintln(&buf, "Run branches:")
		for _, b := range r.RunBranches {
			fmt.Fprintf(&buf, "  %s\n", b)
		}
	}
	for _, tree := range r.DocTrees {
		fmt.Fprintf(&buf, "%s:\n", tree.Name)
		for _, e := range tree.Entries {
			fmt.Fprintf(&buf, "  %d %s\n", e.Index, e.Title)
		}
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// NewBranchesCommand creates the branches command.
func NewBranchesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Print the declared output branches",
		Long: `Print the branch declaration of the configured fillers and the
documentation of indexed array branches such as the muon trigger match flags.

Entries prefixed with "!" are declared absent for the configured run mode.

Examples:
  pandafill branches
  pandafill branches --config ./conf --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranches(rootOpts, cmd)
		},
	}
	return cmd
}

func runBranches(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	proc, err := newProcessor(cfg, zap.NewNop())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create fillers", err)
	}

	return formatter.Success(BranchesResult{
		Fillers:     proc.Names(),
		Branches:    proc.Branches(),
		RunBranches: proc.RunBranches(),
		DocTrees:    proc.DocTrees(),
	})
}
