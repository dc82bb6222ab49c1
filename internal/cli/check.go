package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Check that statement documents compile",
		Long: `Compile every statement in the given YAML or CUE files without printing
the SQL. Each statement is reported as ok or failed; any failure exits 1.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatements(cmd, opts, args, writeCheckText, func(r *StatementResult) {
				r.SQL = ""
			})
		},
	}

	addFailFastFlag(cmd, opts)
	return cmd
}

func writeCheckText(w io.Writer, results []StatementResult) {
	ok := 0
	for _, r := range results {
		if r.Failed() {
			fmt.Fprintf(w, "✗ %s: [%s] %s\n", r.Name, r.Error.Code, r.Error.Message)
			continue
		}
		ok++
		fmt.Fprintf(w, "✓ %s (%s)\n", r.Name, r.Kind)
	}
	fmt.Fprintf(w, "\n%d of %d statement(s) ok\n", ok, len(results))
}
