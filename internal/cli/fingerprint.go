package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fingerprint <path>...",
		Short: "Print a stable fingerprint per statement",
		Long: `Print the SHA-256 fingerprint of each statement's canonical definition.

Two statements with the same fingerprint render the same SQL. Fingerprints do
not depend on the document format or on the Unicode normalization of the
expressions.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatements(cmd, opts, args, writeFingerprintText, func(r *StatementResult) {
				r.SQL = ""
			})
		},
	}

	addFailFastFlag(cmd, opts)
	return cmd
}

// writeFingerprintText prints "<fingerprint>  <name>" lines, like sha256sum.
func writeFingerprintText(w io.Writer, results []StatementResult) {
	for _, r := range results {
		if r.Failed() {
			fmt.Fprintf(w, "✗ %s: [%s] %s\n", r.Name, r.Error.Code, r.Error.Message)
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", r.Fingerprint, r.Name)
	}
}
