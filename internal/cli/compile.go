package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// CompileOptions holds flags shared by the statement commands.
type CompileOptions struct {
	*RootOptions
	FailFast bool
}

// failFast resolves --fail-fast against compile.fail_fast from config.
func (o *CompileOptions) failFast(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("fail-fast") {
		return o.FailFast
	}
	return o.compileConfig().FailFast
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>...",
		Short: "Render statement documents to SQL",
		Long: `Render every statement in the given YAML or CUE files to SQL text.

Directories are searched for .yaml, .yml and .cue files. Statements are
printed in argument order, each under a "-- <name>" header. A statement that
fails to load or compile is reported in place and the command exits 1.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatements(cmd, opts, args, writeCompileText, nil)
		},
	}

	addFailFastFlag(cmd, opts)
	return cmd
}

func addFailFastFlag(cmd *cobra.Command, opts *CompileOptions) {
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first failing statement")
}

// runStatements is the shared body of compile, check and fingerprint.
// strip, if set, removes fields the command does not report from JSON output.
func runStatements(
	cmd *cobra.Command,
	opts *CompileOptions,
	args []string,
	writeText func(io.Writer, []StatementResult),
	strip func(*StatementResult),
) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
		TraceID: opts.traceID(),
	}

	results, err := compileRun(cmd.Context(), opts.RootOptions, args, opts.failFast(cmd))
	if err != nil {
		return pathError(formatter, err)
	}

	if strip != nil {
		for i := range results {
			strip(&results[i])
		}
	}

	if formatter.Format != "json" {
		writeText(formatter.Writer, results)
		return finish(formatter, results)
	}

	if err := finish(formatter, results); err != nil {
		return err
	}
	return formatter.Success(results)
}

// writeCompileText prints each statement under a "-- name" header, separated
// by blank lines.
func writeCompileText(w io.Writer, results []StatementResult) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "-- %s\n", r.Name)
		if r.Failed() {
			fmt.Fprintf(w, "-- ✗ [%s] %s\n", r.Error.Code, r.Error.Message)
			continue
		}
		fmt.Fprintln(w, r.SQL)
	}
}
