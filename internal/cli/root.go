package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// TraceIDGenerator produces the per-run trace id attached to JSON responses.
type TraceIDGenerator interface {
	Generate() string
}

// UUIDTraceIDs generates UUIDv7 trace ids, which sort by creation time.
type UUIDTraceIDs struct{}

// Generate returns a new UUIDv7 string.
func (UUIDTraceIDs) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RootOptions holds global flags and run-wide state for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Set by the root command before any subcommand runs.
	Config *Config
	Logger *slog.Logger

	// TraceIDs defaults to UUIDTraceIDs.
	TraceIDs TraceIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fluentsql CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around caller-provided
// options, so tests can inject a trace id generator.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fluentsql",
		Short: "fluentsql - compile statement documents to SQL",
		Long: `fluentsql renders SQL text from statement documents.

Statement documents are YAML or CUE files that describe a query the way the
fluent builder does: a source, projection, predicates, joins, ordering and
paging, or a write (update, insert, upsert, delete). Rendering is pure; no
database is contacted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: auto-discover fluentsql.yaml)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewFingerprintCommand(opts))

	return cmd
}

// resolve loads configuration, lets explicitly set flags win over it,
// validates the result and builds the logger.
func (opts *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, configPath, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	opts.Config = cfg

	flags := cmd.Flags()
	if !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if !flags.Changed("verbose") {
		opts.Verbose = cfg.Verbose
	}

	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
	if configPath != "" {
		opts.Logger.Debug("loaded config", "path", configPath)
	}
	return nil
}

// newLogger writes text logs to w: debug and up when verbose, warnings and
// errors otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (opts *RootOptions) logger() *slog.Logger {
	if opts.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opts.Logger
}

func (opts *RootOptions) traceID() string {
	if opts.TraceIDs == nil {
		return UUIDTraceIDs{}.Generate()
	}
	return opts.TraceIDs.Generate()
}

func (opts *RootOptions) compileConfig() CompileConfig {
	if opts.Config == nil {
		return CompileConfig{Concurrency: 1}
	}
	return opts.Config.Compile
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return lo.Contains(ValidFormats, format)
}
