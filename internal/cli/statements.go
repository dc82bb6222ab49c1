package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/fluentsql/internal/loader"
	"github.com/roach88/fluentsql/internal/querydef"
	"github.com/roach88/fluentsql/internal/querysql"
)

// Error codes for statement compile failures, continuing the loader's
// E0xx (file) and E1xx (document) ranges.
const (
	ErrCodeGeneric        = loader.ErrCodeGeneric
	ErrCodeMissingClause  = "E201" // A required clause is absent
	ErrCodeIllegalClause  = "E202" // A clause the statement kind does not allow
	ErrCodeUnknownKind    = "E203" // Statement kind is not recognized
	ErrCodeInvalidValue   = "E204" // A clause value is out of range
	ErrCodeFingerprint    = "E205" // Canonical form could not be produced
	ErrCodeCommandFailure = "E301" // Command-level failure
)

// StatementResult is the outcome for one statement, in file and document
// order.
type StatementResult struct {
	File        string        `json:"file"`
	Name        string        `json:"name"`
	Kind        querydef.Kind `json:"kind,omitempty"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	SQL         string        `json:"sql,omitempty"`
	Error       *CLIError     `json:"error,omitempty"`
}

// Failed reports whether the statement could not be loaded or compiled.
func (r StatementResult) Failed() bool {
	return r.Error != nil
}

// errStopped cancels outstanding loads once a failure is seen in fail-fast mode.
var errStopped = errors.New("stopped after first failure")

// compileRun expands paths into statement files, loads and compiles them
// concurrently, and returns the results in argument order.
//
// Path errors are returned as an error. Per-file and per-statement failures
// are reported in the results. With failFast, results end at the first
// failure in argument order.
func compileRun(ctx context.Context, opts *RootOptions, paths []string, failFast bool) ([]StatementResult, error) {
	log := opts.logger()
	cfg := opts.compileConfig()

	files, err := loader.Find(paths)
	if err != nil {
		return nil, err
	}
	log.Debug("found statement files", "count", len(files))

	perFile := make([][]StatementResult, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Concurrency, 1))
	for i, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			perFile[i] = compileFile(log, path, failFast)
			done[i] = true
			if failFast && hasFailure(perFile[i]) {
				return errStopped
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errStopped) {
		return nil, err
	}

	// Files skipped after a cancellation are compiled here, in order, so the
	// outcome matches a sequential run.
	var results []StatementResult
	for i, path := range files {
		if !done[i] {
			perFile[i] = compileFile(log, path, failFast)
		}
		for _, r := range perFile[i] {
			results = append(results, r)
			if failFast && r.Failed() {
				return results, nil
			}
		}
	}
	return results, nil
}

// compileFile loads one file and compiles each of its statements.
func compileFile(log *slog.Logger, path string, failFast bool) []StatementResult {
	f, err := loader.LoadFile(path)
	if err != nil {
		log.Warn("statement file failed to load", "path", path, "error", err)
		return []StatementResult{{File: path, Name: path, Error: cliError(err)}}
	}
	log.Debug("loaded statement file", "path", path, "statements", len(f.Statements))

	results := make([]StatementResult, 0, len(f.Statements))
	for _, stmt := range f.Statements {
		r := compileStatement(path, stmt)
		if r.Failed() {
			log.Warn("statement failed", "path", path, "name", r.Name, "code", r.Error.Code, "error", r.Error.Message)
		} else {
			log.Debug("statement compiled", "path", path, "name", r.Name, "kind", r.Kind, "fingerprint", r.Fingerprint)
		}
		results = append(results, r)
		if failFast && r.Failed() {
			break
		}
	}
	return results
}

func compileStatement(path string, stmt loader.Statement) StatementResult {
	r := StatementResult{File: path, Name: stmt.Name, Kind: stmt.Kind()}

	b, err := stmt.Build()
	if err != nil {
		r.Error = cliError(withFile(err, path))
		return r
	}
	sql, err := b.Query()
	if err != nil {
		r.Error = cliError(err)
		return r
	}
	fp, err := querydef.Fingerprint(b.Definition())
	if err != nil {
		r.Error = &CLIError{Code: ErrCodeFingerprint, Message: err.Error()}
		return r
	}

	r.SQL = sql
	r.Fingerprint = fp
	return r
}

// cliError maps load and compile errors to a coded CLIError.
func cliError(err error) *CLIError {
	var le *loader.LoadError
	if errors.As(err, &le) {
		return &CLIError{Code: le.Code, Message: le.Error()}
	}

	var ce *querysql.CompileError
	if errors.As(err, &ce) {
		code := ErrCodeGeneric
		switch {
		case errors.Is(err, querysql.ErrMissingClause):
			code = ErrCodeMissingClause
		case errors.Is(err, querysql.ErrIllegalClause):
			code = ErrCodeIllegalClause
		case errors.Is(err, querysql.ErrUnknownKind):
			code = ErrCodeUnknownKind
		case errors.Is(err, querysql.ErrInvalidValue):
			code = ErrCodeInvalidValue
		}
		return &CLIError{Code: code, Message: err.Error()}
	}

	return &CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}

func withFile(err error, path string) error {
	var le *loader.LoadError
	if errors.As(err, &le) && le.Path == "" {
		cp := *le
		cp.Path = path
		return &cp
	}
	return err
}

func hasFailure(results []StatementResult) bool {
	return lo.SomeBy(results, StatementResult.Failed)
}

// finish writes the partial-failure response when needed and converts the
// results into the command's exit status.
func finish(formatter *OutputFormatter, results []StatementResult) error {
	failed := lo.Filter(results, func(r StatementResult, _ int) bool { return r.Failed() })
	if len(failed) == 0 {
		return nil
	}
	if err := formatter.Partial(results, failed[0].Error); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d of %d statement(s) failed", len(failed), len(results)))
}

// pathError reports a command-level failure to expand or read the arguments.
func pathError(formatter *OutputFormatter, err error) error {
	code := ErrCodeCommandFailure
	var le *loader.LoadError
	if errors.As(err, &le) {
		code = le.Code
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "reading statement files", err)
}
