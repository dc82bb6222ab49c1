// Command fluentsql renders SQL from YAML and CUE statement documents.
//
// Usage:
//
//	fluentsql [--format text|json] [--verbose] [--config path] <command> <path>...
//
// Commands:
//   - compile: print the SQL of every statement
//   - check: report whether every statement compiles
//   - fingerprint: print a stable hash of every statement definition
//
// Exit status is 0 on success, 1 when a statement fails to load or compile,
// and 2 on command errors such as unknown flags or missing paths.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/fluentsql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fluentsql: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
