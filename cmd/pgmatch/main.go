// Package main provides the pgmatch command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/pgstools/pgmatch/internal/pgserr"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the root command and translates errors to exit codes at
// this single boundary. Every failure kind keeps its reserved code so
// pipelines can branch on the result without parsing messages.
func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return pgserr.ExitCode(err)
	}
	return pgserr.ExitSuccess
}
