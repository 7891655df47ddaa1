// Package main is the entry point for the weave CLI.
package main

import (
	"github.com/velvet-lang/weave/cmd/weave/cmd"
	"github.com/velvet-lang/weave/internal/version"
)

// Version information, set by build flags.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

func main() {
	version.Version = buildVersion
	version.Commit = buildCommit
	version.Date = buildDate
	cmd.Execute()
}
