// panelctl - terminal client for the lead management dashboard
package main

import (
	"fmt"
	"os"

	"github.com/leadpanel/panelctl/internal/cli"
	"github.com/leadpanel/panelctl/internal/version"
)

// Version information, overridden with -ldflags at build time.
var (
	Version   = "v0.3.0-dev"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
