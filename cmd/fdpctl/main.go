package main

import (
	"os"

	"github.com/datavisiting/fdp-explorer/cmd/fdpctl/cmd"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := cmd.NewRootCmd(Version).Execute(); err != nil {
		os.Exit(1)
	}
}
