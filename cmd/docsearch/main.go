// Command docsearch is the entry point for the fused PDF retrieval engine.
// It provides a CLI interface (via Cobra) for corpus ingestion and search.
package main

import (
	"fmt"
	"os"

	"github.com/corpussearch/docsearch/cmd/docsearch/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
