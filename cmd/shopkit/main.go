package main

import (
	"os"

	"github.com/Additional-Code/shopkit/internal/cli"
	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(errorbank.From(err).ExitCode())
	}
}
