// Package main provides the pdgview CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/pdgview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
