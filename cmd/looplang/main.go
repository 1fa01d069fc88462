// Package main provides the looplang command.
package main

import (
	"os"

	"github.com/leapstack-labs/looplang/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
