// Package main provides the gridview CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/gridview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
