// Package main provides the ruledesc CLI.
package main

import (
	"os"

	"github.com/cvickery/rule-descriptions/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
