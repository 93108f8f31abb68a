// Package main is the entry point for the lake ETL binary.
package main

import (
	"os"

	"streampro-lake/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
