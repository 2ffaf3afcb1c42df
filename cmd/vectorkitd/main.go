// Package main provides the entry point for the vectorkitd server.
package main

import (
	"os"

	"github.com/vectorkit/vectorkit/cmd/vectorkitd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
