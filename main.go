package main

import (
	"os"

	"github.com/kennyg/lmagent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
