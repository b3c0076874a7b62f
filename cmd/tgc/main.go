package main

import (
	"os"

	"github.com/tgc-lang/tgc/cmd/tgc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
