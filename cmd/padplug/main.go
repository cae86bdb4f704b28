package main

import (
	"os"

	"github.com/padplug/padplug/cmd/padplug/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
