// main is the entry point for the attrib CLI.
package main

import (
	"github.com/huangsam/attrib/cmd"
	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/internal/runstore"
)

func main() {
	err := cmd.Execute()

	if closeErr := runstore.CloseStore(); closeErr != nil {
		contract.LogWarn("Failed to close run store", closeErr)
	}

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
