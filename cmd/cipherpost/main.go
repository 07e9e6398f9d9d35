package main

import (
	"os"

	"cipherpost/cmd/cipherpost/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
