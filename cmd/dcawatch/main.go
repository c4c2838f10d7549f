package main

import (
	"os"

	"github.com/lmercier/dcawatch/cmd/dcawatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
