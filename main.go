package main

import (
	"os"

	"github.com/moneymitra/server/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
