package main

import (
	"os"

	"github.com/vsconsulting/cartola-internacional/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
