package main

import (
	"os"

	"github.com/rshashank20/foodexpiry-tracker/cmd/pantryctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
