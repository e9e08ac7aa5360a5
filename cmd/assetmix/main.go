package main

import (
	"context"
	"os"

	"assetmix/internal/commands"
)

func main() {
	if err := commands.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
