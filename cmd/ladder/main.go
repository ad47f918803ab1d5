package main

import (
	"os"

	"github.com/Dicklesworthstone/ladder/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
