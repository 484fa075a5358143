package main

import (
	"os"

	"github.com/tcfw/didkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
