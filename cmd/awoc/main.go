package main

import (
	"os"

	"github.com/awoc-dev/awoc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
