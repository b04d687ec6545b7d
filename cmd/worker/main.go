package main

import (
	"os"

	"github.com/pecal-inc/pecal/internal/interfaces/cli/worker"
)

func main() {
	if err := worker.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
