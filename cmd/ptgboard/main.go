package main

import (
	"os"

	"ptgboard/internal/cli"
	appLog "ptgboard/internal/log"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		appLog.Error("ptgboard failed", err)
		os.Exit(1)
	}
}
