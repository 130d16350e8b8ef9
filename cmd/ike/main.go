package main

import (
	"os"

	"github.com/ikejs/ike/cmd/ike/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
