package main

import (
	"os"

	"github.com/battrading/bat/cmd/bat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
