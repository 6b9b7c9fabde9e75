package main

import (
	"os"

	"github.com/privacykit/cohortd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
