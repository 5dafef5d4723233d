package main

import (
	"os"

	"project-tracker/app/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
