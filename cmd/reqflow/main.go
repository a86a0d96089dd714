package main

import (
	"os"

	"github.com/denysbsb/reqflow/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
