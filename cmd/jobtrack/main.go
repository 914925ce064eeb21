package main

import (
	"os"

	"github.com/cwygoda/jobtrack/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
