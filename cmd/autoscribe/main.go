package main

import (
	"os"

	"github.com/autoscribe-dev/autoscribe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
