package main

import (
	"log/slog"
	"os"

	"github.com/st3v3nmw/focusguard/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
