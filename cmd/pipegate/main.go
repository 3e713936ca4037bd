package main

import (
	"fmt"
	"os"

	"github.com/pipegate/pipegate/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pipegate:", err)
		os.Exit(1)
	}
}
