package main

import (
	"fmt"
	"os"

	cmd "github.com/plugindex/plugindex/cmd/plugindex"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
