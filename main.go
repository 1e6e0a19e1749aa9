package main

import (
	"fmt"
	"os"

	"github.com/kilianp07/batlife/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "batlife:", err)
		os.Exit(1)
	}
}
