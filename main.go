// Package main is a stub entry point for scoresim.
//
// For the full CLI, use: go run ./cmd/scoresim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("scoresim - Tomasulo scoreboard simulator")
	fmt.Println("")
	fmt.Println("Usage: scoresim [options] <program.txt> [program.txt...]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -p, --print-all    Print the stage-cycle table after every cycle")
	fmt.Println("  --max-cycles       Optional deadlock cap (0 = unbounded)")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/scoresim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: you provided arguments. Use 'go run ./cmd/scoresim' instead.")
	}
}
