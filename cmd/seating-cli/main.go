// Command seating-cli runs the seat allocation offline from a student table and a room file.
package main

import (
	"fmt"
	"os"
)

const (
	version = "1.0.0"
	appName = "seating-cli"
)

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
