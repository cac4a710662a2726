// Command prorate spreads a bill-level discount across the bill's line
// items and prints the allocated bill as JSON.
package main

import (
	"context"
	"os"

	"github.com/eshaffer321/prorate/internal/cli"
)

func main() {
	os.Exit(cli.RunAllocate(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
