package cli

import (
	"flag"
	"fmt"
	"io"
)

// AllocateFlags are the flags for the prorate command
type AllocateFlags struct {
	ConfigPath string
	Input      string
	Precision  int
	Verbose    bool
}

// ParseAllocateFlags parses prorate flags from args (without the program name)
func ParseAllocateFlags(args []string, output io.Writer) (AllocateFlags, error) {
	var flags AllocateFlags
	fs := flag.NewFlagSet("prorate", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Path to config file (falls back to environment)")
	fs.StringVar(&flags.Input, "input", "", "Bill JSON file, - for stdin, empty for the built-in sample")
	fs.IntVar(&flags.Precision, "precision", useConfiguredPrecision, "Decimal places 0-2 (-1 = from config)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return flags, err
	}
	if fs.NArg() > 0 {
		return flags, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return flags, nil
}

// useConfiguredPrecision is the -precision default meaning "take it from config".
const useConfiguredPrecision = -1

// PrecisionOverride returns the requested precision, or nil to use the
// configured one. Other out-of-range values are returned as given so that
// allocation rejects them.
func (f AllocateFlags) PrecisionOverride() *int {
	if f.Precision == useConfiguredPrecision {
		return nil
	}
	p := f.Precision
	return &p
}

// ServeFlags holds the CLI flags for the api command.
type ServeFlags struct {
	ConfigPath string
	Port       int
	Verbose    bool
}

// ParseServeFlags parses api flags from args (without the program name).
// A zero Port keeps the configured one.
func ParseServeFlags(args []string, output io.Writer) (ServeFlags, error) {
	var flags ServeFlags
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Path to config file (falls back to environment)")
	fs.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = from config)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return flags, err
	}
	return flags, nil
}
