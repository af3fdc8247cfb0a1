package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	huberrors "github.com/JorgeRod2594/feature-hub/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┌─┐┌┬┐┬ ┬┬─┐┌─┐┬ ┬┬ ┬┌┐
  ├┤ ├┤ ├─┤ │ │ │├┬┘├┤ ├─┤│ │├┴┐
  └  └─┘┴ ┴ ┴ └─┘┴└─└─┘┴ ┴└─┘└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "featurehub",
		Short: "Host for runtime-loaded feature apps",
		Long: `Featurehub serves pages whose UI modules are fetched at runtime.

Each configured page hosts one feature app: an independently
delivered module that is resolved from a source backend, decoded,
and rendered into the page. Features include:

  • Server-side rendering with live updates via WebSocket
  • HTTP, local directory and S3 module sources
  • JSON manifest and wasm module formats
  • Deduplicated stylesheet injection per page
  • Prometheus metrics and OpenTelemetry traces for module loads`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		serveCmd(),
		checkCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		huberrors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the featurehub ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
