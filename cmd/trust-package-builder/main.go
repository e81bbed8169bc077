package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/open-edge-platform/trust-package-builder/internal/utils/logger"
)

// Global logging flags
var (
	logLevel string
	verbose  bool
)

// createRootCommand creates the root command with all subcommands attached
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trust-package-builder",
		Short: "builds and validates Debian trust package artifacts",
		Long: `trust-package-builder repackages the CA certificate bundle shipped
		in the Debian ca-certificates package as a JSON trust package
		artifact. The bundle is taken either from a Debian container
		image (build) or directly from a Debian mirror (fetch), and the
		resulting artifact is validated before being handed downstream.`,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Shorthand for --log-level debug")

	rootCmd.AddCommand(createBuildCommand())
	rootCmd.AddCommand(createFetchCommand())
	rootCmd.AddCommand(createValidateCommand())
	rootCmd.AddCommand(createInspectCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// resolveRequestedLogLevel prefers the explicit --log-level flag, falling
// back to debug when --verbose is set.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd != nil && verboseRequested(cmd.Flags()) {
		return "debug"
	}
	return ""
}

func verboseRequested(flags *pflag.FlagSet) bool {
	flag := flags.Lookup("verbose")
	return flag != nil && flag.Changed
}

// attachLoggingHooks installs a PersistentPreRunE on every subcommand so the
// global logger is initialized before any command body runs.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			return logger.InitForLevel(resolveRequestedLogLevel(cmd))
		}
	}
}

func main() {
	if err := createRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
