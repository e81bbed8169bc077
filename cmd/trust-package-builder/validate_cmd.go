package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/trust-package-builder/internal/trustpackage"
	"github.com/open-edge-platform/trust-package-builder/internal/utils/logger"
)

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate DEST_FILE",
		Short: "validates an existing trust package artifact",
		Long: `Validate checks that DEST_FILE is a well-formed trust package:
		valid JSON carrying exactly the documented name, bundle and
		version keys. When BIN_VALIDATE_TRUST_PACKAGE is set, the
		external validator is run as well.`,
		Args: cobra.ExactArgs(1),

		RunE: executeValidate,
	}
	return validateCmd
}

// executeValidate handles the validate command execution logic
func executeValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	log := logger.Logger()
	destFile := args[0]

	if err := trustpackage.ValidateFile(destFile); err != nil {
		return err
	}

	if bin := os.Getenv(trustpackage.ValidatorEnvVar); bin != "" {
		if err := trustpackage.RunExternalValidator(bin, destFile); err != nil {
			return err
		}
	} else {
		log.Infof("No external validator configured, schema check only")
	}

	log.Infof("%s is a valid trust package", destFile)
	return nil
}
