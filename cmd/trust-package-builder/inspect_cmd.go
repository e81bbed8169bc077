package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/trust-package-builder/internal/inspect"
	"github.com/open-edge-platform/trust-package-builder/internal/trustpackage"
)

// Inspect command flags
var (
	inspectPrettyJSON bool
	inspectFormat     string // "text" | "json"
)

// createInspectCommand creates the inspect subcommand
func createInspectCommand() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect DEST_FILE",
		Short: "lists the certificates inside a trust package artifact",
		Long: `Inspect parses every certificate in the artifact's bundle and
		prints its subject, validity window and SHA-256 fingerprint,
		either as a human-readable listing or as JSON.`,
		Args: cobra.ExactArgs(1),

		RunE: executeInspect,
	}

	inspectCmd.Flags().BoolVar(&inspectPrettyJSON, "pretty", true,
		"Pretty-print JSON output (only for --format json)")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text",
		"Output format: text or json")
	return inspectCmd
}

// executeInspect handles the inspect command execution logic
func executeInspect(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(inspectFormat)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid --format %q (expected text|json)", inspectFormat)
	}
	cmd.SilenceUsage = true

	pkg, err := trustpackage.Load(args[0])
	if err != nil {
		return err
	}

	report, err := inspect.InspectPackage(pkg)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", args[0], err)
	}

	if format == "text" {
		return inspect.RenderText(cmd.OutOrStdout(), report)
	}

	var b []byte
	if inspectPrettyJSON {
		b, err = json.MarshalIndent(report, "", "  ")
	} else {
		b, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}
