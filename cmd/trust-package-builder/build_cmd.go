package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/trust-package-builder/internal/config"
	"github.com/open-edge-platform/trust-package-builder/internal/container"
	"github.com/open-edge-platform/trust-package-builder/internal/trustpackage"
	"github.com/open-edge-platform/trust-package-builder/internal/utils/logger"
)

// Build command flags
var (
	buildRuntime      string
	buildPackage      string
	buildTemplate     string
	buildSkipValidate bool
	buildKeepWorkdir  bool
)

// createBuildCommand creates the build subcommand
func createBuildCommand() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build SOURCE_IMAGE DEST_FILE [TARGET_VERSION]",
		Short: "builds a trust package from a Debian container image",
		Long: `Build runs the source image once, installs the latest (or the
		pinned) ca-certificates package inside it, exports the generated
		CA bundle and repackages it as the JSON trust package artifact
		at DEST_FILE. The artifact is then checked against the artifact
		schema and handed to the external validator named by
		BIN_VALIDATE_TRUST_PACKAGE.`,
		Args: cobra.RangeArgs(2, 3),

		RunE: executeBuild,
	}

	buildCmd.Flags().StringVar(&buildRuntime, "runtime", "",
		"Container runtime binary (overrides the CTR environment variable)")
	buildCmd.Flags().StringVar(&buildPackage, "package", "",
		"Debian package carrying the trust bundle (default: ca-certificates)")
	buildCmd.Flags().StringVar(&buildTemplate, "config", "",
		"Optional YAML build template")
	buildCmd.Flags().BoolVar(&buildSkipValidate, "skip-validate", false,
		"Skip artifact validation")
	buildCmd.Flags().BoolVar(&buildKeepWorkdir, "keep-workdir", false,
		"Keep the temporary work directory for debugging")
	return buildCmd
}

// loadBuildTemplate merges defaults, the optional template file and the
// environment, in that order.
func loadBuildTemplate(path string) (*config.BuildTemplate, error) {
	template := config.DefaultTemplate()
	if path != "" {
		loaded, err := config.LoadTemplate(path)
		if err != nil {
			return nil, err
		}
		template = loaded
	}
	template.ApplyEnv()
	return template, nil
}

// executeBuild handles the build command execution logic
func executeBuild(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	sourceImage := args[0]
	destFile := args[1]
	targetVersion := ""
	if len(args) == 3 {
		targetVersion = args[2]
	}

	template, err := loadBuildTemplate(buildTemplate)
	if err != nil {
		return err
	}
	if buildPackage != "" {
		template.Package = buildPackage
	}

	if !buildSkipValidate && template.Validator == "" {
		return fmt.Errorf("%s must be set (or pass --skip-validate)",
			trustpackage.ValidatorEnvVar)
	}

	// Arguments and environment are valid; later failures are operational
	// and should not reprint usage.
	cmd.SilenceUsage = true

	runtime, err := container.NewRuntime(container.ResolveRuntime(buildRuntime, template.Runtime))
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "trust-package-")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer func() {
		if buildKeepWorkdir {
			log.Infof("Keeping work directory %s", workDir)
			return
		}
		if err := os.RemoveAll(workDir); err != nil {
			log.Errorf("Failed to remove work directory %s: %v", workDir, err)
		}
	}()

	pinnedVersion := ""
	if targetVersion != "" {
		pinnedVersion = trustpackage.DebianVersion(targetVersion)
		log.Infof("Pinning %s to %s for target version %s",
			template.Package, pinnedVersion, targetVersion)
	}

	bundle, installedVersion, err := runtime.ExtractBundle(
		sourceImage, template.Package, pinnedVersion, workDir)
	if err != nil {
		return err
	}

	var artifact trustpackage.Package
	if targetVersion != "" {
		artifact = trustpackage.NewPinned(bundle, targetVersion)
	} else {
		artifact = trustpackage.New(bundle, installedVersion)
	}
	if err := artifact.Write(destFile); err != nil {
		return err
	}
	log.Infof("Wrote trust package version %s to %s", artifact.Version, destFile)

	if buildSkipValidate {
		log.Warnf("Skipping validation of %s", destFile)
		return nil
	}
	if err := trustpackage.ValidateFile(destFile); err != nil {
		return err
	}
	return trustpackage.RunExternalValidator(template.Validator, destFile)
}
